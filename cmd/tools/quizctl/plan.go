// cmd/tools/quizctl/plan.go
package main

import (
	"github.com/spf13/cobra"

	"broker-match-workers/internal/quiz"
)

func planCmd() *cobra.Command {
	var answer string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the question plan",
		Long: `Print the ten question slots. With --answer the adaptive slots are
re-planned for the focus areas that answer mentions, the way a session does
after the first question.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan := quiz.BuildPlan()
			if answer != "" {
				focus := append(quiz.InitialFocusAreas(), quiz.FocusAreasFor(answer)...)
				plan = quiz.AdaptPlan(plan, focus, 2)
			}
			if err := quiz.ValidatePlan(plan); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().StringVar(&answer, "answer", "", "answer text to adapt the plan to")
	return cmd
}
