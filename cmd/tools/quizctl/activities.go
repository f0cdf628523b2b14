// cmd/tools/quizctl/activities.go
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"broker-match-workers/pkg/registry"
)

func activitiesCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List the catalogued service tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TASK TYPE\tSTATUS\tTIMEOUT\tRETRIES")
			for _, a := range reg.Activities {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", a.TaskType, a.ImplementationStatus, a.Timeout, a.Retries)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&path, "registry", "configs/activities.json", "activity registry file")
	return cmd
}
