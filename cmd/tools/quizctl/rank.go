// cmd/tools/quizctl/rank.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"broker-match-workers/internal/common/database"
	"broker-match-workers/internal/matching"
	"broker-match-workers/internal/repository"
)

func rankCmd() *cobra.Command {
	var (
		userID string
		topN   int
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank brokers for a user from the stored answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer pg.Close()

			engine := matching.NewEngine(
				repository.NewBrokerRepository(pg),
				repository.NewResponseRepository(pg),
				newLogger(cfg),
			)
			if topN <= 0 {
				topN = cfg.Matching.DefaultTopN
			}
			results, err := engine.Rank(cmd.Context(), userID, topN)
			if err != nil {
				return fmt.Errorf("rank brokers for %s: %w", userID, err)
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().IntVar(&topN, "top", 0, "number of brokers to return (default: matching.default_top_n)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
