// cmd/tools/quizctl/restart.go
package main

import (
	"github.com/spf13/cobra"

	"broker-match-workers/internal/common/config"
	"broker-match-workers/internal/common/database"
	"broker-match-workers/internal/matching"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/repository"
	"broker-match-workers/internal/workers"
)

func restartCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Delete a user's answers and live session and start over",
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
			rdb, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			defer rdb.Close()

			log := newLogger(cfg)
			responses := repository.NewResponseRepository(pg)
			service := quiz.NewService(&quiz.Config{CompletionMatches: cfg.Quiz.CompletionMatches}, quiz.Dependencies{
				Store:     quiz.NewRedisSessionStore(rdb.Client, config.GetDuration(cfg.Quiz.SessionTTL), config.GetDuration(cfg.Quiz.CompletedTTL)),
				Responses: responses,
				Users:     repository.NewUserRepository(pg),
				Matcher:   matching.NewEngine(repository.NewBrokerRepository(pg), responses, log),
				Logger:    log,
			})

			step, err := service.Restart(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), workers.NewStepOutput(step))
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
