// cmd/tools/quizctl/reindex.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"broker-match-workers/internal/common/config"
	"broker-match-workers/internal/common/database"
	"broker-match-workers/internal/matching"
	"broker-match-workers/internal/repository"
)

func reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Copy eligible brokers from PostgreSQL into the search index",
		Long: `Copy every eligible broker from PostgreSQL into the Elasticsearch
broker index and drop the cached broker directory so workers reload it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Elasticsearch.GetURL() == "" {
				return fmt.Errorf("database.elasticsearch is not configured")
			}
			ctx := cmd.Context()

			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer pg.Close()
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			rdb, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			defer rdb.Close()

			brokers, err := repository.NewBrokerRepository(pg).ListEligibleBrokers(ctx)
			if err != nil {
				return err
			}
			index := repository.NewBrokerIndex(es.Client, cfg.Matching.BrokerIndex)
			if err := index.IndexBrokers(ctx, brokers); err != nil {
				return err
			}

			log := newLogger(cfg)
			cache := matching.NewCachedBrokerSource(index, rdb.Client, config.GetDuration(cfg.Matching.BrokerCacheTTL), log)
			if err := cache.Invalidate(ctx); err != nil {
				log.Warn("broker cache not invalidated", map[string]interface{}{"error": err.Error()})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d brokers into %s\n", len(brokers), cfg.Matching.BrokerIndex)
			return nil
		},
	}
}
