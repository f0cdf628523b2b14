// internal/workers/matching/rank-brokers/config.go
package rankbrokers

import (
	"time"

	"broker-match-workers/internal/common/config"
	"broker-match-workers/internal/matching"
)

type Config struct {
	Timeout     time.Duration
	DefaultTopN int
}

func LoadConfig(appConfig *config.Config) *Config {
	wcfg := config.GetWorkerConfig(appConfig, TaskType)
	topN := appConfig.Matching.DefaultTopN
	if topN <= 0 {
		topN = matching.DefaultTopN
	}
	return &Config{
		Timeout:     config.GetDuration(wcfg.Timeout),
		DefaultTopN: topN,
	}
}
