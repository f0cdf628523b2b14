// internal/workers/quiz/generate-quiz-insights/config.go
package generatequizinsights

import (
	"time"

	"broker-match-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(appConfig *config.Config) *Config {
	wcfg := config.GetWorkerConfig(appConfig, TaskType)
	return &Config{
		Timeout: config.GetDuration(wcfg.Timeout),
	}
}
