// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	APIs          APIsConfig              `mapstructure:"apis"`
	Quiz          QuizConfig              `mapstructure:"quiz"`
	Matching      MatchingConfig          `mapstructure:"matching"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single URL, used when addresses is empty
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI GenAIConfig `mapstructure:"genai"`
}

// GenAIConfig points at the text-generation gateway used for question
// wording and closing insights. Disabled means the static tables only.
type GenAIConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type QuizConfig struct {
	SessionTTL        int `mapstructure:"session_ttl"`   // milliseconds
	CompletedTTL      int `mapstructure:"completed_session_ttl"` // milliseconds
	CompletionMatches int `mapstructure:"completion_matches"`
}

const (
	BrokerSourcePostgres      = "postgres"
	BrokerSourceElasticsearch = "elasticsearch"
)

type MatchingConfig struct {
	DefaultTopN    int    `mapstructure:"default_top_n"`
	BrokerSource   string `mapstructure:"broker_source"` // postgres | elasticsearch
	BrokerIndex    string `mapstructure:"broker_index"`
	BrokerCacheTTL int    `mapstructure:"broker_cache_ttl"` // milliseconds
}

// NotificationConfig holds settings for match notifications.
type NotificationConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName      string  `mapstructure:"service_name"`
	TracingEnabled   bool    `mapstructure:"tracing_enabled"`
	TraceSampleRatio float64 `mapstructure:"trace_sample_ratio"`
}
