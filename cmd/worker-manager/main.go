// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"broker-match-workers/internal/common/aws"
	"broker-match-workers/internal/common/camunda"
	"broker-match-workers/internal/common/config"
	"broker-match-workers/internal/common/database"
	"broker-match-workers/internal/common/genai"
	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/common/observability"
	"broker-match-workers/internal/matching"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/repository"
	"broker-match-workers/pkg/registry"

	rb "broker-match-workers/internal/workers/matching/rank-brokers"
	gqi "broker-match-workers/internal/workers/quiz/generate-quiz-insights"
	rqs "broker-match-workers/internal/workers/quiz/restart-quiz-session"
	sqs "broker-match-workers/internal/workers/quiz/start-quiz-session"
	sqr "broker-match-workers/internal/workers/quiz/submit-quiz-response"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting broker match workers...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	log := logger.FromConfig(cfg.Logging)

	sampleRatio := 0.0
	if cfg.Observability.TracingEnabled {
		sampleRatio = cfg.Observability.TraceSampleRatio
	}
	obs := observability.NewWithOptions(cfg.Observability.ServiceName, observability.Options{SampleRatio: sampleRatio})
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Broker directory ---
	var brokers matching.BrokerSource = repository.NewBrokerRepository(pg)
	if cfg.Matching.BrokerSource == config.BrokerSourceElasticsearch {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		brokers = repository.NewBrokerIndex(esClient.Client, cfg.Matching.BrokerIndex)
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", cfg.Matching.BrokerIndex))
	}
	cachedBrokers := matching.NewCachedBrokerSource(brokers, redis.Client, config.GetDuration(cfg.Matching.BrokerCacheTTL), log)

	// --- Domain services ---
	responses := repository.NewResponseRepository(pg)
	engine := matching.NewEngine(cachedBrokers, responses, log)

	deps := quiz.Dependencies{
		Store:     quiz.NewRedisSessionStore(redis.Client, config.GetDuration(cfg.Quiz.SessionTTL), config.GetDuration(cfg.Quiz.CompletedTTL)),
		Responses: responses,
		Users:     repository.NewUserRepository(pg),
		Matcher:   engine,
		Logger:    log,
	}
	if cfg.APIs.GenAI.Enabled {
		client := genai.NewClient(genai.ConfigFrom(cfg.APIs.GenAI), log)
		deps.Generator = client
		deps.Narrator = client
		zapLog.Info("GenAI question wording enabled", zap.String("baseUrl", cfg.APIs.GenAI.BaseURL))
	}
	quizService := quiz.NewService(&quiz.Config{CompletionMatches: cfg.Quiz.CompletionMatches}, deps)

	rankDeps := rb.Dependencies{
		Ranker:  engine,
		Matches: repository.NewMatchRepository(pg),
		Scores:  obs,
		Logger:  log,
	}
	if cfg.Notifications.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.SNS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		rankDeps.Notifier = aws.NewMatchPublisher(snsClient, cfg.Notifications.SNS.TopicARN)
	}

	// --- Workers ---
	var (
		jobWorkers []worker.JobWorker
		started    []string
	)
	start := func(taskType string, handler worker.JobHandler) {
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log); w != nil {
			jobWorkers = append(jobWorkers, w)
			started = append(started, taskType)
		}
	}

	start(sqs.TaskType, sqs.NewHandler(sqs.LoadConfig(cfg), quizService, log).Handle)
	start(sqr.TaskType, sqr.NewHandler(sqr.LoadConfig(cfg), quizService, log).Handle)
	start(rqs.TaskType, rqs.NewHandler(rqs.LoadConfig(cfg), quizService, log).Handle)
	start(gqi.TaskType, gqi.NewHandler(gqi.LoadConfig(cfg), quizService, log).Handle)
	start(rb.TaskType, rb.NewHandler(rb.LoadConfig(cfg), rankDeps).Handle)
	zapLog.Info("Workers registered", zap.Int("count", len(jobWorkers)))
	checkRegistry(zapLog, started)

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr: ":8080",
		Handler: newHealthMux(map[string]func(context.Context) error{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    redis.Ping,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range jobWorkers {
		w.Close()
		w.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry compares the started workers with the activity catalogue the
// process models are built from. Mismatches are logged, not fatal.
func checkRegistry(zapLog *zap.Logger, started []string) {
	path := os.Getenv("ACTIVITY_REGISTRY")
	if path == "" {
		path = "configs/activities.json"
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		zapLog.Warn("Activity registry not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	if err := reg.Validate(started); err != nil {
		zapLog.Warn("Activity registry out of date", zap.Error(err))
		return
	}
	zapLog.Info("Activity registry matches running workers", zap.String("version", reg.Version))
}
