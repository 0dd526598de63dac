package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sokinpui/maano.go/internal/config"
	"github.com/sokinpui/maano.go/internal/history"
	"github.com/sokinpui/maano.go/internal/logger"
	"github.com/sokinpui/maano.go/internal/metrics"
	"github.com/sokinpui/maano.go/internal/server"
	"github.com/sokinpui/maano.go/internal/worker"
	"github.com/sokinpui/maano.go/model"
)

func main() {
	cfg := config.Load()

	logg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	if logg.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	registry, err := model.NewRegistry(model.DefaultCatalog()...)
	if err != nil {
		logg.Fatal().Err(err).Msg("invalid model catalog")
	}

	engine := model.NewEngine(registry, buildAdapters(cfg, logg),
		model.WithTimeout(cfg.ProviderTimeout),
		model.WithLogger(logg),
		model.WithObserver(metrics.Observer{}),
	)

	store, closeStore, err := buildHistory(cfg)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to set up conversation history")
	}
	defer closeStore()

	saver := worker.New(store, cfg.SaverBuffer, cfg.SaverWorkers, logg)
	auth := server.NewAuthenticator(cfg.AuthSecret, cfg.AuthTokenTTL, cfg.AuthDemoEmail, cfg.AuthDemoPassword)
	if !auth.Enabled() {
		logg.Warn().Msg("MAANO_AUTH_SECRET is not set, protected routes accept anonymous requests")
	}

	srv := server.New(engine,
		server.WithHistory(store),
		server.WithSaver(saver),
		server.WithAuth(auth),
		server.WithLogger(logg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logg.Info().
		Int("port", cfg.HTTPPort).
		Int("models", len(registry.List())).
		Str("history", cfg.HistoryBackend).
		Msg("server starting")

	if err := serve(ctx, srv, saver, fmt.Sprintf(":%d", cfg.HTTPPort)); err != nil {
		logg.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logg.Info().Msg("server stopped")
}

type httpRunner interface {
	Run(ctx context.Context, addr string) error
}

type saverRunner interface {
	Run(ctx context.Context)
}

// serve runs the HTTP server until ctx is canceled. The saver keeps draining
// until the HTTP server has finished shutting down, so records submitted by
// in-flight handlers are still written.
func serve(ctx context.Context, srv httpRunner, saver saverRunner, addr string) error {
	saverCtx, stopSaver := context.WithCancel(context.Background())
	saverDone := make(chan struct{})
	go func() {
		defer close(saverDone)
		saver.Run(saverCtx)
	}()

	err := srv.Run(ctx, addr)

	stopSaver()
	<-saverDone
	return err
}

func buildAdapters(cfg *config.Settings, logg zerolog.Logger) model.Adapters {
	missing := func(provider model.Provider, key string) {
		if strings.TrimSpace(key) == "" {
			logg.Warn().Str("provider", string(provider)).Msg("no API key configured, calls will fail")
		}
	}
	missing(model.ProviderOpenAI, cfg.OpenAIAPIKey)
	missing(model.ProviderAnthropic, cfg.AnthropicAPIKey)
	missing(model.ProviderGemini, strings.Join(cfg.GeminiAPIKeys, ""))
	missing(model.ProviderQwen, cfg.QwenAPIKey)

	return model.Adapters{
		OpenAI:    model.NewOpenAIAdapter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL),
		Anthropic: model.NewAnthropicAdapter(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, logg),
		Gemini:    model.NewGeminiAdapter(cfg.GeminiAPIKeys, cfg.GeminiBaseURL),
		Qwen:      model.NewQwenAdapter(cfg.QwenAPIKey, cfg.QwenBaseURL, logg),
	}
}

func buildHistory(cfg *config.Settings) (history.Store, func(), error) {
	switch strings.ToLower(cfg.HistoryBackend) {
	case "noop":
		return history.Noop{}, func() {}, nil
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			_ = redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return history.NewRedis(redisClient, cfg.HistoryKey, cfg.HistoryLimit), func() { _ = redisClient.Close() }, nil
	default:
		return history.NewMemory(cfg.HistoryLimit), func() {}, nil
	}
}
