package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"ai-interview-service/internal/config"
	aiAdapters "ai-interview-service/internal/infra/adapters/ai"
	"ai-interview-service/internal/infra/adapters/dashscope"
	"ai-interview-service/internal/infra/adapters/oss"
	"ai-interview-service/internal/infra/api"
	"ai-interview-service/internal/infra/audio"
	pg "ai-interview-service/internal/infra/db/postgres"
	"ai-interview-service/internal/infra/i18n"
	"ai-interview-service/internal/infra/logging"
	"ai-interview-service/internal/infra/metrics"
	red "ai-interview-service/internal/infra/redis"
	"ai-interview-service/internal/infra/sched"
	"ai-interview-service/internal/infra/security"
	"ai-interview-service/internal/infra/staging"
	"ai-interview-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed limits)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	// ---- Redis (optional; only backs the rate limiter) ----
	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; upload rate limiting disabled")
	}

	// ---- Transcript encryption (optional) ----
	var encSvc *security.EncryptionService
	if cfg.Security.EncryptionKey != "" {
		encSvc, err = security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("encryption service init failed")
		}
	} else {
		logger.Warn().Msg("security.encryption_key not set; transcripts stored in plaintext")
	}

	// ---- Object store ----
	accessKey := os.Getenv(cfg.Store.AccessKeyEnv)
	secretKey := os.Getenv(cfg.Store.SecretKeyEnv)
	if accessKey == "" || secretKey == "" {
		logger.Fatal().
			Str("access_key_env", cfg.Store.AccessKeyEnv).
			Str("secret_key_env", cfg.Store.SecretKeyEnv).
			Msg("object store credentials missing from environment")
	}
	s3Client := s3.New(s3.Options{
		Region:       cfg.Store.Region,
		BaseEndpoint: aws.String(cfg.Store.Endpoint),
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: accessKey, SecretAccessKey: secretKey}, nil
		}),
	})
	objectStore := oss.New(s3Client, cfg.Store.Bucket, cfg.Store.PublicHost, logger)

	// ---- DashScope speech services ----
	dashKey := os.Getenv(cfg.DashScope.APIKeyEnv)
	dsClient, err := dashscope.NewClient(dashKey, dashscope.WithBaseURL(cfg.DashScope.BaseURL))
	if err != nil {
		logger.Fatal().Err(err).Msg("dashscope client init failed")
	}
	transcriber := dashscope.NewTranscriber(dsClient, dashscope.TranscriberConfig{
		Model:         cfg.DashScope.ASRModel,
		LanguageHints: cfg.DashScope.LanguageHints,
		PollAttempts:  cfg.DashScope.PollAttempts,
		PollInterval:  cfg.DashScope.PollInterval,
	}, logger)
	synthesizer := dashscope.NewSynthesizer(dsClient, cfg.DashScope.TTSModel, cfg.DashScope.Voice, logger)

	// ---- Text generation with apology fallback ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("translator init failed")
	}
	qwen, err := aiAdapters.NewQwenAdapter(dashKey, cfg.DashScope.ChatBaseURL, cfg.DashScope.ChatModel, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("qwen adapter init failed")
	}
	generator := aiAdapters.NewFallbackGenerator(qwen, translator, logger)

	// ---- Local staging + pipeline ----
	stagingStore, err := staging.NewStore(cfg.Staging.Dir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("staging dir init failed")
	}
	normalizer := audio.NewFFmpegNormalizer(logger)
	repo := pg.NewInterviewRepo(pool, encSvc)
	interviewUC := usecase.NewInterviewUseCase(
		stagingStore, normalizer, objectStore, transcriber, generator, synthesizer, repo,
		cfg.Staging.AllowedExtensions, logger,
	)

	// ---- Staging janitor ----
	if cfg.Staging.SweepInterval > 0 {
		janitor := sched.NewStagingJanitor(cfg.Staging.Dir, cfg.Staging.SweepInterval, cfg.Staging.MaxAge, logger)
		go func() { _ = janitor.Run(ctx) }()
	}

	// ---- HTTP server ----
	srv := api.NewServer(interviewUC, translator, rateLimiter, api.ServerConfig{
		RequestTimeout:    cfg.Server.RequestTimeout,
		MaxConcurrentRuns: cfg.Server.MaxConcurrentRuns,
		MaxUploadBytes:    cfg.Server.MaxUploadBytes,
		RatePerMinute:     cfg.Redis.RatePerMinute,
	}, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
