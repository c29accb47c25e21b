package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/medoffice-ai-agent/cmd/mainconfig"
	"github.com/wolfman30/medoffice-ai-agent/internal/api/router"
	"github.com/wolfman30/medoffice-ai-agent/internal/availability"
	"github.com/wolfman30/medoffice-ai-agent/internal/compliance"
	appconfig "github.com/wolfman30/medoffice-ai-agent/internal/config"
	"github.com/wolfman30/medoffice-ai-agent/internal/conversation"
	"github.com/wolfman30/medoffice-ai-agent/internal/extract"
	"github.com/wolfman30/medoffice-ai-agent/internal/inquiry"
	"github.com/wolfman30/medoffice-ai-agent/internal/nlu"
	"github.com/wolfman30/medoffice-ai-agent/internal/notify"
	"github.com/wolfman30/medoffice-ai-agent/internal/observability/metrics"
	"github.com/wolfman30/medoffice-ai-agent/internal/scheduling"
	"github.com/wolfman30/medoffice-ai-agent/internal/store"
	"github.com/wolfman30/medoffice-ai-agent/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medoffice-ai-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Persistence: Postgres in production, memory store for demos and local
	// development.
	var st store.Store
	var db *sql.DB
	if cfg.UseMemoryStore || cfg.DatabaseURL == "" {
		mem := store.NewMemoryStore()
		if cfg.SeedDemoData {
			mem.SeedDemoDoctors(time.Now().UTC(), 14)
			logger.Info("seeded demo doctors")
		}
		st = mem
		logger.Info("using in-memory store")
	} else {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		st = store.NewPostgresStore(pool)

		// database/sql handle for transcripts and the compliance audit trail.
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed", "error", err, "addr", cfg.RedisAddr)
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Bedrock is the primary model; Gemini takes over when Bedrock is
	// unavailable. Without either, the deterministic tiers carry the agent.
	var llm nlu.LLMClient
	if cfg.BedrockModelID != "" {
		llm = nlu.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := nlu.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("gemini client init failed", "error", err)
		} else {
			defer gemini.Close()
			if llm != nil {
				llm = nlu.NewFallbackLLMClient(llm, gemini, logger.Logger)
			} else {
				llm = gemini
			}
		}
	}
	if llm == nil {
		logger.Warn("no LLM configured; running with pattern and heuristic tiers only")
	}

	var sender notify.Sender
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			sender = s
		}
	case "ses":
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); s != nil {
			sender = s
		}
	default:
		sender = notify.NewStubSender(logger)
	}
	if sender == nil {
		logger.Warn("email provider misconfigured, receipts disabled", "provider", cfg.EmailProvider)
	}

	resolver := availability.NewResolver(st)
	scheduler := scheduling.New(scheduling.Config{
		Store:    st,
		Resolver: resolver,
		Notifier: sender,
		Logger:   logger,
	})
	extractor := extract.New(extract.Config{
		LLM:    llm,
		Model:  cfg.BedrockModelID,
		Policy: extract.TimePolicy{AfternoonBias: cfg.AfternoonBias},
		Logger: logger,
	})

	audit := compliance.NewAuditService(db)
	guard := compliance.NewGuard(llm, cfg.BedrockModelID, audit, logger)
	disclaimers := compliance.NewDisclaimerService(audit, compliance.DefaultDisclaimerConfig())

	var transcripts *conversation.TranscriptStore
	if cfg.TranscriptEnabled {
		transcripts = conversation.NewTranscriptStore(db)
	}

	convMetrics := metrics.NewConversationMetrics(prometheus.DefaultRegisterer)

	engine := conversation.NewEngine(conversation.EngineConfig{
		Contexts:    conversation.NewContextStore(redisClient, cfg.ConversationTTL),
		Extractor:   extractor,
		Scheduler:   scheduler,
		Resolver:    resolver,
		Store:       st,
		Intents:     conversation.NewIntentClassifier(llm, cfg.BedrockModelID, logger),
		Inquiries:   inquiry.NewService(llm, cfg.BedrockModelID, logger),
		Guard:       guard,
		Disclaimers: disclaimers,
		Transcripts: transcripts,
		Metrics:     convMetrics,
		Retry: conversation.RetryPolicy{
			FieldMaxAttempts: cfg.FieldMaxAttempts,
			NameMaxAttempts:  cfg.NameMaxAttempts,
		},
		WindowDays: cfg.SearchWindowDays,
		ClinicName: cfg.ClinicName,
		Logger:     logger,
	})

	r := router.New(&router.Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(engine, logger),
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSec,
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
