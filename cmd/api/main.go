package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"concierge-llm/internal/config"
	"concierge-llm/internal/db"
	apihttp "concierge-llm/internal/http"
	"concierge-llm/internal/llm"
	"concierge-llm/internal/providers"
	"concierge-llm/internal/repository"
	"concierge-llm/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Sin DATABASE_URL el servicio corre en modo demo: mensajes en memoria
	// y conocimiento estático, sin pgvector.
	var messageRepo repository.MessageRepository = repository.NewMemoryMessageRepository()
	var knowledge providers.Knowledge = providers.NewStaticKnowledge()
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		messageRepo = repository.NewPgMessageRepository(pool)
		embedder := llm.NewEmbeddingHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel)
		knowledge = providers.NewVectorKnowledge(repository.NewPgKnowledgeRepository(pool), embedder)
	} else {
		logger.Warn("DATABASE_URL not set, running with in-memory stores")
	}

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)

	registry := service.NewSessionRegistry(messageRepo, logger)
	orchestrator := service.NewOrchestrator(
		providers.NewStaticWeather(),
		providers.NewStaticClock(),
		providers.NewStaticPlaces(),
		knowledge,
		registry,
		logger,
	)
	retrievalSvc := service.NewRetrievalService(llmClient, knowledge, logger)

	var limiter service.RequestRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisRequestRateLimiter(
				redisClient,
				time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
				cfg.RateLimitMax,
			)
		}
		cancel()
	}

	// Barrido periódico de sesiones inactivas.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			out := registry.CleanupInactive(ctx, cfg.SessionSweepHours)
			if out.IsError() {
				logger.Warn("session sweep failed", zap.Error(out.Err()))
				continue
			}
			if out.Value() > 0 {
				logger.Info("session sweep", zap.Int("ended", out.Value()))
			}
		}
	}()

	orchestratorHandler := apihttp.NewOrchestratorHandler(logger, orchestrator)
	sessionHandler := apihttp.NewSessionHandler(logger, registry)
	retrievalHandler := apihttp.NewRetrievalHandler(logger, retrievalSvc)
	router := apihttp.NewRouter(logger, orchestratorHandler, sessionHandler, retrievalHandler, limiter)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
