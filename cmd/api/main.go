package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeiKhy/shorturl-service/internal/config"
	"github.com/SergeiKhy/shorturl-service/internal/handler"
	"github.com/SergeiKhy/shorturl-service/internal/middleware"
	"github.com/SergeiKhy/shorturl-service/internal/repository"
	"github.com/SergeiKhy/shorturl-service/internal/service"
	"github.com/SergeiKhy/shorturl-service/pkg/remotelog"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Удалённый лог-сервис. Без endpoint-а события остаются локальными
	var sink remotelog.Sink = remotelog.NopSink{}
	if cfg.Telemetry.URL != "" {
		sink = remotelog.NewClient(cfg.Telemetry.URL, cfg.Telemetry.Token, logger)
		logger.Info("Remote logging enabled", zap.String("endpoint", cfg.Telemetry.URL))
	}

	// Подключение к БД (postgres)
	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Подключение к Redis
	redis, err := repository.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	// Инициализация репозиториев
	urlRepo := repository.NewShortURLRepository(db)
	clickRepo := repository.NewClickRepository(db)
	cacheRepo := repository.NewCacheRepository(redis)

	// Инициализация сервиса
	shortenerService := service.NewShortenerService(urlRepo, clickRepo, cacheRepo, sink, cfg.App.BaseURL)

	// Фоновая очистка истёкших ссылок
	cleanupWorker := service.NewCleanupWorker(shortenerService, cfg.Cleanup.Interval, logger)
	cleanupWorker.Start()
	defer cleanupWorker.Stop()

	// Инициализация middleware
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		CleanupInterval:   time.Minute,
	})
	defer rateLimiter.Stop()

	// Настройка роутера
	router := handler.NewRouter(shortenerService, rateLimiter, sink, logger)

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
