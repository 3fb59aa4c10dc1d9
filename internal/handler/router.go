package handler

import (
	"fmt"

	"github.com/SergeiKhy/shorturl-service/internal/middleware"
	"github.com/SergeiKhy/shorturl-service/internal/service"
	"github.com/SergeiKhy/shorturl-service/pkg/remotelog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(
	shortenerService service.ShortenerService,
	rateLimiter *middleware.RateLimiter,
	sink remotelog.Sink,
	logger *zap.Logger,
) *gin.Engine {
	if sink == nil {
		sink = remotelog.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Логгирование каждого запроса: локально и в удалённый sink
	router.Use(func(c *gin.Context) {
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		sink.Log(c.Request.Context(), remotelog.StackBackend, remotelog.LevelInfo, remotelog.PackageMiddleware,
			fmt.Sprintf("Incoming request: %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP()))
		c.Next()
	})

	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware())
	}

	shortURLHandler := NewShortURLHandler(shortenerService, sink, logger)
	healthHandler := NewHealthHandler()

	router.GET("/health", healthHandler.Check)
	router.POST("/shorturls", shortURLHandler.CreateShortURL)
	router.GET("/shorturls/:shortcode", shortURLHandler.GetStatistics)

	// Редирект на корневом пути, после всех статических роутов
	router.GET("/:shortcode", shortURLHandler.Redirect)

	return router
}
