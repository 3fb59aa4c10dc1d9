package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SergeiKhy/shorturl-service/internal/models"
	"github.com/SergeiKhy/shorturl-service/internal/repository"
	"github.com/SergeiKhy/shorturl-service/internal/service"
	"github.com/SergeiKhy/shorturl-service/pkg/remotelog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ShortURLHandler struct {
	service service.ShortenerService
	sink    remotelog.Sink
	logger  *zap.Logger
}

func NewShortURLHandler(service service.ShortenerService, sink remotelog.Sink, logger *zap.Logger) *ShortURLHandler {
	if sink == nil {
		sink = remotelog.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShortURLHandler{
		service: service,
		sink:    sink,
		logger:  logger,
	}
}

type CreateShortURLRequest struct {
	URL       string `json:"url" binding:"required"`
	Validity  *int   `json:"validity,omitempty"`
	Shortcode string `json:"shortcode,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateShortURL godoc
// @Summary Create a short URL
// @Description Create a new shortcode mapped to a long URL
// @Tags shorturls
// @Accept json
// @Produce json
// @Param request body CreateShortURLRequest true "Short URL creation request"
// @Success 201 {object} models.CreateShortURLResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /shorturls [post]
func (h *ShortURLHandler) CreateShortURL(c *gin.Context) {
	var req CreateShortURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	input := &models.CreateShortURLInput{
		URL:      req.URL,
		Validity: req.Validity,
	}
	if req.Shortcode != "" {
		input.Shortcode = &req.Shortcode
	}

	result, err := h.service.CreateShortURL(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("Failed to create short URL", zap.Error(err))

		switch {
		case errors.Is(err, service.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_url",
				Message: "Invalid URL format. Please provide a valid HTTP or HTTPS URL",
			})
		case errors.Is(err, service.ErrInvalidShortcode):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_shortcode",
				Message: "Shortcode must be alphanumeric, 4-20 characters",
			})
		case errors.Is(err, repository.ErrShortcodeTaken):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "shortcode_conflict",
				Message: "Shortcode already exists",
			})
		default:
			// Включая исчерпание попыток генерации: деталь не раскрывается
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Internal server error while creating short URL",
			})
		}
		return
	}

	h.sink.Log(c.Request.Context(), remotelog.StackBackend, remotelog.LevelInfo, remotelog.PackageHandler,
		fmt.Sprintf("Short URL created: %s", result.ShortLink))

	c.JSON(http.StatusCreated, result)
}

// Redirect godoc
// @Summary Redirect to original URL
// @Description Redirect to the original URL by shortcode, recording a click
// @Tags shorturls
// @Produce json
// @Param shortcode path string true "Shortcode"
// @Success 302 {object} nil
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /{shortcode} [get]
func (h *ShortURLHandler) Redirect(c *gin.Context) {
	shortcode := c.Param("shortcode")

	originalURL, err := h.service.GetOriginalURL(c.Request.Context(), shortcode)
	if err != nil {
		if errors.Is(err, repository.ErrShortURLNotFound) {
			h.logger.Warn("Short URL not found", zap.String("shortcode", shortcode))
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Short URL not found or has expired",
			})
			return
		}
		h.logger.Error("Failed to resolve short URL", zap.String("shortcode", shortcode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error while redirecting",
		})
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}

// GetStatistics godoc
// @Summary Get statistics for a short URL
// @Description Get click count, creation/expiry dates and full click history
// @Tags shorturls
// @Produce json
// @Param shortcode path string true "Shortcode"
// @Success 200 {object} models.ShortURLStats
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /shorturls/{shortcode} [get]
func (h *ShortURLHandler) GetStatistics(c *gin.Context) {
	shortcode := c.Param("shortcode")

	stats, err := h.service.GetStatistics(c.Request.Context(), shortcode)
	if err != nil {
		if errors.Is(err, repository.ErrShortURLNotFound) {
			h.logger.Warn("Statistics not found", zap.String("shortcode", shortcode))
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Short URL not found or has expired",
			})
			return
		}
		h.logger.Error("Failed to get statistics", zap.String("shortcode", shortcode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error while retrieving statistics",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
