package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/productcat/backend/internal/domain"
	"github.com/productcat/backend/internal/version"
)

// CategorizationUsecase is the business logic the handlers depend on
type CategorizationUsecase interface {
	Categorize(ctx context.Context, productID string) (*domain.CategoryResponse, error)
	CategorizeEnhanced(ctx context.Context, productID string) (*domain.EnhancedCategoryResponse, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	categorizer CategorizationUsecase
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(categorizer CategorizationUsecase, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		categorizer: categorizer,
		logger:      logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, domain.HealthStatus{
		Status:    "healthy",
		Service:   version.Service,
		Version:   version.Version,
		Timestamp: time.Now().UTC(),
	})
}

// Categorize handles basic categorization requests
func (h *Handler) Categorize(c *gin.Context) {
	var req domain.CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	result, err := h.categorizer.Categorize(c.Request.Context(), req.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CategorizeEnhanced handles enhanced categorization requests
func (h *Handler) CategorizeEnhanced(c *gin.Context) {
	var req domain.CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	result, err := h.categorizer.CategorizeEnhanced(c.Request.Context(), req.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondError maps domain errors to status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)

	fields := []zap.Field{
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Info("request rejected", fields...)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrResponseShapeMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
