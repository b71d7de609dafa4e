package http

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/productcat/backend/config"
)

// productIDPattern accepts identifiers that are safe as a single URL path segment
var productIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	registerValidators(logger)

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(MetricsMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Operational endpoints are not rate limited
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/")
	if cfg.RateLimit.Enabled {
		api.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP)))
	}
	{
		api.POST("/categorize", handler.Categorize)
		api.POST("/categorize/enhanced", handler.CategorizeEnhanced)
	}

	return router
}

// registerValidators adds the productid rule to gin's validator
func registerValidators(logger *zap.Logger) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	if err := v.RegisterValidation("productid", validateProductID); err != nil {
		logger.Error("failed to register productid validator", zap.Error(err))
	}
}

func validateProductID(fl validator.FieldLevel) bool {
	return productIDPattern.MatchString(fl.Field().String())
}
