// routes.go - Route and middleware registration
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/media-library/backend/internal/config"
	"github.com/media-library/backend/internal/library"
	"github.com/media-library/backend/internal/metrics"
	"github.com/media-library/backend/internal/query"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Scanner     library.Scanner
	Engine      query.Engine
	Source      string
	PerPage     int
	MaxPerPage  int
	ScanTimeout time.Duration
	Logger      zerolog.Logger
	Version     string
}

// DependenciesFromConfig fills the tunables of Dependencies from cfg
func DependenciesFromConfig(cfg *config.AppConfig, scanner library.Scanner, engine query.Engine, logger zerolog.Logger, version string) *Dependencies {
	return &Dependencies{
		Scanner:     scanner,
		Engine:      engine,
		Source:      strings.ToLower(cfg.Library.Source),
		PerPage:     cfg.Library.PerPage,
		MaxPerPage:  cfg.Library.MaxPerPage,
		ScanTimeout: time.Duration(cfg.Processing.ScanTimeoutSeconds) * time.Second,
		Logger:      logger,
		Version:     version,
	}
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Media  MediaHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	media := NewHandler(deps)
	return &Handlers{
		Health: NewHealthHandler(deps.Version, media.source, media.engine.Name()),
		Media:  media,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, cfg *config.AppConfig, handlers *Handlers) {
	e.GET("/api/health", handlers.Health.HandleHealth)
	e.GET(cfg.Server.APIPath, handlers.Media.HandleMediaList)

	if cfg.Advanced.EnableMetrics {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig, logger zerolog.Logger) {
	e.HTTPErrorHandler = NewErrorHandler(logger)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" || path == "/metrics"
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				event = logger.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error().Err(err).Bytes("stack", stack).Msg("panic recovered")
			return err
		},
	}))

	if cfg.Advanced.EnableMetrics {
		e.Use(metrics.EchoMiddleware())
	}

	if cfg.Server.ReadTimeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout:      time.Duration(cfg.Server.ReadTimeout) * time.Second,
			ErrorMessage: "Request timeout - library scan took too long",
		}))
	}

	if cfg.Processing.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Processing.CompressionLevel,
		}))
	}

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSOrigins(),
			AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-CSRF-Token"},
		}))
	}
}

// NewServer builds an Echo instance with middleware and API routes.
// Static library routes are registered separately.
func NewServer(cfg *config.AppConfig, deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	SetupMiddleware(e, cfg, deps.Logger)
	RegisterRoutes(e, cfg, NewHandlers(deps))
	return e
}
