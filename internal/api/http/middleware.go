package http

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/restaurant-portal/internal/auth"
	"github.com/spec-kit/restaurant-portal/internal/observability"
	apperrors "github.com/spec-kit/restaurant-portal/pkg/util/errorutil"
)

// MiddlewareConfig carries the settings of the global middleware chain.
type MiddlewareConfig struct {
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Timeout time.Duration
	// FrontendOrigin is the only origin allowed to send credentialed requests.
	FrontendOrigin string
	// CookieKey enables cookie encryption when set.
	CookieKey string
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(observability.RequestLogger(logger, cfg.Metrics))
	app.Use(errorHandlingMiddleware(logger, cfg.Metrics))
	if cfg.FrontendOrigin != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.FrontendOrigin,
			AllowMethods:     "GET,POST,OPTIONS",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowCredentials: true,
		}))
	}
	if cfg.CookieKey != "" {
		app.Use(auth.EncryptionMiddleware(cfg.CookieKey))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware renders every error and recovered panic as
// {"error":{"code","message","details"}}. Redirect errors also carry a Location header
// so plain HTTP clients can follow them.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err == nil {
				return
			}
			err = renderError(c, logger, metrics, apperrors.ToDomainError(err))
		}()
		return c.Next()
	}
}

func renderError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, de *apperrors.DomainError) error {
	metrics.RecordError(c.Path(), c.Method(), de.Code)

	switch {
	case de.HTTPStatus >= fiber.StatusInternalServerError:
		logger.Error("request failed", zap.String("path", c.Path()), zap.String("code", de.Code), zap.Error(de))
	default:
		logger.Debug("request rejected", zap.String("path", c.Path()), zap.String("code", de.Code), zap.Int("status", de.HTTPStatus))
	}

	if de.Code == apperrors.CodeRedirect {
		if location, ok := de.Details["redirect"].(string); ok && location != "" {
			c.Location(location)
		}
	}

	body := fiber.Map{"code": de.Code, "message": de.Message}
	if len(de.Details) > 0 {
		body["details"] = de.Details
	}
	return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": body})
}
