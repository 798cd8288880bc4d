package router

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"library/internal/handler"
)

// APIPrefix is where route collections are mounted.
const APIPrefix = "/api"

// Blueprint is a named, mountable group of routes.
type Blueprint interface {
	Name() string
	Register(g *echo.Group)
}

type blueprint struct {
	name     string
	register func(g *echo.Group)
}

// NewBlueprint builds a Blueprint from a registration function.
func NewBlueprint(name string, register func(g *echo.Group)) Blueprint {
	return &blueprint{name: name, register: register}
}

func (b *blueprint) Name() string           { return b.name }
func (b *blueprint) Register(g *echo.Group) { b.register(g) }

// DefaultBlueprint is the route collection served under APIPrefix unless the caller supplies its own.
func DefaultBlueprint(indexHandler *handler.IndexHandler) Blueprint {
	return NewBlueprint("api", func(g *echo.Group) {
		g.GET("", indexHandler.Index)
		g.GET("/", indexHandler.Index)
	})
}

// Register wires middleware and the service level routes.
func Register(e *echo.Echo, logger *zap.SugaredLogger, healthHandler *handler.HealthHandler) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				logger.Errorw("request failed", append(fields, "error", v.Error)...)
				return nil
			}
			logger.Infow("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", healthHandler.Healthz)
	e.GET("/readyz", healthHandler.Readyz)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

// Mount registers a blueprint under prefix.
func Mount(e *echo.Echo, prefix string, bp Blueprint) {
	bp.Register(e.Group(prefix))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
