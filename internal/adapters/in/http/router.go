package http

import (
	"net/http"
	"strconv"
	"time"

	"orders/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Caller identity headers set by the gateway in front of the service.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
	HeaderUserType = "X-User-Type"
)

const actorKey = "actor"

// NewRouter builds the echo instance with every route registered.
// gatherer may be nil, in which case the default registry is exposed.
func NewRouter(s *Server, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(s.logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	metricsHandler := promhttp.Handler()
	if gatherer != nil {
		metricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	e.GET("/metrics", echo.WrapHandler(metricsHandler))

	g := e.Group("/consumer/orders", s.requireActor)
	g.POST("/place", s.PlaceOrder)
	g.PUT("/pay/:id", s.Pay)
	g.GET("/pay/:id/result", s.PayResult)
	g.PUT("/cancel", s.Cancel)
	g.GET("/consumerQueryList", s.List)
	g.GET("/:id", s.Detail)

	return e
}

// requireActor resolves the caller from the identity headers. The type
// defaults to USER when the header is absent. SYSTEM is never accepted.
func (s *Server) requireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header

		id, err := strconv.ParseInt(header.Get(HeaderUserID), 10, 64)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing or malformed " + HeaderUserID,
			})
		}

		kind := kernel.ActorTypeUser
		if raw := header.Get(HeaderUserType); raw != "" {
			if kind, err = kernel.ParseActorType(raw); err != nil {
				return s.fail(c, err)
			}
		}
		if kind == kernel.ActorTypeSystem {
			return c.JSON(http.StatusForbidden, ErrorResponse{
				Code:    http.StatusForbidden,
				Message: "system identity is reserved",
			})
		}

		actor, err := kernel.NewActor(id, header.Get(HeaderUserName), kind)
		if err != nil {
			return s.fail(c, err)
		}

		c.Set(actorKey, actor)
		return next(c)
	}
}

func actorFrom(c echo.Context) kernel.Actor {
	actor, _ := c.Get(actorKey).(kernel.Actor)
	return actor
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Debug("Request served",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			)
			return nil
		}
	}
}
