package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

const openAPIPath = "/openapi/airbook.json"

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type RouterConfig struct {
	Log        *logrus.Entry
	Tokens     TokenParser
	SwaggerDir string
	Checks     map[string]HealthCheck
}

type Handlers struct {
	Auth         *AuthHandler
	Bookings     *BookingHandler
	Countries    *CatalogHandler[domain.Country]
	Cities       *CatalogHandler[domain.City]
	Airports     *CatalogHandler[domain.Airport]
	Airlines     *CatalogHandler[domain.Airline]
	Destinations *CatalogHandler[domain.Destination]
	Schedules    *CatalogHandler[domain.FlightSchedule]
	Promotions   *CatalogHandler[domain.Promotion]
}

func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	registerValidation()

	router := gin.New()
	router.Use(RequestLogger(cfg.Log), Recovery())

	router.GET("/health", health(cfg.Checks))
	if cfg.SwaggerDir != "" {
		router.Static("/openapi", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(openAPIPath))))
	}

	authn := Authenticate(cfg.Tokens)
	admin := []gin.HandlerFunc{authn, RequireAdmin()}

	apiGroup := router.Group("/api")
	h.Auth.Register(apiGroup.Group("/auth"), authn)
	h.Bookings.Register(apiGroup.Group("/bookings", authn), RequireAdmin())

	h.Countries.Register(apiGroup.Group("/countries"), admin...)
	h.Cities.Register(apiGroup.Group("/cities"), admin...)
	h.Airports.Register(apiGroup.Group("/airports"), admin...)
	h.Airlines.Register(apiGroup.Group("/airlines"), admin...)
	h.Destinations.Register(apiGroup.Group("/destinations"), admin...)
	h.Schedules.Register(apiGroup.Group("/flight-schedules"), admin...)
	h.Promotions.Register(apiGroup.Group("/promotions"), admin...)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, envelope{Success: false, Message: "route not found"})
	})
	return router
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				requestLogger(c).WithError(err).WithField("dependency", name).Warn("health check failed")
				status[name] = "down"
				healthy = false
				continue
			}
			status[name] = "up"
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, envelope{Success: false, Message: "degraded", Data: status})
			return
		}
		respond(c, http.StatusOK, "ok", status)
	}
}
