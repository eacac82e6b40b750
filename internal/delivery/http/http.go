package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"estate-metrics/internal/service"
	"estate-metrics/pkg/logger"
	"estate-metrics/pkg/middleware"
)

type handler struct {
	log      *logger.Logger
	service  *service.Service
	validate *validator.Validate
}

// SetupRoutes wires every HTTP endpoint onto the echo instance.
func SetupRoutes(e *echo.Echo, log *logger.Logger, svc *service.Service) {
	h := &handler{
		log:      log,
		service:  svc,
		validate: validator.New(),
	}

	e.Use(echomiddleware.Recover())
	e.Use(middleware.RateLimit(rate.Limit(20), 40))

	e.GET("/healthz", h.healthz)

	v1 := e.Group("/api/v1")
	v1.GET("/listings", h.listListings)
	v1.GET("/buildings/:id/cohort-stats", h.cohortStats)

	jobs := v1.Group("/jobs")
	jobs.POST("/recompute", h.recompute)
	jobs.POST("/link-buildings", h.linkBuildings)
	jobs.POST("/import-url", h.importURL)
}

func (h *handler) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
