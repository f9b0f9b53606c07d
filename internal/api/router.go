// Package api provides the REST API for the promotion board. It exposes
// endpoints for the badge catalog, promotion templates, badge applications
// and promotions, with identity taken from gateway-injected headers.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimd54/promotion-board/internal/service/applications"
	"github.com/aimd54/promotion-board/internal/service/catalog"
	"github.com/aimd54/promotion-board/internal/service/promotions"
	"github.com/aimd54/promotion-board/internal/service/templates"
	"github.com/aimd54/promotion-board/pkg/logger"
)

// Handler handles promotion board API requests.
type Handler struct {
	catalog      *catalog.Service
	templates    *templates.Service
	applications *applications.Service
	promotions   *promotions.Service
	log          *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	catalogSvc *catalog.Service,
	templateSvc *templates.Service,
	applicationSvc *applications.Service,
	promotionSvc *promotions.Service,
	log *logger.Logger,
) *Handler {
	return &Handler{
		catalog:      catalogSvc,
		templates:    templateSvc,
		applications: applicationSvc,
		promotions:   promotionSvc,
		log:          log,
	}
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health() error
}

// NewRouter builds the gin engine with all routes and middleware attached.
// An empty metricsPath disables the Prometheus exporter.
func NewRouter(h *Handler, db HealthChecker, metricsPath string, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))
	router.Use(Identity())

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsPath != "" {
		router.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.Use(RequireUser())
	{
		v1.GET("/catalog-badges", h.ListCatalogBadges)
		v1.GET("/catalog-badges/:id", h.GetCatalogBadge)
		v1.POST("/catalog-badges", h.CreateCatalogBadge)
		v1.PATCH("/catalog-badges/:id", h.UpdateCatalogBadge)
		v1.POST("/catalog-badges/:id/deactivate", h.DeactivateCatalogBadge)

		v1.GET("/templates", h.ListTemplates)
		v1.GET("/templates/:id", h.GetTemplate)
		v1.POST("/templates", h.CreateTemplate)
		v1.PATCH("/templates/:id", h.UpdateTemplate)
		v1.POST("/templates/:id/deactivate", h.DeactivateTemplate)

		v1.POST("/applications", h.CreateApplication)
		v1.GET("/applications", h.ListApplications)
		v1.GET("/applications/:id", h.GetApplication)
		v1.PATCH("/applications/:id", h.UpdateApplication)
		v1.DELETE("/applications/:id", h.DeleteApplication)
		v1.POST("/applications/:id/submit", h.SubmitApplication)
		v1.POST("/applications/:id/review", h.ReviewApplication)

		v1.POST("/promotions", h.CreatePromotion)
		v1.GET("/promotions", h.ListPromotions)
		v1.GET("/promotions/:id", h.GetPromotion)
		v1.DELETE("/promotions/:id", h.DeletePromotion)
		v1.POST("/promotions/:id/badges", h.AddBadges)
		v1.DELETE("/promotions/:id/badges", h.RemoveBadges)
		v1.GET("/promotions/:id/validation", h.ValidatePromotion)
		v1.POST("/promotions/:id/submit", h.SubmitPromotion)
		v1.POST("/promotions/:id/decision", h.DecidePromotion)
	}

	return router
}
