package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/promotion-board/internal/models"
	"github.com/aimd54/promotion-board/internal/service/catalog"
)

type createCatalogBadgeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	Level       string `json:"level" binding:"required"`
}

type updateCatalogBadgeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Level       *string `json:"level"`
}

// ListCatalogBadges returns the badge catalog.
// GET /api/v1/catalog-badges?include_inactive=1.
func (h *Handler) ListCatalogBadges(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "1" || c.Query("include_inactive") == "true"
	badges, err := h.catalog.List(c.Request.Context(), includeInactive, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"catalog_badges": badges, "total": len(badges)})
}

// GetCatalogBadge returns one catalog badge.
// GET /api/v1/catalog-badges/:id.
func (h *Handler) GetCatalogBadge(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid catalog badge id")
		return
	}
	badge, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, badge)
}

// CreateCatalogBadge creates a catalog badge.
// POST /api/v1/catalog-badges.
func (h *Handler) CreateCatalogBadge(c *gin.Context) {
	var req createCatalogBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	badge, err := h.catalog.Create(c.Request.Context(), catalog.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    models.BadgeCategory(req.Category),
		Level:       models.BadgeLevel(req.Level),
	}, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, badge)
}

// UpdateCatalogBadge edits a catalog badge, bumping its version.
// PATCH /api/v1/catalog-badges/:id.
func (h *Handler) UpdateCatalogBadge(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid catalog badge id")
		return
	}
	var req updateCatalogBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	in := catalog.UpdateInput{Name: req.Name, Description: req.Description}
	if req.Category != nil {
		cat := models.BadgeCategory(*req.Category)
		in.Category = &cat
	}
	if req.Level != nil {
		lvl := models.BadgeLevel(*req.Level)
		in.Level = &lvl
	}

	badge, err := h.catalog.Update(c.Request.Context(), id, in, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, badge)
}

// DeactivateCatalogBadge hides a catalog badge from new applications.
// POST /api/v1/catalog-badges/:id/deactivate.
func (h *Handler) DeactivateCatalogBadge(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid catalog badge id")
		return
	}
	badge, err := h.catalog.Deactivate(c.Request.Context(), id, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, badge)
}
