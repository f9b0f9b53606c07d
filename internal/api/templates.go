package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/promotion-board/internal/models"
	"github.com/aimd54/promotion-board/internal/service/templates"
)

type ruleRequest struct {
	Category string `json:"category" binding:"required"`
	Level    string `json:"level" binding:"required"`
	Count    int    `json:"count" binding:"required"`
}

type createTemplateRequest struct {
	Path      string        `json:"path" binding:"required"`
	FromLevel string        `json:"from_level" binding:"required"`
	Rules     []ruleRequest `json:"rules" binding:"required"`
}

type updateTemplateRequest struct {
	Rules []ruleRequest `json:"rules" binding:"required"`
}

func toTemplateRules(in []ruleRequest) []models.TemplateRule {
	rules := make([]models.TemplateRule, 0, len(in))
	for _, r := range in {
		rules = append(rules, models.TemplateRule{
			Category: r.Category,
			Level:    models.BadgeLevel(r.Level),
			Count:    r.Count,
		})
	}
	return rules
}

// ListTemplates returns promotion templates.
// GET /api/v1/templates?include_inactive=1.
func (h *Handler) ListTemplates(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "1" || c.Query("include_inactive") == "true"
	tpls, err := h.templates.List(c.Request.Context(), includeInactive, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": tpls, "total": len(tpls)})
}

// GetTemplate returns one template.
// GET /api/v1/templates/:id.
func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid template id")
		return
	}
	tpl, err := h.templates.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// CreateTemplate creates a promotion template.
// POST /api/v1/templates.
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tpl, err := h.templates.Create(c.Request.Context(), templates.CreateInput{
		Path:      models.PromotionPath(req.Path),
		FromLevel: req.FromLevel,
		Rules:     toTemplateRules(req.Rules),
	}, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

// UpdateTemplate replaces a template's rules while it is unreferenced.
// PATCH /api/v1/templates/:id.
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid template id")
		return
	}
	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tpl, err := h.templates.UpdateRules(c.Request.Context(), id, toTemplateRules(req.Rules), isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// DeactivateTemplate hides a template from new promotions.
// POST /api/v1/templates/:id/deactivate.
func (h *Handler) DeactivateTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid template id")
		return
	}
	tpl, err := h.templates.Deactivate(c.Request.Context(), id, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}
