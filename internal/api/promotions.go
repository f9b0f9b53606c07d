package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createPromotionRequest struct {
	TemplateID uint `json:"template_id" binding:"required"`
}

type badgeIDsRequest struct {
	BadgeApplicationIDs []uint `json:"badge_application_ids" binding:"required"`
}

type decisionRequest struct {
	Decision     string `json:"decision" binding:"required"`
	RejectReason string `json:"reject_reason"`
}

// CreatePromotion opens a draft promotion against a template.
// POST /api/v1/promotions.
func (h *Handler) CreatePromotion(c *gin.Context) {
	userID, _ := currentUser(c)
	var req createPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.promotions.Create(c.Request.Context(), req.TemplateID, userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListPromotions returns the caller's promotions.
// GET /api/v1/promotions.
func (h *Handler) ListPromotions(c *gin.Context) {
	userID, _ := currentUser(c)
	ps, err := h.promotions.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotions": ps, "total": len(ps)})
}

// GetPromotion returns one promotion with its reservations.
// GET /api/v1/promotions/:id.
func (h *Handler) GetPromotion(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid promotion id")
		return
	}
	p, err := h.promotions.Get(c.Request.Context(), id, userID, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeletePromotion deletes a draft promotion, releasing its reservations.
// DELETE /api/v1/promotions/:id.
func (h *Handler) DeletePromotion(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid promotion id")
		return
	}
	if err := h.promotions.Delete(c.Request.Context(), id, userID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddBadges reserves accepted badge applications for a draft promotion.
// POST /api/v1/promotions/:id/badges.
func (h *Handler) AddBadges(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid promotion id")
		return
	}
	var req badgeIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.promotions.AddBadges(c.Request.Context(), id, req.BadgeApplicationIDs, userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RemoveBadges releases reservations a draft promotion holds.
// DELETE /api/v1/promotions/:id/badges.
func (h *Handler) RemoveBadges(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid promotion id")
		return
	}
	var req badgeIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.promotions.RemoveBadges(c.Request.Context(), id, req.BadgeApplicationIDs, userID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ValidatePromotion returns the eligibility preview for a promotion. Safe to
// call repeatedly; the UI polls it after every add/remove.
// GET /api/v1/promotions/:id/validation.
func (h *Handler) ValidatePromotion(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid promotion id")
		return
	}
	result, err := h.promotions.Validate(c.Request.Context(), id, userID, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SubmitPromotion submits a valid draft promotion for decision.
// POST /api/v1/promotions/:id/submit.
func (h *Handler) SubmitPromotion(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid promotion id")
		return
	}
	p, err := h.promotions.Submit(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DecidePromotion records the admin decision on a submitted promotion.
// POST /api/v1/promotions/:id/decision.
func (h *Handler) DecidePromotion(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid promotion id")
		return
	}
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.promotions.RecordDecision(c.Request.Context(), id, userID, isAdmin(c), req.Decision, req.RejectReason)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
