package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/promotion-board/internal/service/applications"
)

type createApplicationRequest struct {
	CatalogBadgeID    uint       `json:"catalog_badge_id" binding:"required"`
	DateOfApplication time.Time  `json:"date_of_application" binding:"required"`
	DateOfFulfillment *time.Time `json:"date_of_fulfillment"`
	Reason            string     `json:"reason"`
}

type updateApplicationRequest struct {
	CatalogBadgeID    *uint      `json:"catalog_badge_id"`
	DateOfApplication *time.Time `json:"date_of_application"`
	DateOfFulfillment *time.Time `json:"date_of_fulfillment"`
	ClearFulfillment  bool       `json:"clear_fulfillment"`
	Reason            *string    `json:"reason"`
}

type reviewApplicationRequest struct {
	Decision string `json:"decision" binding:"required"`
	Reason   string `json:"reason"`
}

// CreateApplication opens a draft badge application for the caller.
// POST /api/v1/applications.
func (h *Handler) CreateApplication(c *gin.Context) {
	userID, _ := currentUser(c)
	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	app, err := h.applications.Create(c.Request.Context(), applications.CreateInput{
		CatalogBadgeID:    req.CatalogBadgeID,
		DateOfApplication: req.DateOfApplication,
		DateOfFulfillment: req.DateOfFulfillment,
		Reason:            req.Reason,
	}, userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// ListApplications returns the caller's applications; admins may ask for all.
// GET /api/v1/applications?all=1.
func (h *Handler) ListApplications(c *gin.Context) {
	userID, _ := currentUser(c)
	all := c.Query("all") == "1" || c.Query("all") == "true"
	views, err := h.applications.List(c.Request.Context(), userID, isAdmin(c), all)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": views, "total": len(views)})
}

// GetApplication returns one application.
// GET /api/v1/applications/:id.
func (h *Handler) GetApplication(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid application id")
		return
	}
	view, err := h.applications.Get(c.Request.Context(), id, userID, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateApplication patches a draft application.
// PATCH /api/v1/applications/:id.
func (h *Handler) UpdateApplication(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid application id")
		return
	}
	var req updateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	app, err := h.applications.Update(c.Request.Context(), id, applications.UpdateInput{
		CatalogBadgeID:    req.CatalogBadgeID,
		DateOfApplication: req.DateOfApplication,
		DateOfFulfillment: req.DateOfFulfillment,
		ClearFulfillment:  req.ClearFulfillment,
		Reason:            req.Reason,
	}, userID, isAdmin(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// SubmitApplication moves a draft application to submitted.
// POST /api/v1/applications/:id/submit.
func (h *Handler) SubmitApplication(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid application id")
		return
	}
	app, err := h.applications.Submit(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// ReviewApplication records the admin decision on a submitted application.
// POST /api/v1/applications/:id/review.
func (h *Handler) ReviewApplication(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid application id")
		return
	}
	var req reviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	app, err := h.applications.Review(c.Request.Context(), id, userID, isAdmin(c), req.Decision, req.Reason)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// DeleteApplication deletes a draft application.
// DELETE /api/v1/applications/:id.
func (h *Handler) DeleteApplication(c *gin.Context) {
	userID, _ := currentUser(c)
	id, ok := pathID(c)
	if !ok {
		badRequest(c, "invalid application id")
		return
	}
	if err := h.applications.Delete(c.Request.Context(), id, userID, isAdmin(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
