package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/promotion-board/pkg/logger"
)

const (
	headerUserID  = "X-User-ID"
	headerIsAdmin = "X-User-Admin"

	ctxUserID  = "user_id"
	ctxIsAdmin = "is_admin"
)

// Identity extracts the authenticated user from the headers the SSO gateway
// sets. The core only ever consumes a user id and an admin flag; everything
// about how they were authenticated lives outside this service.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(headerUserID); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{"code": "invalid_identity", "message": "invalid user id header"},
				})
				return
			}
			c.Set(ctxUserID, uint(id))
		}

		admin := c.GetHeader(headerIsAdmin)
		c.Set(ctxIsAdmin, admin == "true" || admin == "1")

		c.Next()
	}
}

// RequireUser rejects requests that carry no authenticated user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxUserID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "unauthenticated", "message": "authentication required"},
			})
			return
		}
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}

func currentUser(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func isAdmin(c *gin.Context) bool {
	v, ok := c.Get(ctxIsAdmin)
	if !ok {
		return false
	}
	admin, _ := v.(bool)
	return admin
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
