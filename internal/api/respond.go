package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/promotion-board/internal/apperrors"
	"github.com/aimd54/promotion-board/pkg/logger"
)

// writeError maps a service error onto the stable HTTP contract. Expected
// business errors pass through verbatim; everything else is logged and
// collapsed into a generic 500 with no internal detail.
func writeError(c *gin.Context, log *logger.Logger, err error) {
	var conflict *apperrors.ReservationConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error": gin.H{
				"code":                 apperrors.CodeBadgeAlreadyReserved,
				"conflict_type":        apperrors.CodeBadgeAlreadyReserved,
				"badge_application_id": conflict.BadgeApplicationID,
				"owning_promotion_id":  conflict.OwningPromotionID,
				"message":              conflict.Error(),
			},
		})
		return
	}

	var failed *apperrors.ValidationFailedError
	if errors.As(err, &failed) {
		c.JSON(http.StatusConflict, gin.H{
			"error": gin.H{
				"code":    apperrors.CodePromotionValidationFailed,
				"missing": failed.Missing,
				"message": failed.Error(),
			},
		})
		return
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case apperrors.KindNotFound:
			status = http.StatusNotFound
		case apperrors.KindForbidden:
			status = http.StatusForbidden
		case apperrors.KindValidation:
			status = http.StatusBadRequest
		case apperrors.KindInvalidTransition, apperrors.KindConflict:
			status = http.StatusConflict
		case apperrors.KindInternal:
			log.Error().Err(appErr.Unwrap()).Str("code", appErr.Code).Msg("Internal error")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"code": apperrors.CodeInternal, "message": "internal error"},
			})
			return
		}
		c.JSON(status, gin.H{
			"error": gin.H{"code": appErr.Code, "message": appErr.Message},
		})
		return
	}

	log.Error().Err(err).Msg("Unclassified error")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"code": apperrors.CodeInternal, "message": "internal error"},
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{"code": apperrors.CodeValidationError, "message": message},
	})
}
