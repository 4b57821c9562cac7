package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
	"github.com/gulfbridge/mortgage-crm-backend/internal/services"
)

// respondError maps service and pipeline errors onto HTTP status codes with
// machine-readable error codes. Unmapped errors become a 500 and are logged;
// their text is not leaked to the client.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not_found",
			"code":  "NOT_FOUND",
		})
	case errors.Is(err, pipeline.ErrUnknownStage):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_stage",
			"message": err.Error(),
			"code":    "INVALID_STAGE",
		})
	case errors.Is(err, pipeline.ErrStageTerminal):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "stage_terminal",
			"message": "case is in a terminal stage",
			"code":    "STAGE_TERMINAL",
		})
	case errors.Is(err, pipeline.ErrStatusTerminal):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "status_terminal",
			"message": "record is in a terminal status",
			"code":    "STATUS_TERMINAL",
		})
	case errors.Is(err, pipeline.ErrReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "reason_required",
			"message": "a non-empty reason is required",
			"code":    "REASON_REQUIRED",
		})
	case errors.Is(err, pipeline.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "invalid_transition",
			"message": err.Error(),
			"code":    "INVALID_TRANSITION",
		})
	case errors.Is(err, pipeline.ErrUnknownKind):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unknown_kind",
			"message": err.Error(),
			"code":    "UNKNOWN_KIND",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid_credentials",
			"code":  "INVALID_CREDENTIALS",
		})
	case errors.Is(err, services.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "account_disabled",
			"code":  "ACCOUNT_DISABLED",
		})
	case errors.Is(err, services.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{
			"error": "email_exists",
			"code":  "EMAIL_EXISTS",
		})
	default:
		logger.WithError(err).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal_error",
			"code":  "INTERNAL_ERROR",
		})
	}
}

// badRequest responds with a validation failure
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"details": err.Error(),
		"code":    "INVALID_REQUEST",
	})
}

// parseID parses a UUID path parameter, responding 400 on failure.
// The bool reports whether parsing succeeded.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_id",
			"details": name + " must be a valid UUID",
			"code":    "INVALID_ID",
		})
		return uuid.Nil, false
	}
	return id, true
}
