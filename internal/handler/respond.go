package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homeplan/internal/plan"
	"homeplan/internal/service"
	"homeplan/pkg/rbac"
	"homeplan/pkg/trace"
)

// Context keys set by the auth middleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// caller reads the authenticated user. It writes a 401 and returns false when absent.
func caller(c *gin.Context) (service.Caller, bool) {
	userID := c.GetString(CtxUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return service.Caller{}, false
	}
	return service.Caller{UserID: userID, Role: c.GetString(CtxRole)}, true
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var denied *rbac.PermissionDeniedError
	var owner *rbac.OwnershipError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &denied), errors.As(err, &owner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrPlanExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("path", c.FullPath()),
			zap.String("trace_id", trace.FromContext(c.Request.Context())),
			zap.Error(err),
		}
		if errors.Is(err, plan.ErrInvalidTemplate) || errors.Is(err, plan.ErrNoStandardTemplate) {
			logger.Error("Plan template configuration error", fields...)
		} else {
			logger.Error("Request failed", fields...)
		}
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
