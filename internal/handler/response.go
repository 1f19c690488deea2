package handler

import (
	"errors"
	"net/http"

	"Chat_Community/internal/logging"
	"Chat_Community/internal/middleware"
	"Chat_Community/internal/service"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidReference), errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCommunityNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrOwnerNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrNotAMember):
		return http.StatusForbidden
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrDuplicateMembership), errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrApprovalFailed):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.WithRequest(c.GetString(middleware.ContextRequestIDKey), callerID(c), c.FullPath()).
			Errorw("request failed", "error", err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"code": service.ErrorCode(err), "msg": msg})
}

func writeInvalidParams(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "msg": "invalid params"})
}

func callerID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}
