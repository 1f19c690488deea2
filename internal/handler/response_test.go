package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"Chat_Community/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidReference, http.StatusBadRequest},
		{fmt.Errorf("%w: blank", service.ErrValidation), http.StatusBadRequest},
		{service.ErrUserNotFound, http.StatusNotFound},
		{service.ErrCommunityNotFound, http.StatusNotFound},
		{service.ErrMessageNotFound, http.StatusNotFound},
		{service.ErrOwnerNotFound, http.StatusNotFound},
		{service.ErrUnauthorized, http.StatusForbidden},
		{service.ErrNotAMember, http.StatusForbidden},
		{service.ErrRateLimited, http.StatusTooManyRequests},
		{service.ErrDuplicateMembership, http.StatusConflict},
		{service.ErrEmailTaken, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(service.ErrorCode(tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
