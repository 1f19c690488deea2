package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, "RATE_LIMITED", ErrorCode(ErrRateLimited))
	assert.Equal(t, "VALIDATION_ERROR", ErrorCode(fmt.Errorf("%w: text must not be blank", ErrValidation)))
	assert.Equal(t, "CASCADE_INCOMPLETE", ErrorCode(fmt.Errorf("%w: %w", ErrCascadeIncomplete, errors.New("x"))))
	assert.Equal(t, "INTERNAL", ErrorCode(errors.New("boom")))
}

func TestErrorCode_Distinct(t *testing.T) {
	seen := make(map[string]error)
	for _, ec := range errorCodes {
		prev, dup := seen[ec.code]
		assert.False(t, dup, "code %s shared by %v and %v", ec.code, prev, ec.err)
		seen[ec.code] = ec.err
		assert.Equal(t, ec.code, ErrorCode(ec.err))
	}
}
