package service

import (
	"errors"

	"Chat_Community/internal/repository"
)

var (
	ErrInvalidReference    = errors.New("invalid reference")
	ErrValidation          = errors.New("validation error")
	ErrUserNotFound        = errors.New("user not found")
	ErrCommunityNotFound   = errors.New("community not found")
	ErrMessageNotFound     = errors.New("message not found")
	ErrOwnerNotFound       = errors.New("owner not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotAMember          = errors.New("not a member of community")
	ErrRateLimited         = errors.New("rate limited")
	ErrDuplicateMembership = errors.New("duplicate membership")
	ErrEmailTaken          = errors.New("email already registered")
	ErrApprovalFailed      = errors.New("approval failed")

	// 以下两个是告警：主操作已经成功，只是后续步骤失败
	ErrCascadeIncomplete         = errors.New("cascade delete incomplete")
	ErrOwnerMembershipIncomplete = errors.New("owner membership not recorded")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidReference, "INVALID_REFERENCE"},
	{ErrValidation, "VALIDATION_ERROR"},
	{ErrUserNotFound, "USER_NOT_FOUND"},
	{ErrCommunityNotFound, "COMMUNITY_NOT_FOUND"},
	{ErrMessageNotFound, "MESSAGE_NOT_FOUND"},
	{ErrOwnerNotFound, "OWNER_NOT_FOUND"},
	{ErrUnauthorized, "UNAUTHORIZED"},
	{ErrNotAMember, "NOT_A_MEMBER"},
	{ErrRateLimited, "RATE_LIMITED"},
	{ErrDuplicateMembership, "DUPLICATE_MEMBERSHIP"},
	{ErrEmailTaken, "EMAIL_TAKEN"},
	{ErrApprovalFailed, "APPROVAL_FAILED"},
	{ErrCascadeIncomplete, "CASCADE_INCOMPLETE"},
	{ErrOwnerMembershipIncomplete, "OWNER_MEMBERSHIP_INCOMPLETE"},
}

// ErrorCode 返回稳定的错误码，供 HTTP 层翻译
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "INTERNAL"
}

// IsWarning 主资源已经写入/删除，调用方应按成功处理并附带告警
func IsWarning(err error) bool {
	return errors.Is(err, ErrCascadeIncomplete) || errors.Is(err, ErrOwnerMembershipIncomplete)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
