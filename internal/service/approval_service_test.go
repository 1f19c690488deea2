package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"Chat_Community/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCodeStore struct {
	pending   map[string]string
	confirmed map[string]string
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{pending: map[string]string{}, confirmed: map[string]string{}}
}

func (f *fakeCodeStore) SavePending(_ context.Context, userID, code string) error {
	f.pending[userID] = code
	return nil
}

func (f *fakeCodeStore) Confirm(_ context.Context, userID string) error {
	code, ok := f.pending[userID]
	if !ok {
		return errors.New("no pending code")
	}
	delete(f.pending, userID)
	f.confirmed[userID] = code
	return nil
}

func (f *fakeCodeStore) DropPending(_ context.Context, userID string) error {
	delete(f.pending, userID)
	return nil
}

func (f *fakeCodeStore) Consume(_ context.Context, userID, code string) (bool, error) {
	if f.confirmed[userID] != code || code == "" {
		return false, nil
	}
	delete(f.confirmed, userID)
	return true, nil
}

func (f *fakeCodeStore) CodeTTL() time.Duration { return 15 * time.Minute }

type fakeMailer struct {
	to   []string
	body []string
	err  error
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.body = append(m.body, htmlBody)
	return nil
}

func TestApprovalService_RequestAndApprove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mkUser(t, "carol")
	codes := newFakeCodeStore()
	mailer := &fakeMailer{}
	svc := NewApprovalService(env.stores.Users, codes, mailer)

	require.NoError(t, svc.RequestApproval(ctx, u.ID))
	assert.Equal(t, []string{u.Email}, mailer.to)
	assert.Empty(t, codes.pending)
	code := codes.confirmed[u.ID]
	require.Len(t, code, 6)
	assert.Contains(t, mailer.body[0], code)

	_, err := svc.Approve(ctx, u.ID, "000000x")
	assert.ErrorIs(t, err, ErrApprovalFailed)

	approved, err := svc.Approve(ctx, u.ID, code)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	// 验证码只能使用一次
	_, err = svc.Approve(ctx, u.ID, code)
	assert.ErrorIs(t, err, ErrApprovalFailed)
}

func TestApprovalService_MailFailureDropsPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mkUser(t, "dave")
	codes := newFakeCodeStore()
	svc := NewApprovalService(env.stores.Users, codes, &fakeMailer{err: errors.New("smtp down")})

	err := svc.RequestApproval(ctx, u.ID)
	assert.Error(t, err)
	assert.Empty(t, codes.pending)
	assert.Empty(t, codes.confirmed)
}

func TestApprovalService_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	svc := NewApprovalService(env.stores.Users, newFakeCodeStore(), &fakeMailer{})

	err := svc.RequestApproval(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidReference)
	err = svc.RequestApproval(context.Background(), pkg.NewID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
