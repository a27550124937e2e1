package token

import (
	"context"
	"testing"
	"time"

	"github.com/ptavares/socialspaces/internal/store"
	"github.com/ptavares/socialspaces/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(secret string, ttl time.Duration) *Service {
	revoked := store.New[RevokedToken](store.NewMemoryStorage(), params.RevokedTokenKeyPrefix)
	return NewService(secret, ttl, revoked)
}

func TestIssueAndVerify(t *testing.T) {
	service := newTestService("test-secret", 10*time.Minute)

	signed, expiresAt, err := service.Issue("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)

	subject, err := service.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := newTestService("secret-one", 10*time.Minute)
	verifier := newTestService("secret-two", 10*time.Minute)

	signed, _, err := issuer.Issue("alice")
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsExpired(t *testing.T) {
	service := newTestService("test-secret", -time.Minute)

	signed, _, err := service.Issue("alice")
	require.NoError(t, err)

	_, err = service.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	service := newTestService("test-secret", 10*time.Minute)

	_, err := service.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRevokeBlocksToken(t *testing.T) {
	service := newTestService("test-secret", 10*time.Minute)

	signed, _, err := service.Issue("alice")
	require.NoError(t, err)
	require.NoError(t, service.Revoke(context.Background(), signed))

	_, err = service.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

// Revoking one token must not affect another issued for the same user.
func TestRevokeIsPerToken(t *testing.T) {
	service := newTestService("test-secret", 10*time.Minute)

	first, _, err := service.Issue("alice")
	require.NoError(t, err)
	second, _, err := service.Issue("alice")
	require.NoError(t, err)

	require.NoError(t, service.Revoke(context.Background(), first))

	subject, err := service.Verify(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}
