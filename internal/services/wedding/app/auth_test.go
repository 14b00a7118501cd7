package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
)

func TestAuthLoginAndVerify(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 20, 10, 0, 0, 0, time.UTC)
	core, logs := observer.New(zap.InfoLevel)
	auth, err := NewAuth(AuthConfig{Password: "letmein", Secret: []byte("0123456789abcdef0123456789abcdef")}, nil, zap.New(core), func() time.Time { return now })
	require.NoError(t, err)

	_, err = auth.Login(context.Background(), "wrong")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
	assert.Len(t, logs.FilterMessage("admin login failed").All(), 1)

	token, err := auth.Login(context.Background(), "letmein")
	require.NoError(t, err)

	session, err := auth.Verify(token)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.True(t, session.ExpiresAt.Equal(now.Add(SessionTTL).Truncate(time.Second)))

	now = now.Add(SessionTTL + time.Second)
	_, err = auth.Verify(token)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestAuthRejectsForeignTokens(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	mine, err := NewAuth(AuthConfig{PasswordHash: string(hash), Secret: []byte("secret-one")}, nil, nil, nil)
	require.NoError(t, err)
	theirs, err := NewAuth(AuthConfig{PasswordHash: string(hash), Secret: []byte("secret-two")}, nil, nil, nil)
	require.NoError(t, err)

	token, err := theirs.Issue()
	require.NoError(t, err)
	_, err = mine.Verify(token)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	_, err = mine.Verify("")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
	_, err = mine.Verify("not.a.token")
	assert.Error(t, err)
}

func TestNewAuthValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewAuth(AuthConfig{}, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewAuth(AuthConfig{PasswordHash: "plain-text"}, nil, nil, nil)
	assert.Error(t, err)

	core, logs := observer.New(zap.WarnLevel)
	auth, err := NewAuth(AuthConfig{Password: "pw"}, nil, zap.New(core), nil)
	require.NoError(t, err)
	assert.Equal(t, SessionTTL, auth.TTL())
	assert.Len(t, logs.FilterMessage("session secret not configured, using a random one").All(), 1)
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))

	_, err = HashPassword("")
	assert.Error(t, err)
}
