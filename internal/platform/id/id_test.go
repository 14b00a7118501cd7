package id

import (
	"encoding/base64"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^[a-z2-7]{26}$`)

func TestNewIDEncodesRandomUUID(t *testing.T) {
	t.Parallel()

	got, err := NewID()
	require.NoError(t, err)
	require.Regexp(t, idPattern, got)

	raw, err := idEncoding.DecodeString(strings.ToUpper(got))
	require.NoError(t, err)
	u, err := uuid.FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), u.Version())
	assert.Equal(t, uuid.RFC4122, u.Variant())
}

func TestNewTokenIsURLSafeAndUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 64 {
		token, err := NewToken()
		require.NoError(t, err)
		require.Len(t, token, 43)
		assert.NotContains(t, token, "=")

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, TokenBytes)

		require.False(t, seen[token], "duplicate token %q", token)
		seen[token] = true
	}
}
