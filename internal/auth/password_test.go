package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("correct horse", hash))
	assert.False(t, VerifyPassword("wrong horse", hash))
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	a, err := HashPassword("same password")
	require.NoError(t, err)
	b, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, VerifyPassword("same password", a))
	assert.True(t, VerifyPassword("same password", b))
}

func TestHashPassword_Format(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	parts := strings.SplitN(hash, ":", 2)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], saltBytes*2)
	assert.Len(t, parts[1], keyLength*2)
	assert.NotContains(t, hash, "pw:")
}

func TestVerifyPassword_FailsClosed(t *testing.T) {
	for _, stored := range []string{
		"",
		"no-separator",
		":missing-salt",
		"missing-key:",
		"abcd:not-hex!!",
	} {
		assert.False(t, VerifyPassword("anything", stored), "stored=%q", stored)
	}
}
