package auth_test

import (
	"testing"

	auth "github.com/boowork/portal-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-password")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-password", hash)

	// same input hashes to a different string every time
	hash2, err := auth.HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := auth.HashPassword("")
	assert.ErrorIs(t, err, auth.ErrNoEmptyString)
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-password")
	require.NoError(t, err)

	assert.NoError(t, auth.ComparePasswordAndHash("s3cret-password", hash))
	assert.ErrorIs(t, auth.ComparePasswordAndHash("wrong", hash), auth.ErrMismatchedHashAndPassword)
}

func TestComparePasswordAndHashInvalidHash(t *testing.T) {
	err := auth.ComparePasswordAndHash("whatever", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
}
