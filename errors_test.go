package auth_test

import (
	"errors"
	"testing"

	auth "github.com/boowork/portal-auth"
	"github.com/stretchr/testify/assert"
)

func TestIsTokenExpiredError(t *testing.T) {
	assert.True(t, auth.IsTokenExpiredError(auth.ErrTokenExpired))
	assert.True(t, auth.IsTokenExpiredError(errors.New("token is expired by 3s")))
	assert.False(t, auth.IsTokenExpiredError(auth.ErrTokenMalformed))
	assert.False(t, auth.IsTokenExpiredError(nil))
}

func TestIsMalformedError(t *testing.T) {
	assert.True(t, auth.IsMalformedError(auth.ErrTokenMalformed))
	assert.True(t, auth.IsMalformedError(errors.New("token is malformed")))
	assert.False(t, auth.IsMalformedError(auth.ErrTokenExpired))
	assert.False(t, auth.IsMalformedError(nil))
}

func TestErrorTextCodes(t *testing.T) {
	assert.Equal(t, auth.TextCodeInvalidCredentials, auth.ErrInvalidCredentials.TextCode)
	assert.Equal(t, auth.TextCodeInvalidToken, auth.ErrInvalidRefreshToken.TextCode)
	assert.Equal(t, auth.TextCodeUnauthenticated, auth.ErrUnauthenticated.TextCode)

	// the field each error reports against
	assert.Equal(t, "password", auth.ErrInvalidCredentials.Metadata["field"])
	assert.Equal(t, "refreshToken", auth.ErrInvalidRefreshToken.Metadata["field"])
}
