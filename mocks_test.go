package auth_test

import (
	"context"
	"time"

	auth "github.com/boowork/portal-auth"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"
)

// testIdentity implements auth.Identity
type testIdentity struct {
	id     string
	userid string
	name   string
	role   string
}

func (t testIdentity) ID() string     { return t.id }
func (t testIdentity) Userid() string { return t.userid }
func (t testIdentity) Name() string   { return t.name }
func (t testIdentity) Role() string   { return t.role }

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, userid, password string) (auth.Identity, error) {
	args := m.Called(ctx, userid, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByID(ctx context.Context, id string) (auth.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

// MockRefreshTokens mocks the session store. The embedded interface covers
// the generic repository surface; only the session methods are scripted.
type MockRefreshTokens struct {
	mock.Mock
	repository.Repository[*auth.RefreshToken]
}

func (m *MockRefreshTokens) Rotate(ctx context.Context, userID string, ttl time.Duration) (*auth.RefreshToken, error) {
	args := m.Called(ctx, userID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokens) GetByToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokens) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRefreshTokens) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, userid, password string) (*auth.TokenPair, error) {
	args := m.Called(ctx, userid, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TokenPair), args.Error(1)
}

func (m *MockAuthenticator) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TokenPair), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testConfig() auth.BaseConfig {
	return auth.BaseConfig{
		SigningKey:             "test-signing-key-secret",
		SigningMethod:          "HS256",
		Issuer:                 "portal-admin",
		AccessTokenExpiration:  30 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Environment:            "test",
	}
}
