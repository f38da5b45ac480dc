package auth

import (
	"context"
	"reflect"
	"time"

	"github.com/goliatone/go-errors"
)

// Auther implements session lifecycle on top of an IdentityProvider, a
// TokenService for access tokens, and a RefreshTokens store for the single
// active session per user.
type Auther struct {
	provider          IdentityProvider
	refreshTokens     RefreshTokens
	signingKey        []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	logger            Logger
	tokenService      TokenService
	timeFunc          func() time.Time
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, tokens RefreshTokens, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetAccessTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		provider:          provider,
		refreshTokens:     tokens,
		signingKey:        []byte(opts.GetSigningKey()),
		accessExpiration:  opts.GetAccessTokenExpiration(),
		refreshExpiration: opts.GetRefreshTokenExpiration(),
		issuer:            opts.GetIssuer(),
		logger:            defLogger{},
		tokenService:      tokenService,
		timeFunc:          time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.accessExpiration,
		s.issuer,
		logger,
	).WithTimeFunc(s.timeFunc)
	return s
}

// WithTimeFunc overrides the clock used for refresh token expiry checks.
func (s *Auther) WithTimeFunc(fn func() time.Time) *Auther {
	if fn != nil {
		s.timeFunc = fn
		if ts, ok := s.tokenService.(interface {
			WithTimeFunc(func() time.Time) *TokenServiceImpl
		}); ok {
			ts.WithTimeFunc(fn)
		}
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and starts a fresh session for the user.
// Any failure in the credential path collapses into ErrInvalidCredentials so
// the response does not reveal whether the account exists.
func (s *Auther) Login(ctx context.Context, userid, password string) (*TokenPair, error) {
	identity, err := s.provider.VerifyIdentity(ctx, userid, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, ErrInvalidCredentials
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.startSession(ctx, identity)
	if err != nil {
		s.logger.Error("Login session start error", "error", err)
		return nil, ErrInvalidCredentials
	}

	return pair, nil
}

// Refresh exchanges a refresh token for a new token pair. The presented token
// is consumed: a new refresh token replaces it whether or not one existed
// before. Unknown, expired, and orphaned tokens all come back as
// ErrInvalidRefreshToken.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	record, err := s.refreshTokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Error("Refresh token lookup error", "error", err)
		}
		return nil, ErrInvalidRefreshToken
	}

	if record.Expired(s.timeFunc()) {
		s.logger.Debug("Refresh token expired", "user_id", record.UserID)
		return nil, ErrInvalidRefreshToken
	}

	identity, err := s.provider.FindIdentityByID(ctx, record.UserID)
	if err != nil {
		s.logger.Error("Refresh identity lookup error", "error", err)
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.startSession(ctx, identity)
	if err != nil {
		s.logger.Error("Refresh session start error", "error", err)
		return nil, ErrInvalidRefreshToken
	}

	return pair, nil
}

// Logout ends the session for the identity carried in ctx. It succeeds even
// when no identity or stored session exists, so repeated calls are harmless.
func (s *Auther) Logout(ctx context.Context) error {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil
	}

	if err := s.refreshTokens.DeleteByUser(ctx, identity.ID()); err != nil {
		s.logger.Error("Logout delete session error", "error", err, "user_id", identity.ID())
	}

	return nil
}

// startSession issues an access token and rotates the stored refresh token
// in one shot, so the user ends up with exactly one live session.
func (s *Auther) startSession(ctx context.Context, identity Identity) (*TokenPair, error) {
	access, err := s.tokenService.Issue(identity)
	if err != nil {
		return nil, err
	}

	record, err := s.refreshTokens.Rotate(ctx, identity.ID(), s.refreshExpiration)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: record.Token,
		Userid:       identity.Userid(),
		Name:         identity.Name(),
		Role:         identity.Role(),
	}, nil
}

var _ Authenticator = &Auther{}
