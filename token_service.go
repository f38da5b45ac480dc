package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenService builds and verifies access tokens scoped to a single issuer
type TokenService interface {
	Issue(identity Identity) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	expiration time.Duration
	issuer     string
	logger     Logger
	timeFunc   func() time.Time
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, expiration time.Duration, issuer string, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		expiration: expiration,
		issuer:     issuer,
		logger:     logger,
		timeFunc:   time.Now,
	}
}

// WithTimeFunc overrides the clock, mostly for expiry tests
func (ts *TokenServiceImpl) WithTimeFunc(fn func() time.Time) *TokenServiceImpl {
	if fn != nil {
		ts.timeFunc = fn
	}
	return ts
}

// Issue signs a new access token for the given identity. The issuer claim is
// always this service's configured issuer; sibling deployments sharing the
// signing secret mint tokens we will not accept.
func (ts *TokenServiceImpl) Issue(identity Identity) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity must not be nil", goerrors.CategoryInternal)
	}

	now := ts.timeFunc()
	claims := &PortalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiration)),
		},
		UserLoginID: identity.Userid(),
		UserName:    identity.Name(),
		UserRole:    identity.Role(),
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary portal claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *PortalClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Every failure mode (bad signature, garbage input, expired, foreign issuer,
// missing issuer) fails closed; nothing partial ever escapes.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.timeFunc),
		jwt.WithExpirationRequired(),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &PortalClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*PortalClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode or validate claims")
		return nil, ErrTokenMalformed
	}

	// The jwt parser already matched the issuer; keep the exact-equality
	// check explicit so a future parser option change cannot silently widen
	// the trust scope.
	if claims.RegisteredClaims.Issuer == "" || claims.RegisteredClaims.Issuer != ts.issuer {
		ts.logger.Error("TokenService validate rejected token with foreign issuer", "issuer", claims.RegisteredClaims.Issuer)
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
