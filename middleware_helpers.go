package auth

import (
	"context"

	"github.com/boowork/portal-auth/middleware/authware"
)

// validatorAdapter narrows a TokenValidator to the middleware's mirror
// interface.
type validatorAdapter struct {
	validator TokenValidator
}

func (v validatorAdapter) Validate(tokenString string) (authware.AuthClaims, error) {
	claims, err := v.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ClaimsContextEnricher stores validated claims on the standard context so
// services downstream of the router can read them.
func ClaimsContextEnricher(ctx context.Context, claims authware.AuthClaims) context.Context {
	if ac, ok := claims.(AuthClaims); ok {
		return WithClaimsContext(ctx, ac)
	}
	return ctx
}

// IdentityContextEnricher stores the resolved identity on the standard
// context.
func IdentityContextEnricher(ctx context.Context, identity authware.Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return WithIdentity(ctx, &ResolvedIdentity{
		UserID:      identity.ID(),
		LoginID:     identity.Userid(),
		DisplayName: identity.Name(),
		UserRole:    identity.Role(),
	})
}

// IdentityContextReader reports the identity already attached to the
// standard context, if any.
func IdentityContextReader(ctx context.Context) authware.Identity {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil
	}
	return identity
}
