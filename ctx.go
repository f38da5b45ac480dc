package auth

import (
	"context"
)

var identityCtxKey = &contextKey{"identity"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// ResolvedIdentity is the per-request outcome of authentication resolution.
// It lives only for the duration of one request and is never persisted.
type ResolvedIdentity struct {
	UserID      string `json:"id,omitempty"`
	LoginID     string `json:"userid,omitempty"`
	DisplayName string `json:"name,omitempty"`
	UserRole    string `json:"role,omitempty"`
}

var _ Identity = (*ResolvedIdentity)(nil)

func (r *ResolvedIdentity) ID() string     { return r.UserID }
func (r *ResolvedIdentity) Userid() string { return r.LoginID }
func (r *ResolvedIdentity) Name() string   { return r.DisplayName }
func (r *ResolvedIdentity) Role() string   { return r.UserRole }

// WithIdentity sets the resolved identity in the given context
func WithIdentity(ctx context.Context, identity *ResolvedIdentity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the resolved identity from the context.
func IdentityFromContext(ctx context.Context) (*ResolvedIdentity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*ResolvedIdentity)
	return raw, ok && raw != nil
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}
