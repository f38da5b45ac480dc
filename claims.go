package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the decoded contents of a portal access token
type AuthClaims interface {
	Subject() string
	Userid() string
	Name() string
	Role() string
	Issuer() string
	Expires() time.Time
	IssuedAt() time.Time
}

// PortalClaims is the concrete claim set signed into access tokens. The
// custom claim names (userid, name, role) match what the portal frontends
// already decode.
type PortalClaims struct {
	jwt.RegisteredClaims
	UserLoginID string `json:"userid,omitempty"`
	UserName    string `json:"name,omitempty"`
	UserRole    string `json:"role,omitempty"`
}

var _ AuthClaims = (*PortalClaims)(nil)

// Subject returns the subject claim: the owning user's opaque id
func (c *PortalClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Userid returns the login id claim
func (c *PortalClaims) Userid() string {
	return c.UserLoginID
}

// Name returns the display name claim
func (c *PortalClaims) Name() string {
	return c.UserName
}

// Role returns the role claim, empty when the identity carries none
func (c *PortalClaims) Role() string {
	return c.UserRole
}

// Issuer returns the issuer claim
func (c *PortalClaims) Issuer() string {
	return c.RegisteredClaims.Issuer
}

// Expires returns the expiration time
func (c *PortalClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *PortalClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// IdentityFromClaims materializes a request identity from validated claims
func IdentityFromClaims(claims AuthClaims) *ResolvedIdentity {
	if claims == nil {
		return nil
	}
	return &ResolvedIdentity{
		UserID:      claims.Subject(),
		LoginID:     claims.Userid(),
		DisplayName: claims.Name(),
		UserRole:    claims.Role(),
	}
}
