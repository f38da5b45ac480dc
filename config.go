package auth

import "time"

// BaseConfig is a plain value implementation of Config, handy for tests and
// small deployments. Anything more elaborate can implement Config directly.
type BaseConfig struct {
	SigningKey             string
	SigningMethod          string
	ContextKey             string
	TokenLookup            string
	AuthScheme             string
	Issuer                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Environment            string
	BypassEnvironments     []string
}

func (c BaseConfig) GetSigningKey() string    { return c.SigningKey }
func (c BaseConfig) GetSigningMethod() string { return c.SigningMethod }

func (c BaseConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c BaseConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:Authorization"
	}
	return c.TokenLookup
}

func (c BaseConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c BaseConfig) GetIssuer() string { return c.Issuer }

func (c BaseConfig) GetAccessTokenExpiration() time.Duration {
	if c.AccessTokenExpiration <= 0 {
		return 30 * time.Minute
	}
	return c.AccessTokenExpiration
}

func (c BaseConfig) GetRefreshTokenExpiration() time.Duration {
	if c.RefreshTokenExpiration <= 0 {
		return 24 * time.Hour
	}
	return c.RefreshTokenExpiration
}

func (c BaseConfig) GetEnvironment() string { return c.Environment }

func (c BaseConfig) GetBypassEnvironments() []string { return c.BypassEnvironments }

var _ Config = BaseConfig{}
