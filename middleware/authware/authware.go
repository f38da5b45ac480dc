package authware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup  = "header:" + router.HeaderAuthorization
	defaultBypassHeader = "DEV_AUTH"

	ErrTokenMissingOrMalformed = errors.New("missing or malformed access token")
	ErrUnauthenticated         = errors.New("request carries no authenticated identity")
)

// defaultBypassEnvironments are the deployment environments where the dev
// bypass header is honored. Anything else ignores the header entirely.
var defaultBypassEnvironments = []string{"default", "local", "dev", "test"}

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenService.Validate method from the auth package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims interface for structured claims without import cycles.
// This mirrors the AuthClaims interface from the auth package.
type AuthClaims interface {
	Subject() string
	Userid() string
	Name() string
	Role() string
	Issuer() string
	Expires() time.Time
	IssuedAt() time.Time
}

// Identity is the resolved caller of a request. Mirrors the auth package
// Identity so this package stays import-cycle free.
type Identity interface {
	ID() string
	Userid() string
	Name() string
	Role() string
}

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	// ErrorHandler answers requests rejected by Protected. The resolver
	// itself never rejects.
	ErrorHandler router.ErrorHandler
	SigningKey   SigningKey
	SigningKeys  map[string]SigningKey
	ContextKey   string
	TokenLookup  string
	AuthScheme   string
	KeyFunc      jwt.Keyfunc
	JWKSetURLs   []string

	// TokenValidator validates bearer tokens. When nil, a validator is
	// built from SigningKey, SigningKeys, or JWKSetURLs.
	TokenValidator TokenValidator

	// Environment is the deployment environment this process runs as.
	Environment string
	// BypassEnvironments lists the environments where BypassHeader is
	// honored. Defaults to the local development set.
	BypassEnvironments []string
	// BypassHeader names the trusted header carrying a synthetic identity
	// formatted as id:userid:name. Defaults to DEV_AUTH.
	BypassHeader string

	// ContextEnricher propagates validated claims to the standard Go
	// context after token validation succeeds.
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context

	// IdentityEnricher propagates the resolved identity to the standard Go
	// context. Called for both token and bypass identities.
	IdentityEnricher func(c context.Context, identity Identity) context.Context

	// IdentityReader reports the identity already present in the standard
	// context, if any. When it returns non-nil the resolver leaves the
	// request untouched.
	IdentityReader func(c context.Context) Identity
}

type SigningKey struct {
	JWTAlg string
	Key    any
}

// New returns the identity resolver. It attaches at most one identity to the
// request and always hands off to the next handler: an unauthenticated
// request proceeds anonymously, and rejection is left to Protected or to the
// endpoints themselves.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			if cfg.IdentityReader != nil {
				if existing := cfg.IdentityReader(ctx.Context()); existing != nil {
					return cfg.SuccessHandler(ctx)
				}
			}

			if identity, ok := cfg.bypassIdentity(ctx); ok {
				ctx.Locals(cfg.ContextKey, identity)
				cfg.enrichIdentity(ctx, identity)
				return cfg.SuccessHandler(ctx)
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil || raw == "" {
				return cfg.SuccessHandler(ctx)
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				// a bad token resolves to anonymous, same as no token
				return cfg.SuccessHandler(ctx)
			}

			ctx.Locals(cfg.ContextKey, claims)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), claims))
			}

			cfg.enrichIdentity(ctx, claimsIdentity{claims})

			return cfg.SuccessHandler(ctx)
		}
	}
}

// Protected returns a guard that rejects requests the resolver left
// anonymous. Mount it after New on routes that require a caller.
func Protected(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			if cfg.IdentityReader != nil {
				if identity := cfg.IdentityReader(ctx.Context()); identity != nil {
					return ctx.Next()
				}
			}

			if ctx.Locals(cfg.ContextKey) != nil {
				return ctx.Next()
			}

			return cfg.ErrorHandler(ctx, ErrUnauthenticated)
		}
	}
}

// bypassIdentity resolves the trusted dev header into an identity. The header
// only counts in allow-listed environments, needs exactly three non-empty
// segments, and anything malformed is skipped so resolution falls through to
// the bearer token.
func (cfg *Config) bypassIdentity(ctx router.Context) (Identity, bool) {
	if !cfg.bypassEnabled() {
		return nil, false
	}

	header := ctx.GetString(cfg.BypassHeader, "")
	if header == "" {
		return nil, false
	}

	parts := strings.Split(header, ":")
	if len(parts) != 3 {
		return nil, false
	}

	for i, el := range parts {
		parts[i] = strings.TrimSpace(el)
		if parts[i] == "" {
			return nil, false
		}
	}

	return DevIdentity{
		UserID:      parts[0],
		LoginID:     parts[1],
		DisplayName: parts[2],
	}, true
}

func (cfg *Config) bypassEnabled() bool {
	for _, env := range cfg.BypassEnvironments {
		if strings.EqualFold(env, cfg.Environment) {
			return true
		}
	}
	return false
}

func (cfg *Config) enrichIdentity(ctx router.Context, identity Identity) {
	if cfg.IdentityEnricher == nil {
		return
	}
	ctx.SetContext(cfg.IdentityEnricher(ctx.Context(), identity))
}

// DevIdentity is a synthetic identity minted from the bypass header. It
// carries no role.
type DevIdentity struct {
	UserID      string
	LoginID     string
	DisplayName string
}

func (d DevIdentity) ID() string     { return d.UserID }
func (d DevIdentity) Userid() string { return d.LoginID }
func (d DevIdentity) Name() string   { return d.DisplayName }
func (d DevIdentity) Role() string   { return "" }

var _ Identity = DevIdentity{}

// claimsIdentity adapts validated claims to the Identity shape
type claimsIdentity struct {
	claims AuthClaims
}

func (c claimsIdentity) ID() string     { return c.claims.Subject() }
func (c claimsIdentity) Userid() string { return c.claims.Userid() }
func (c claimsIdentity) Name() string   { return c.claims.Name() }
func (c claimsIdentity) Role() string   { return c.claims.Role() }

// keyfuncValidator is the fallback validator minted from SigningKey,
// SigningKeys, or JWKSetURLs when the config carries no TokenValidator.
type keyfuncValidator struct {
	keyFn jwt.Keyfunc
}

var _ TokenValidator = keyfuncValidator{}

func (v keyfuncValidator) Validate(tokenString string) (AuthClaims, error) {
	claims := &keyfuncClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFn, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrTokenMissingOrMalformed
	}
	return claims, nil
}

// keyfuncClaims is the claim set decoded on the key-based path. The custom
// claim names match what the token service signs.
type keyfuncClaims struct {
	jwt.RegisteredClaims
	UserLoginID string `json:"userid,omitempty"`
	UserName    string `json:"name,omitempty"`
	UserRole    string `json:"role,omitempty"`
}

var _ AuthClaims = (*keyfuncClaims)(nil)

func (c *keyfuncClaims) Subject() string { return c.RegisteredClaims.Subject }
func (c *keyfuncClaims) Userid() string  { return c.UserLoginID }
func (c *keyfuncClaims) Name() string    { return c.UserName }
func (c *keyfuncClaims) Role() string    { return c.UserRole }
func (c *keyfuncClaims) Issuer() string  { return c.RegisteredClaims.Issuer }

func (c *keyfuncClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

func (c *keyfuncClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return c.Status(router.StatusUnauthorized).SendString("Unauthenticated")
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.BypassHeader == "" {
		cfg.BypassHeader = defaultBypassHeader
	}

	if cfg.BypassEnvironments == nil {
		cfg.BypassEnvironments = defaultBypassEnvironments
	}

	if cfg.KeyFunc == nil {
		if len(cfg.SigningKeys) > 0 || len(cfg.JWKSetURLs) > 0 {
			var givenKeys map[string]keyfunc.GivenKey
			if cfg.SigningKeys != nil {
				givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
				for kid, key := range cfg.SigningKeys {
					givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
						Algorithm: key.JWTAlg,
					})
				}
			}
			if len(cfg.JWKSetURLs) > 0 {
				var err error
				cfg.KeyFunc, err = multiKeyfunc(givenKeys, cfg.JWKSetURLs)
				if err != nil {
					panic("Failed to create keyfunc from JWK Set URL: " + err.Error())
				}
			} else {
				cfg.KeyFunc = keyfunc.NewGiven(givenKeys).Keyfunc
			}
		} else if cfg.SigningKey.Key != nil {
			cfg.KeyFunc = signingKeyFunc(cfg.SigningKey)
		}
	}

	if cfg.TokenValidator == nil {
		if cfg.KeyFunc == nil {
			panic("AUTH: middleware configuration: TokenValidator or signing keys are required.")
		}
		cfg.TokenValidator = keyfuncValidator{keyFn: cfg.KeyFunc}
	}

	return cfg
}

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, jwtSetUrls []string) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys)
	m := make(map[string]keyfunc.Options, len(jwtSetUrls))
	for _, url := range jwtSetUrls {
		m[url] = opts
	}
	mopts := keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	}
	multi, err := keyfunc.GetMultiple(m, mopts)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWT URLs: %w", err)
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey) keyfunc.Options {
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWT set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		//header:Authorization
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

type TokenExtractor func(c router.Context) (string, error)

// tokenFromHeader returns a function that extracts token from the request header.
func tokenFromHeader(header string, authScheme string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		l := len(authScheme)
		if l == 0 {
			fmt.Println("[WARNING] Missing auth scheme in config definition")
			return "", ErrTokenMissingOrMalformed
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenMissingOrMalformed
	}
}

// tokenFromQuery returns a function that extracts token from the query string.
func tokenFromQuery(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromParam returns a function that extracts token from the url param string.
func tokenFromParam(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts token from the named cookie.
func tokenFromCookie(name string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

func signingKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, ok := token.Header["alg"].(string)
			if !ok {
				return nil, fmt.Errorf("unexpected JWT signing method: expected %q got: missing json type", key.JWTAlg)
			}
			if alg != key.JWTAlg {
				return nil, fmt.Errorf("unexpected jwt signing method: expected: %q: got: %q", key.JWTAlg, alg)
			}
		}
		return key.Key, nil
	}
}
