package auth

import (
	"github.com/boowork/portal-auth/middleware/authware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteAuthenticator wires the request resolver and guards into a router
type RouteAuthenticator struct {
	auth         Authenticator
	cfg          Config
	validator    TokenValidator
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, validator TokenValidator, cfg Config) (*RouteAuthenticator, error) {
	if validator == nil {
		return nil, errors.New("http authenticator requires a token validator", errors.CategoryBadInput)
	}

	a := &RouteAuthenticator{
		cfg:       cfg,
		auth:      auther,
		validator: validator,
		Logger:    defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

// ResolveRequest returns the identity resolver middleware. Mount it once,
// ahead of every route; it never rejects a request.
func (a *RouteAuthenticator) ResolveRequest() router.MiddlewareFunc {
	return authware.New(a.middlewareConfig(nil))
}

// ProtectedRoute returns a guard for routes that require an authenticated
// caller. Requests resolved to anonymous get the error handler.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return authware.Protected(a.middlewareConfig(errorHandler))
}

func (a *RouteAuthenticator) middlewareConfig(errorHandler func(router.Context, error) error) authware.Config {
	if errorHandler == nil {
		errorHandler = a.ErrorHandler
	}

	return authware.Config{
		ErrorHandler: errorHandler,
		SigningKey: authware.SigningKey{
			Key:    []byte(a.cfg.GetSigningKey()),
			JWTAlg: a.cfg.GetSigningMethod(),
		},
		AuthScheme:         a.cfg.GetAuthScheme(),
		ContextKey:         a.cfg.GetContextKey(),
		TokenLookup:        a.cfg.GetTokenLookup(),
		Environment:        a.cfg.GetEnvironment(),
		BypassEnvironments: a.cfg.GetBypassEnvironments(),
		TokenValidator:     validatorAdapter{a.validator},
		ContextEnricher:    ClaimsContextEnricher,
		IdentityEnricher:   IdentityContextEnricher,
		IdentityReader:     IdentityContextReader,
	}
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = ErrUnauthenticated
	}

	a.Logger.Info(
		"Rejected unauthenticated request",
		"error", richErr.Message,
		"path", c.OriginalURL(),
	)

	return c.JSON(router.StatusUnauthorized, ResponseFromError(richErr))
}
