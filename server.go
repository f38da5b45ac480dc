package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

// ServerDeps carries everything NewServer needs to mount the session
// endpoints.
type ServerDeps struct {
	Config    Config
	Auther    Authenticator
	Validator TokenValidator
	Logger    Logger
}

// HTTPServer is the fiber-backed server with the session endpoints mounted.
// It keeps a handle on the underlying app so in-process tests can drive it
// through fiber's Test helper without binding a port.
type HTTPServer struct {
	router.Server[*fiber.App]
	app *fiber.App
}

// App exposes the underlying fiber application.
func (s *HTTPServer) App() *fiber.App { return s.app }

// NewServer builds a fiber-backed HTTP server with the identity resolver
// mounted ahead of every route and the session endpoints registered. Callers
// add their own routes on srv.Router() and then call srv.Serve.
func NewServer(deps ServerDeps) (*HTTPServer, error) {
	route, err := NewHTTPAuthenticator(deps.Auther, deps.Validator, deps.Config)
	if err != nil {
		return nil, err
	}

	if deps.Logger != nil {
		route.Logger = deps.Logger
	}

	var app *fiber.App
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		app = router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       "portal-auth",
			StrictRouting: false,
		}))
		return app
	})

	srv.Router().Use(route.ResolveRequest())

	opts := []AuthControllerOption{
		WithAuthControllerAuther(deps.Auther),
	}
	if deps.Logger != nil {
		opts = append(opts, WithAuthControllerLogger(deps.Logger))
	}

	RegisterAuthRoutes(srv.Router(), opts...)

	return &HTTPServer{Server: srv, app: app}, nil
}
