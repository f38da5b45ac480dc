package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the session endpoints on the given router
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth-login.post")

	app.
		Post(controller.Routes.Logout, controller.LogoutPost).
		SetName("auth-logout.post")

	app.
		Post(controller.Routes.Refresh, controller.RefreshPost).
		SetName("auth-refresh.post")
}

type AuthControllerRoutes struct {
	Login   string
	Logout  string
	Refresh string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Routes *AuthControllerRoutes
	Auther Authenticator
}

type AuthControllerOption func(*AuthController) *AuthController

func WithAuthControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAuthControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithAuthControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:   "/auth/login",
			Logout:  "/auth/logout",
			Refresh: "/auth/refresh",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

// LoginRequest payload
type LoginRequest struct {
	Userid   string `form:"userid" json:"userid"`
	Password string `form:"password" json:"password"`
}

// GetUserid returns the login id
func (r LoginRequest) GetUserid() string {
	return r.Userid
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Userid, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, ErrorResponse("request", "failed to parse request body", "MALFORMED_BODY"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, ResponseFromError(err))
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	pair, err := a.Auther.Login(ctx.Context(), payload.GetUserid(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("login failed", "userid", payload.GetUserid())
		return ctx.JSON(router.StatusUnauthorized, ResponseFromError(err))
	}

	return ctx.JSON(router.StatusOK, SuccessResponse(pair))
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `form:"refreshToken" json:"refreshToken"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

func (a *AuthController) RefreshPost(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("refresh parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, ErrorResponse("request", "failed to parse request body", "MALFORMED_BODY"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("refresh validate payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, ResponseFromError(err))
	}

	pair, err := a.Auther.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		if !goerrors.Is(err, ErrInvalidRefreshToken) {
			a.Logger.Error("refresh failed", "error", err)
		}
		return ctx.JSON(router.StatusUnauthorized, ResponseFromError(ErrInvalidRefreshToken))
	}

	return ctx.JSON(router.StatusOK, SuccessResponse(pair))
}

// LogoutPost ends the current session. It answers with a success envelope no
// matter what; a client without a live session has nothing left to do either
// way.
func (a *AuthController) LogoutPost(ctx router.Context) error {
	_, authenticated := IdentityFromContext(ctx.Context())

	if err := a.Auther.Logout(ctx.Context()); err != nil {
		a.Logger.Error("logout error", "error", err)
	}

	message := "Already logged out"
	if authenticated {
		message = "Logged out successfully"
	}

	return ctx.JSON(router.StatusOK, SuccessResponse(map[string]string{
		"message": message,
	}))
}
