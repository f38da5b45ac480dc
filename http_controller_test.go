package auth_test

import (
	"context"
	"testing"

	auth "github.com/boowork/portal-auth"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func loginController(auther auth.Authenticator) *auth.AuthController {
	return auth.NewAuthController(
		auth.WithAuthControllerAuther(auther),
	)
}

func TestLoginPostSuccess(t *testing.T) {
	auther := new(MockAuthenticator)
	auther.On("Login", mock.Anything, "admin", "admin").
		Return(&auth.TokenPair{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Userid:       "admin",
			Name:         "Administrator",
			Role:         "admin",
		}, nil)

	controller := loginController(auther)

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.LoginRequest)
		payload.Userid = "admin"
		payload.Password = "admin"
	}).Return(nil)
	ctx.On("JSON", router.StatusOK, mock.MatchedBy(func(v any) bool {
		res, ok := v.(auth.Response)
		if !ok || !res.Success {
			return false
		}
		pair, ok := res.Data.(*auth.TokenPair)
		return ok && pair.AccessToken == "access" && pair.RefreshToken == "refresh"
	})).Return(nil)

	require.NoError(t, controller.LoginPost(ctx))
	auther.AssertExpectations(t)
}

func TestLoginPostInvalidCredentials(t *testing.T) {
	auther := new(MockAuthenticator)
	auther.On("Login", mock.Anything, "admin", "wrong").
		Return(nil, auth.ErrInvalidCredentials)

	controller := loginController(auther)

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.LoginRequest)
		payload.Userid = "admin"
		payload.Password = "wrong"
	}).Return(nil)
	ctx.On("JSON", router.StatusUnauthorized, mock.MatchedBy(func(v any) bool {
		res, ok := v.(auth.Response)
		return ok && !res.Success &&
			len(res.Errors) == 1 &&
			res.Errors[0].Field == "password" &&
			res.Errors[0].Code == auth.TextCodeInvalidCredentials
	})).Return(nil)

	require.NoError(t, controller.LoginPost(ctx))
}

func TestLoginPostValidation(t *testing.T) {
	auther := new(MockAuthenticator)
	controller := loginController(auther)

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Return(nil)
	ctx.On("JSON", router.StatusBadRequest, mock.MatchedBy(func(v any) bool {
		res, ok := v.(auth.Response)
		return ok && !res.Success && len(res.Errors) == 2
	})).Return(nil)

	require.NoError(t, controller.LoginPost(ctx))
	auther.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshPostSuccess(t *testing.T) {
	auther := new(MockAuthenticator)
	auther.On("Refresh", mock.Anything, "current-token").
		Return(&auth.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil)

	controller := loginController(auther)

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.RefreshRequest)
		payload.RefreshToken = "current-token"
	}).Return(nil)
	ctx.On("JSON", router.StatusOK, mock.MatchedBy(func(v any) bool {
		res, ok := v.(auth.Response)
		if !ok || !res.Success {
			return false
		}
		pair, ok := res.Data.(*auth.TokenPair)
		return ok && pair.RefreshToken == "r2"
	})).Return(nil)

	require.NoError(t, controller.RefreshPost(ctx))
}

func TestRefreshPostInvalidToken(t *testing.T) {
	auther := new(MockAuthenticator)
	auther.On("Refresh", mock.Anything, "bad-token").
		Return(nil, auth.ErrInvalidRefreshToken)

	controller := loginController(auther)

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.RefreshRequest)
		payload.RefreshToken = "bad-token"
	}).Return(nil)
	ctx.On("JSON", router.StatusUnauthorized, mock.MatchedBy(func(v any) bool {
		res, ok := v.(auth.Response)
		return ok && !res.Success &&
			len(res.Errors) == 1 &&
			res.Errors[0].Field == "refreshToken" &&
			res.Errors[0].Code == auth.TextCodeInvalidToken
	})).Return(nil)

	require.NoError(t, controller.RefreshPost(ctx))
}

func TestLogoutPost(t *testing.T) {
	t.Run("with identity", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("Logout", mock.Anything).Return(nil)

		controller := loginController(auther)

		reqCtx := auth.WithIdentity(context.Background(), &auth.ResolvedIdentity{UserID: "u-1"})

		ctx := router.NewMockContext()
		ctx.On("Context").Return(reqCtx)
		ctx.On("JSON", router.StatusOK, mock.MatchedBy(func(v any) bool {
			res, ok := v.(auth.Response)
			if !ok || !res.Success {
				return false
			}
			data, ok := res.Data.(map[string]string)
			return ok && data["message"] == "Logged out successfully"
		})).Return(nil)

		require.NoError(t, controller.LogoutPost(ctx))
		auther.AssertExpectations(t)
	})

	t.Run("without identity", func(t *testing.T) {
		auther := new(MockAuthenticator)
		auther.On("Logout", mock.Anything).Return(nil)

		controller := loginController(auther)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		ctx.On("JSON", router.StatusOK, mock.MatchedBy(func(v any) bool {
			res, ok := v.(auth.Response)
			if !ok || !res.Success {
				return false
			}
			data, ok := res.Data.(map[string]string)
			return ok && data["message"] == "Already logged out"
		})).Return(nil)

		require.NoError(t, controller.LogoutPost(ctx))
	})
}

func TestLoginRequestValidate(t *testing.T) {
	assert.Error(t, auth.LoginRequest{}.Validate())
	assert.Error(t, auth.LoginRequest{Userid: "admin"}.Validate())
	assert.Error(t, auth.LoginRequest{Password: "secret"}.Validate())
	assert.NoError(t, auth.LoginRequest{Userid: "admin", Password: "secret"}.Validate())
}

func TestRefreshRequestValidate(t *testing.T) {
	assert.Error(t, auth.RefreshRequest{}.Validate())
	assert.NoError(t, auth.RefreshRequest{RefreshToken: "tok"}.Validate())
}
