package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/rhedu/adstudio-server/internal/errors"
	"github.com/rhedu/adstudio-server/internal/logger"
)

// authCookieMaxAge is how long a password gate login lasts.
const authCookieMaxAge = 24 * time.Hour

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        pathLogin,
		Summary:     "Log in",
		Description: "Checks the shared password and sets the password gate cookie",
		Tags:        []string{"Auth"},
	}, s.handleLogin)
}

// LoginRequest is the password gate login body.
type LoginRequest struct {
	Password string `json:"password" doc:"Shared access password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// LoginResponse acknowledges a successful login.
type LoginResponse struct {
	Success bool `json:"success"`
}

// LoginOutput sets the gate cookie.
type LoginOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      LoginResponse
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	if !passwordMatches(input.Body.Password, s.opts.Gate.Password) {
		logger.FromContext(ctx).Warn("Password gate login rejected")
		return nil, fromDomain(domainerrors.Unauthorized("Invalid password"))
	}

	return &LoginOutput{
		SetCookie: http.Cookie{
			Name:     authCookieName,
			Value:    input.Body.Password,
			Path:     "/",
			MaxAge:   int(authCookieMaxAge.Seconds()),
			HttpOnly: true,
			Secure:   s.opts.Production,
			SameSite: http.SameSiteLaxMode,
		},
		Body: LoginResponse{Success: true},
	}, nil
}
