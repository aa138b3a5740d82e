// Package handlers implements the HTTP API handlers.
package handlers

import (
	"context"

	"github.com/maruel/colldb/internal/auth"
	"github.com/maruel/colldb/internal/errors"
	"github.com/maruel/colldb/internal/models"
	"github.com/maruel/colldb/internal/storage"
)

// AuthHandler handles registration, login and identity requests.
type AuthHandler struct {
	userService   *storage.UserService
	authenticator *auth.Authenticator
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(userService *storage.UserService, authenticator *auth.Authenticator) *AuthHandler {
	return &AuthHandler{userService: userService, authenticator: authenticator}
}

// RegisterRequest is a request to register a new user.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is a request to log in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Register creates a new account and returns a token for it.
func (h *AuthHandler) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, errors.MissingField("name, email, or password")
	}

	user, err := h.userService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := h.authenticator.IssueToken(user)
	if err != nil {
		return nil, errors.InternalWithError("Failed to generate token", err)
	}
	return &TokenResponse{Token: token}, nil
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errors.MissingField("email or password")
	}

	user, err := h.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := h.authenticator.IssueToken(user)
	if err != nil {
		return nil, errors.InternalWithError("Failed to generate token", err)
	}
	return &TokenResponse{Token: token}, nil
}

// MeRequest is a request to get current user info.
type MeRequest struct{}

// Me returns the authenticated user, without the password hash.
func (h *AuthHandler) Me(ctx context.Context, req MeRequest) (*models.User, error) {
	user, ok := models.UserFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized()
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}
