package handlers

import (
	"context"

	"github.com/maruel/colldb/internal/models"
	"github.com/maruel/colldb/internal/storage"
)

// UserHandler handles user listing requests.
type UserHandler struct {
	userService *storage.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService *storage.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsersRequest is the (empty) request to list all users.
type ListUsersRequest struct{}

// ListUsers returns every user, password hashes stripped.
func (h *UserHandler) ListUsers(ctx context.Context, _ ListUsersRequest) (*[]models.User, error) {
	users, err := h.userService.ListAll()
	if err != nil {
		return nil, err
	}
	return &users, nil
}
