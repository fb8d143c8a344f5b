package handler

import (
	"net/http"

	"evault/internal/delivery/http/middleware"
	"evault/internal/delivery/http/response"
	domainerrors "evault/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// UserHandler serves the authenticated user's profile.
type UserHandler struct{}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile returns the GitHub profile bound to the caller's session.
func (h *UserHandler) Profile(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	if session == nil {
		return domainerrors.ErrNotAuthenticated
	}

	return response.Success(c, http.StatusOK, session.User, "")
}
