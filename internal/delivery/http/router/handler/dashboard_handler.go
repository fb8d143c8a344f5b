package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"evault/internal/delivery/http/middleware"
	"evault/internal/delivery/http/response"
	domainerrors "evault/internal/domain/errors"
	"evault/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// repoListCacheControl matches the dashboard's 2 minute repository cache.
const repoListCacheControl = "max-age=120"

// DashboardHandler holds dependencies for the dashboard endpoints. All of
// them run behind the auth middleware.
type DashboardHandler struct {
	uc     usecase.DashboardUsecase
	logger *slog.Logger
}

// NewDashboardHandler is the constructor for DashboardHandler, injected by Fx.
func NewDashboardHandler(uc usecase.DashboardUsecase, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, logger: logger}
}

// ListRepositories returns the caller's repositories live from GitHub.
func (h *DashboardHandler) ListRepositories(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	if session == nil {
		return domainerrors.ErrNotAuthenticated
	}

	repos, err := h.uc.ListRepositories(c.Request().Context(), session)
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set("Cache-Control", repoListCacheControl)

	return response.Success(c, http.StatusOK, repos, "")
}

// GetVault returns a registered repository record.
func (h *DashboardHandler) GetVault(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	if session == nil {
		return domainerrors.ErrNotAuthenticated
	}

	repoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "INVALID_REPO_ID", "Repository id must be numeric")
	}

	vault, err := h.uc.GetVault(c.Request().Context(), session, repoID, c.QueryParam("repo"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, vault, "")
}

// CreateVault registers a repository the caller owns.
func (h *DashboardHandler) CreateVault(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	if session == nil {
		return domainerrors.ErrNotAuthenticated
	}

	input := new(usecase.CreateVaultInput)
	// parameters ride the query string, also on POST
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "repo_id, password and repo_fullname are required")
	}

	if err := h.uc.CreateVault(c.Request().Context(), session, input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, nil, "Repository registered")
}
