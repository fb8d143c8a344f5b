// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"evault/config"
	"evault/internal/delivery/http/middleware"
	"evault/internal/delivery/http/response"
	"evault/internal/domain/entity"
	domainerrors "evault/internal/domain/errors"
	"evault/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CSRFTokenCookie is readable by the dashboard script so it can echo the
// token back in the X-CSRF-Token header. The access token cookie stays
// HTTP-only.
const CSRFTokenCookie = "evault_csrf_token"

// AuthHandler holds dependencies for the auth broker endpoints.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	cfg    *config.Config
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, cfg: cfg, logger: logger}
}

// Start begins a login. A browser is redirected straight to the provider
// consent screen; a CLI gets the link it should tell the user to open.
func (h *AuthHandler) Start(c echo.Context) error {
	deviceType, err := deviceTypeOrWeb(c.QueryParam("device_type"))
	if err != nil {
		return response.BadRequest(c, "INVALID_DEVICE_TYPE", "Unknown device type")
	}

	out, err := h.uc.Start(c.Request().Context(), deviceType)
	if err != nil {
		return errors.WithStack(err)
	}

	if deviceType == entity.DeviceWeb {
		return c.Redirect(http.StatusFound, out.LoginURL)
	}

	return c.String(http.StatusOK, out.OpenURL)
}

// LoginURL hands the stored provider URL to the page opened from a CLI link.
func (h *AuthHandler) LoginURL(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return response.BadRequest(c, "MISSING_SESSION_ID", "session_id is required")
	}

	loginURL, err := h.uc.LoginURL(c.Request().Context(), sessionID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.String(http.StatusOK, loginURL)
}

// Callback is the provider redirect target. On success a browser session
// gets its cookies and lands back on the dashboard; a CLI session parks the
// token in the poll slot and the browser tab can be closed.
func (h *AuthHandler) Callback(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if sessionID == "" || code == "" || state == "" {
		return response.BadRequest(c, "MISSING_CALLBACK_PARAMS", "session_id, code and state are required")
	}

	deviceType, err := deviceTypeOrWeb(c.QueryParam("device_type"))
	if err != nil {
		return response.BadRequest(c, "INVALID_DEVICE_TYPE", "Unknown device type")
	}

	out, err := h.uc.Callback(c.Request().Context(), sessionID, code, state, deviceType)
	if err != nil {
		return errors.WithStack(err)
	}

	if deviceType == entity.DeviceWeb {
		h.setAccessCookie(c, out.AccessToken)
		c.SetCookie(&http.Cookie{
			Name:     CSRFTokenCookie,
			Value:    out.CSRFToken,
			Path:     "/",
			MaxAge:   int(h.cfg.Auth.SessionTTL.Seconds()),
			SameSite: http.SameSiteLaxMode,
		})

		return c.Redirect(http.StatusFound, h.cfg.WebURL+"/dashboard")
	}

	return c.String(http.StatusOK, "Authentication complete. You may close this window.")
}

// Poll answers a CLI waiting for its token. The attempt counter rides a
// cookie so the cap survives across requests without server state.
func (h *AuthHandler) Poll(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return response.BadRequest(c, "MISSING_SESSION_ID", "session_id is required")
	}

	attempt := 0
	if cookie, err := c.Cookie(middleware.PollAttemptCookie); err == nil {
		if parsed, err := strconv.Atoi(cookie.Value); err == nil {
			attempt = parsed
		}
	}

	out, err := h.uc.Poll(c.Request().Context(), sessionID, attempt)
	if err != nil {
		if errors.Is(err, domainerrors.ErrPollExhausted) {
			h.expireCookie(c, middleware.PollAttemptCookie)

			return response.ErrorWithData(c, http.StatusForbidden,
				domainerrors.ErrPollExhausted.ErrorCode(), "Max attempt exceeded",
				map[string]string{"status": "abort"})
		}

		return errors.WithStack(err)
	}

	switch out.Status {
	case usecase.PollOK:
		h.setAccessCookie(c, out.AccessToken)
		h.expireCookie(c, middleware.PollAttemptCookie)

		// The body carries the token too, for pollers that ignore cookies.
		return response.Success(c, http.StatusOK, map[string]string{
			"status":       "ok",
			"access_token": out.AccessToken,
		}, "Token issued")
	default:
		c.SetCookie(&http.Cookie{
			Name:     middleware.PollAttemptCookie,
			Value:    strconv.Itoa(out.NextAttempt),
			Path:     "/",
			MaxAge:   int(h.cfg.Auth.HandshakeTTL.Seconds()),
			HttpOnly: true,
		})

		return response.Success(c, http.StatusOK, map[string]string{"status": "pending"}, "Authorization pending")
	}
}

// Refresh renews the caller's session and echoes the cookie back with a
// fresh expiry. CLI callers pass their token as a query parameter; browsers
// rely on the cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := middleware.ExtractAccessToken(c)
	if token == "" {
		token = c.QueryParam("access_token")
	}
	if token == "" {
		return domainerrors.ErrNotAuthenticated
	}

	if err := h.uc.Refresh(c.Request().Context(), token); err != nil {
		return errors.WithStack(err)
	}

	h.setAccessCookie(c, token)

	return response.Success(c, http.StatusOK, nil, "Session refreshed")
}

func (h *AuthHandler) setAccessCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.Auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) expireCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// deviceTypeOrWeb parses the device_type parameter, treating an absent one
// as a browser login.
func deviceTypeOrWeb(raw string) (entity.DeviceType, error) {
	if raw == "" {
		return entity.DeviceWeb, nil
	}

	return entity.ParseDeviceType(raw)
}
