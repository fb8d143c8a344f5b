package middleware

import (
	"strings"

	"evault/internal/domain/entity"
	domainerrors "evault/internal/domain/errors"
	"evault/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Cookie names shared between the middleware and the auth handlers.
const (
	AccessTokenCookie = "evault_access_token"
	PollAttemptCookie = "evault_poll_attempt"
)

// Context keys set by Authenticate.
const (
	SessionContextKey     = "session"
	AccessTokenContextKey = "accessToken"
)

// AuthMiddleware resolves the opaque bearer credential into a live session.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authUC usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{authUC: authUC}
}

// Authenticate validates the access token from the session cookie or the
// Authorization header and stores the resolved session on the context.
// Resolving the session also renews its TTL.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := ExtractAccessToken(c)
		if token == "" {
			return domainerrors.ErrNotAuthenticated
		}

		session, err := m.authUC.Session(c.Request().Context(), token)
		if err != nil {
			return errors.WithStack(err)
		}

		c.Set(SessionContextKey, session)
		c.Set(AccessTokenContextKey, token)

		return next(c)
	}
}

// RequireCSRF guards mutating routes for browser sessions: the request must
// echo the session's CSRF token in the X-CSRF-Token header. CLI sessions
// carry no CSRF token and pass through.
func (m *AuthMiddleware) RequireCSRF(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session := SessionFromContext(c)
		if session == nil {
			return domainerrors.ErrNotAuthenticated
		}

		if session.DeviceType == entity.DeviceWeb && c.Request().Header.Get("X-CSRF-Token") != session.CSRFToken {
			return domainerrors.ErrNotAuthenticated
		}

		return next(c)
	}
}

// ExtractAccessToken reads the credential from the session cookie, falling
// back to a bearer Authorization header for CLI callers.
func ExtractAccessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
		return token
	}

	return ""
}

// SessionFromContext returns the session stored by Authenticate, nil when
// the route skipped authentication.
func SessionFromContext(c echo.Context) *entity.UserSession {
	session, _ := c.Get(SessionContextKey).(*entity.UserSession)

	return session
}
