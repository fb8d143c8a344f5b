// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"evault/internal/domain/entity"
)

// --- Output DTOs ---

// StartOutput is the result of starting a login handshake.
type StartOutput struct {
	SessionID string

	// LoginURL is the full provider authorize URL with the CSRF state embedded.
	LoginURL string

	// OpenURL is the web app page a manual-open client should visit; it
	// carries the session id so the page can fetch LoginURL itself.
	OpenURL string
}

// CallbackOutput is the result of a completed OAuth callback.
type CallbackOutput struct {
	// AccessToken is the service's own opaque bearer token.
	AccessToken string

	// CSRFToken is set for web sessions only and must be returned in the
	// response body alongside the session cookie.
	CSRFToken string

	DeviceType entity.DeviceType
}

// PollStatus enumerates the poll endpoint's terminal and non-terminal answers.
type PollStatus string

const (
	PollOK      PollStatus = "ok"
	PollPending PollStatus = "pending"
	PollAbort   PollStatus = "abort"
)

// PollOutput is one answer to a CLI poll.
type PollOutput struct {
	Status      PollStatus
	AccessToken string

	// NextAttempt is the attempt counter the client must carry into its
	// next poll; meaningful only while Status is pending.
	NextAttempt int
}

// AuthUsecase is the auth broker: it coordinates the multi-step OAuth
// handshake across web and cli clients with the cache as the coordination
// medium.
type AuthUsecase interface {
	// Start begins a handshake and stores it under a fresh session id.
	Start(ctx context.Context, deviceType entity.DeviceType) (*StartOutput, error)

	// LoginURL returns the stored provider login URL and renews the
	// handshake TTL.
	LoginURL(ctx context.Context, sessionID string) (string, error)

	// Callback consumes the handshake (single use), validates the CSRF
	// state, exchanges the code and issues a session.
	Callback(ctx context.Context, sessionID, code, state string, deviceType entity.DeviceType) (*CallbackOutput, error)

	// Poll hands the freshly issued token to a polling CLI at most once.
	Poll(ctx context.Context, sessionID string, attempt int) (*PollOutput, error)

	// Refresh renews a live session's TTL.
	Refresh(ctx context.Context, accessToken string) error

	// Session resolves a bearer token into its session, renewing the TTL.
	Session(ctx context.Context, accessToken string) (*entity.UserSession, error)
}
