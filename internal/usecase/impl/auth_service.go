// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"evault/config"
	"evault/internal/domain/entity"
	domainerrors "evault/internal/domain/errors"
	"evault/internal/domain/repository"
	"evault/internal/domain/service"
	"evault/internal/usecase"

	"github.com/pkg/errors"
)

// Entropy sizes in bytes. The bearer token carries 256 bits.
const (
	stateTokenBytes  = 32
	sessionIDBytes   = 16
	accessTokenBytes = 32
	csrfTokenBytes   = 32
)

// authService implements the AuthUsecase interface: the session state machine
// coordinating the OAuth handshake through the cache.
type authService struct {
	store    service.SessionStore
	identity service.IdentityService
	users    repository.UserRepository
	urls     service.AuthURLBuilder
	tokens   service.TokenSource
	cfg      *config.Config
	logger   *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	store service.SessionStore,
	identity service.IdentityService,
	users repository.UserRepository,
	urls service.AuthURLBuilder,
	tokens service.TokenSource,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		store:    store,
		identity: identity,
		users:    users,
		urls:     urls,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start issues a fresh handshake: a CSRF state, an opaque session id and the
// provider login URL, stored together under the session id with a short TTL.
func (srv *authService) Start(ctx context.Context, deviceType entity.DeviceType) (*usecase.StartOutput, error) {
	state, err := srv.tokens.URLSafe(stateTokenBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mint oauth state")
	}

	sessionID, err := srv.tokens.URLSafe(sessionIDBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mint session id")
	}

	loginURL := srv.urls.AuthorizeURL(state, sessionID, deviceType)

	err = srv.store.Put(ctx, service.HandshakeKey(sessionID), loginURL, srv.cfg.Auth.HandshakeTTL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store handshake")
	}

	srv.logger.Debug("handshake started",
		slog.String("session_id", sessionID),
		slog.String("device_type", string(deviceType)))

	return &usecase.StartOutput{
		SessionID: sessionID,
		LoginURL:  loginURL,
		OpenURL:   fmt.Sprintf("%s/auth?%s", srv.cfg.WebURL, url.Values{"session_id": {sessionID}}.Encode()),
	}, nil
}

// LoginURL returns the stored provider login URL for a handshake and renews
// its TTL so a slow manual-open client does not lose the link mid-flight.
func (srv *authService) LoginURL(ctx context.Context, sessionID string) (string, error) {
	key := service.HandshakeKey(sessionID)

	loginURL, err := srv.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, service.ErrKeyExpired) {
			return "", domainerrors.ErrHandshakeExpired
		}

		return "", errors.Wrap(err, "failed to read handshake")
	}

	if err := srv.store.Renew(ctx, key, srv.cfg.Auth.HandshakeTTL); err != nil && !errors.Is(err, service.ErrKeyExpired) {
		return "", errors.Wrap(err, "failed to renew handshake")
	}

	return loginURL, nil
}

// Callback drives states Validating through SessionIssued. The handshake
// record is consumed before the state check so a replayed callback can never
// succeed, even when the first attempt failed after consuming it.
func (srv *authService) Callback(ctx context.Context, sessionID, code, state string, deviceType entity.DeviceType) (*usecase.CallbackOutput, error) {
	loginURL, err := srv.store.GetDelete(ctx, service.HandshakeKey(sessionID))
	if err != nil {
		if errors.Is(err, service.ErrKeyExpired) {
			return nil, domainerrors.ErrHandshakeExpired
		}

		return nil, errors.Wrap(err, "failed to consume handshake")
	}

	expectedState, err := stateFromLoginURL(loginURL)
	if err != nil {
		return nil, errors.Wrap(err, "stored handshake is malformed")
	}
	if expectedState != state {
		srv.logger.Warn("oauth state mismatch", slog.String("session_id", sessionID))

		return nil, domainerrors.ErrInvalidState
	}

	ghToken, err := srv.identity.ExchangeCode(ctx, code)
	if err != nil {
		srv.logger.Error("code exchange failed", slog.Any("error", err))

		return nil, domainerrors.ErrUpstreamAuth.WrapMessage("code exchange failed")
	}

	ghUser, email, err := srv.identity.FetchProfile(ctx, ghToken)
	if err != nil {
		srv.logger.Error("profile fetch failed", slog.Any("error", err))

		return nil, domainerrors.ErrUpstreamAuth.WrapMessage("profile fetch failed")
	}

	session := &entity.UserSession{
		DeviceType: deviceType,
		User:       *ghUser,
		Token:      *ghToken,
	}
	if deviceType == entity.DeviceWeb {
		csrfToken, err := srv.tokens.Hex(csrfTokenBytes)
		if err != nil {
			return nil, errors.Wrap(err, "failed to mint csrf token")
		}
		session.CSRFToken = csrfToken
	}

	accessToken, err := srv.tokens.URLSafe(accessTokenBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mint access token")
	}

	err = srv.store.PutSession(ctx, service.SessionKey(accessToken), session, srv.cfg.Auth.SessionTTL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store session")
	}

	err = srv.users.Upsert(ctx, &entity.User{
		ID:    ghUser.ID,
		Login: ghUser.Login,
		Name:  ghUser.Name,
		Email: email,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert user")
	}

	if deviceType == entity.DeviceCLI {
		err = srv.store.Put(ctx, service.PollKey(sessionID), accessToken, srv.cfg.Auth.PollTTL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fill poll slot")
		}
	}

	srv.logger.Info("session issued",
		slog.Int64("user_id", ghUser.ID),
		slog.String("device_type", string(deviceType)))

	return &usecase.CallbackOutput{
		AccessToken: accessToken,
		CSRFToken:   session.CSRFToken,
		DeviceType:  deviceType,
	}, nil
}

// Poll answers a CLI poll. The slot read is a GetDelete, so two racing polls
// can never both observe the token.
func (srv *authService) Poll(ctx context.Context, sessionID string, attempt int) (*usecase.PollOutput, error) {
	accessToken, err := srv.store.GetDelete(ctx, service.PollKey(sessionID))
	if err == nil {
		return &usecase.PollOutput{Status: usecase.PollOK, AccessToken: accessToken}, nil
	}
	if !errors.Is(err, service.ErrKeyExpired) {
		return nil, errors.Wrap(err, "failed to read poll slot")
	}

	if attempt >= srv.cfg.Auth.PollMaxAttempts {
		return &usecase.PollOutput{Status: usecase.PollAbort}, domainerrors.ErrPollExhausted
	}

	return &usecase.PollOutput{Status: usecase.PollPending, NextAttempt: attempt + 1}, nil
}

// Refresh renews a live session's TTL; a dead token always signals expiry.
func (srv *authService) Refresh(ctx context.Context, accessToken string) error {
	err := srv.store.Renew(ctx, service.SessionKey(accessToken), srv.cfg.Auth.SessionTTL)
	if err != nil {
		if errors.Is(err, service.ErrKeyExpired) {
			return domainerrors.ErrSessionExpired
		}

		return errors.Wrap(err, "failed to renew session")
	}

	return nil
}

// Session resolves a bearer token and extends the session's lifetime, so any
// authenticated request keeps the session alive.
func (srv *authService) Session(ctx context.Context, accessToken string) (*entity.UserSession, error) {
	key := service.SessionKey(accessToken)

	session, err := srv.store.GetSession(ctx, key)
	if err != nil {
		if errors.Is(err, service.ErrKeyExpired) {
			return nil, domainerrors.ErrSessionExpired
		}

		return nil, errors.Wrap(err, "failed to read session")
	}

	if err := srv.store.Renew(ctx, key, srv.cfg.Auth.SessionTTL); err != nil && !errors.Is(err, service.ErrKeyExpired) {
		return nil, errors.Wrap(err, "failed to renew session")
	}

	return session, nil
}

// stateFromLoginURL recovers the CSRF state embedded in the stored authorize
// URL; the handshake record is the single source of truth for it.
func stateFromLoginURL(loginURL string) (string, error) {
	parsed, err := url.Parse(loginURL)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse login url")
	}

	state := parsed.Query().Get("state")
	if state == "" {
		return "", errors.New("login url carries no state")
	}

	return state, nil
}
