package impl

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"evault/config"
	"evault/internal/domain/entity"
	domainerrors "evault/internal/domain/errors"
	"evault/internal/domain/service"
	"evault/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		WebURL: "https://evault.test",
		Auth: &config.AuthConfig{
			HandshakeTTL:    2 * time.Minute,
			SessionTTL:      5 * time.Minute,
			PollTTL:         30 * time.Second,
			PollMaxAttempts: 10,
		},
	}

	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type authFixture struct {
	store    *fakeStore
	identity *stubIdentity
	users    *fakeUserRepo
	broker   usecase.AuthUsecase
}

func newAuthFixture() *authFixture {
	store := newFakeStore()
	identity := &stubIdentity{
		token: &entity.GitHubToken{AccessToken: "gho_tok", TokenType: "bearer", Scope: "repo read:user"},
		user:  &entity.GitHubUser{ID: 1, Login: "octo", Name: "Octo Cat", Type: "User"},
	}
	users := newFakeUserRepo()
	broker := NewAuthService(store, identity, users, testURLBuilder{}, &seqTokens{}, testConfig(), testLogger())

	return &authFixture{store: store, identity: identity, users: users, broker: broker}
}

func TestAuthService_Start_StoresHandshake(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	for _, deviceType := range []entity.DeviceType{entity.DeviceWeb, entity.DeviceCLI} {
		out, err := fx.broker.Start(ctx, deviceType)
		require.NoError(t, err)
		assert.NotEmpty(t, out.SessionID)
		assert.Contains(t, out.OpenURL, "session_id="+out.SessionID)

		parsed, err := url.Parse(out.LoginURL)
		require.NoError(t, err)
		assert.NotEmpty(t, parsed.Query().Get("state"))

		stored, err := fx.broker.LoginURL(ctx, out.SessionID)
		require.NoError(t, err)
		assert.Equal(t, out.LoginURL, stored)
	}
}

func TestAuthService_LoginURL_Expired(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	out, err := fx.broker.Start(ctx, entity.DeviceWeb)
	require.NoError(t, err)

	fx.store.advance(3 * time.Minute)

	_, err = fx.broker.LoginURL(ctx, out.SessionID)
	assert.ErrorIs(t, err, domainerrors.ErrHandshakeExpired)
}

// The state embedded in the stored login URL round-trips into the callback
// state check.
func TestAuthService_Callback_Web(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	out, err := fx.broker.Start(ctx, entity.DeviceWeb)
	require.NoError(t, err)

	state := stateOf(t, out.LoginURL)

	cb, err := fx.broker.Callback(ctx, out.SessionID, "auth-code", state, entity.DeviceWeb)
	require.NoError(t, err)
	assert.NotEmpty(t, cb.AccessToken)
	assert.NotEmpty(t, cb.CSRFToken)
	assert.Equal(t, "auth-code", fx.identity.exchangedCode)

	session, err := fx.broker.Session(ctx, cb.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, entity.DeviceWeb, session.DeviceType)
	assert.Equal(t, int64(1), session.User.ID)
	assert.Equal(t, cb.CSRFToken, session.CSRFToken)

	// the local user row was upserted
	user, err := fx.users.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "octo", user.Login)
}

func TestAuthService_Callback_SingleUse(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	out, err := fx.broker.Start(ctx, entity.DeviceWeb)
	require.NoError(t, err)
	state := stateOf(t, out.LoginURL)

	_, err = fx.broker.Callback(ctx, out.SessionID, "code", state, entity.DeviceWeb)
	require.NoError(t, err)

	// a second callback with the same session id finds no handshake
	_, err = fx.broker.Callback(ctx, out.SessionID, "code", state, entity.DeviceWeb)
	assert.ErrorIs(t, err, domainerrors.ErrHandshakeExpired)
}

func TestAuthService_Callback_InvalidState(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	out, err := fx.broker.Start(ctx, entity.DeviceWeb)
	require.NoError(t, err)

	_, err = fx.broker.Callback(ctx, out.SessionID, "code", "forged-state", entity.DeviceWeb)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)

	// the state check consumed the handshake; a retry with the right state
	// cannot resurrect it
	state := stateOf(t, out.LoginURL)
	_, err = fx.broker.Callback(ctx, out.SessionID, "code", state, entity.DeviceWeb)
	assert.ErrorIs(t, err, domainerrors.ErrHandshakeExpired)
}

func TestAuthService_Callback_UpstreamFailure(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()
	fx.identity.exchangeErr = errors.New("bad_verification_code")

	out, err := fx.broker.Start(ctx, entity.DeviceCLI)
	require.NoError(t, err)
	state := stateOf(t, out.LoginURL)

	_, err = fx.broker.Callback(ctx, out.SessionID, "code", state, entity.DeviceCLI)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UPSTREAM_AUTH_FAILED", appErr.ErrorCode())

	// no session was created and no poll slot filled
	_, err = fx.broker.Poll(ctx, out.SessionID, 0)
	require.NoError(t, err)
}

func TestAuthService_Callback_CLIFillsPollSlot(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	out, err := fx.broker.Start(ctx, entity.DeviceCLI)
	require.NoError(t, err)
	state := stateOf(t, out.LoginURL)

	cb, err := fx.broker.Callback(ctx, out.SessionID, "code", state, entity.DeviceCLI)
	require.NoError(t, err)
	assert.Empty(t, cb.CSRFToken)

	poll, err := fx.broker.Poll(ctx, out.SessionID, 0)
	require.NoError(t, err)
	assert.Equal(t, usecase.PollOK, poll.Status)
	assert.Equal(t, cb.AccessToken, poll.AccessToken)
}

func TestAuthService_Poll_ExactlyOnce(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	out, err := fx.broker.Start(ctx, entity.DeviceCLI)
	require.NoError(t, err)
	state := stateOf(t, out.LoginURL)
	_, err = fx.broker.Callback(ctx, out.SessionID, "code", state, entity.DeviceCLI)
	require.NoError(t, err)

	const pollers = 8
	results := make([]*usecase.PollOutput, pollers)
	var wg sync.WaitGroup
	for i := range pollers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = fx.broker.Poll(ctx, out.SessionID, 0)
		}()
	}
	wg.Wait()

	okCount := 0
	for _, result := range results {
		require.NotNil(t, result)
		if result.Status == usecase.PollOK {
			okCount++
			assert.NotEmpty(t, result.AccessToken)
		} else {
			assert.Equal(t, usecase.PollPending, result.Status)
		}
	}
	assert.Equal(t, 1, okCount)
}

func TestAuthService_Poll_Exhausted(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	poll, err := fx.broker.Poll(ctx, "unknown-session", 10)
	assert.ErrorIs(t, err, domainerrors.ErrPollExhausted)
	require.NotNil(t, poll)
	assert.Equal(t, usecase.PollAbort, poll.Status)

	// below the cap the answer is pending with an incremented counter
	poll, err = fx.broker.Poll(ctx, "unknown-session", 3)
	require.NoError(t, err)
	assert.Equal(t, usecase.PollPending, poll.Status)
	assert.Equal(t, 4, poll.NextAttempt)
}

func TestAuthService_Refresh(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	out, err := fx.broker.Start(ctx, entity.DeviceWeb)
	require.NoError(t, err)
	state := stateOf(t, out.LoginURL)
	cb, err := fx.broker.Callback(ctx, out.SessionID, "code", state, entity.DeviceWeb)
	require.NoError(t, err)

	require.NoError(t, fx.broker.Refresh(ctx, cb.AccessToken))

	// renew on a dead or unknown token always signals expiry
	assert.ErrorIs(t, fx.broker.Refresh(ctx, "no-such-token"), domainerrors.ErrSessionExpired)

	fx.store.advance(6 * time.Minute)
	assert.ErrorIs(t, fx.broker.Refresh(ctx, cb.AccessToken), domainerrors.ErrSessionExpired)
}

func TestAuthService_Session_Expired(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	_, err := fx.broker.Session(ctx, "no-such-token")
	assert.ErrorIs(t, err, domainerrors.ErrSessionExpired)
}

// End-to-end cli scenario: start, provider callback, poll, then use the
// polled token as the bearer credential.
func TestAuthService_CLIScenario(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	out, err := fx.broker.Start(ctx, entity.DeviceCLI)
	require.NoError(t, err)

	// the CLI fetches the login URL it should tell the user to open
	loginURL, err := fx.broker.LoginURL(ctx, out.SessionID)
	require.NoError(t, err)
	state := stateOf(t, loginURL)

	// first poll races ahead of the browser: pending
	poll, err := fx.broker.Poll(ctx, out.SessionID, 0)
	require.NoError(t, err)
	assert.Equal(t, usecase.PollPending, poll.Status)

	// the browser completes the consent screen
	_, err = fx.broker.Callback(ctx, out.SessionID, "code", state, entity.DeviceCLI)
	require.NoError(t, err)

	poll, err = fx.broker.Poll(ctx, out.SessionID, poll.NextAttempt)
	require.NoError(t, err)
	require.Equal(t, usecase.PollOK, poll.Status)

	session, err := fx.broker.Session(ctx, poll.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), session.User.ID)
	assert.Equal(t, "octo", session.User.Login)
}

func stateOf(t *testing.T, loginURL string) string {
	t.Helper()
	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	return state
}

var _ service.SessionStore = (*fakeStore)(nil)
var _ service.IdentityService = (*stubIdentity)(nil)
