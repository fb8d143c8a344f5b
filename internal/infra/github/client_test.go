package github

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"evault/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		httpClient:   server.Client(),
		cfg:          oauthConfig(),
		oauthBaseURL: server.URL,
		apiBaseURL:   server.URL,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_ExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login/oauth/access_token", r.URL.Path)
		assert.Equal(t, "the-code", r.URL.Query().Get("code"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_abc",
			"token_type":   "bearer",
			"scope":        "repo read:user",
		})
	}))
	defer server.Close()

	token, err := newTestClient(server).ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "gho_abc", token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
}

func TestClient_ExchangeCode_ProviderError(t *testing.T) {
	// GitHub reports exchange failures in a 200 body
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "bad_verification_code",
			"error_description": "The code passed is incorrect or expired.",
		})
	}))
	defer server.Close()

	_, err := newTestClient(server).ExchangeCode(context.Background(), "stale-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_verification_code")
}

func TestClient_FetchProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))

		switch r.URL.Path {
		case "/user":
			json.NewEncoder(w).Encode(map[string]any{
				"id":         1,
				"login":      "octo",
				"name":       "Octo Cat",
				"type":       "User",
				"avatar_url": "https://avatars.test/1",
				"email":      nil,
			})
		case "/user/emails":
			json.NewEncoder(w).Encode([]map[string]any{
				{"email": "secondary@example.com", "primary": false, "verified": true},
				{"email": "octo@example.com", "primary": true, "verified": true},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	token := &entity.GitHubToken{AccessToken: "gho_abc"}
	user, email, err := newTestClient(server).FetchProfile(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "octo", user.Login)
	require.NotNil(t, email)
	assert.Equal(t, "octo@example.com", *email)
}

func TestClient_FetchProfile_EmailWithheld(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "login": "octo"})
		case "/user/emails":
			// scope does not cover emails
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	token := &entity.GitHubToken{AccessToken: "gho_abc"}
	user, email, err := newTestClient(server).FetchProfile(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "octo", user.Login)
	assert.Nil(t, email)
}

func TestClient_FetchUserRepositories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "pushed", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("direction"))

		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 42, "full_name": "octo/secrets", "owner": map[string]any{"id": 1, "login": "octo"}},
		})
	}))
	defer server.Close()

	token := &entity.GitHubToken{AccessToken: "gho_abc"}
	repos, err := newTestClient(server).FetchUserRepositories(context.Background(), token)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "octo/secrets", repos[0].FullName)
	assert.Equal(t, int64(1), repos[0].Owner.ID)
}

func TestClient_FetchRepository_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Not Found"}`)
	}))
	defer server.Close()

	token := &entity.GitHubToken{AccessToken: "gho_abc"}
	_, err := newTestClient(server).FetchRepository(context.Background(), token, "octo", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_AwaitDeviceToken(t *testing.T) {
	var polls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login/oauth/access_token", r.URL.Path)
		polls++
		switch polls {
		case 1:
			json.NewEncoder(w).Encode(map[string]string{"error": "authorization_pending"})
		default:
			json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_dev", "token_type": "bearer"})
		}
	}))
	defer server.Close()

	grant := &DeviceGrant{DeviceCode: "dev-code", ExpiresIn: 60}
	client := newTestClient(server)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// drive the internal loop at test pace instead of provider pace
	token, err := client.awaitDeviceToken(ctx, grant, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "gho_dev", token.AccessToken)
	assert.Equal(t, 2, polls)
}

func TestClient_AwaitDeviceToken_Denied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "access_denied"})
	}))
	defer server.Close()

	grant := &DeviceGrant{DeviceCode: "dev-code", ExpiresIn: 60}
	ctx := context.Background()

	_, err := newTestClient(server).awaitDeviceToken(ctx, grant, 5*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestClient_AwaitDeviceToken_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "authorization_pending"})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	grant := &DeviceGrant{DeviceCode: "dev-code", ExpiresIn: 60}
	_, err := newTestClient(server).awaitDeviceToken(ctx, grant, 5*time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_RequestDeviceCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login/device/code", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "dev-code",
			"user_code":        "ABCD-1234",
			"verification_uri": "https://github.com/login/device",
			"expires_in":       900,
			"interval":         5,
		})
	}))
	defer server.Close()

	grant, err := newTestClient(server).RequestDeviceCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABCD-1234", grant.UserCode)
	assert.Equal(t, 5, grant.Interval)
}
