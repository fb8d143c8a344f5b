package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"evault/config"
	"evault/internal/domain/entity"
	"evault/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	acceptJSON       = "application/json"
	acceptGithubJSON = "application/vnd.github+json"
	apiVersion       = "2022-11-28"

	defaultHTTPTimeout = 15 * time.Second
	reposPerPage       = 100
)

// Client talks to the GitHub OAuth and REST APIs.
type Client struct {
	httpClient   *http.Client
	cfg          *config.GithubOAuthConfig
	oauthBaseURL string
	apiBaseURL   string
	logger       *slog.Logger
}

// NewClient is the constructor for Client.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		cfg:          cfg.GithubOAuth,
		oauthBaseURL: defaultOAuthBaseURL,
		apiBaseURL:   defaultAPIBaseURL,
		logger:       logger,
	}
}

var _ service.IdentityService = (*Client)(nil)

// tokenResponse is GitHub's OAuth token payload. Errors arrive with a 200
// status and an error field, not an HTTP error code.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Interval         int    `json:"interval"`
}

// ExchangeCode trades an authorization code for a provider token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*entity.GitHubToken, error) {
	var payload tokenResponse
	err := c.postJSON(ctx, tokenExchangeURL(c.oauthBaseURL, c.cfg, code), &payload)
	if err != nil {
		return nil, err
	}

	if payload.Error != "" {
		return nil, errors.Errorf("token exchange rejected: %s: %s", payload.Error, payload.ErrorDescription)
	}
	if payload.AccessToken == "" {
		return nil, errors.New("token exchange returned no access token")
	}

	return &entity.GitHubToken{
		AccessToken: payload.AccessToken,
		TokenType:   payload.TokenType,
		Scope:       payload.Scope,
	}, nil
}

type profilePayload struct {
	ID        int64   `json:"id"`
	Login     string  `json:"login"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	AvatarURL string  `json:"avatar_url"`
	Email     *string `json:"email"`
}

type emailPayload struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// FetchProfile fetches the authenticated user's profile. When the profile
// hides the email, the dedicated emails endpoint is consulted for the
// primary one; a still-missing email stays nil.
func (c *Client) FetchProfile(ctx context.Context, token *entity.GitHubToken) (*entity.GitHubUser, *string, error) {
	var profile profilePayload
	if err := c.getAPI(ctx, token, "/user", &profile); err != nil {
		return nil, nil, err
	}

	user := &entity.GitHubUser{
		ID:        profile.ID,
		Login:     profile.Login,
		Name:      profile.Name,
		Type:      profile.Type,
		AvatarURL: profile.AvatarURL,
	}

	email := profile.Email
	if email == nil {
		email = c.primaryEmail(ctx, token)
	}

	return user, email, nil
}

// primaryEmail resolves the primary verified address. Failures degrade to a
// nil email rather than failing the login.
func (c *Client) primaryEmail(ctx context.Context, token *entity.GitHubToken) *string {
	var emails []emailPayload
	if err := c.getAPI(ctx, token, "/user/emails", &emails); err != nil {
		c.logger.Debug("email lookup failed", slog.Any("error", err))

		return nil
	}

	for _, candidate := range emails {
		if candidate.Primary && candidate.Verified {
			return &candidate.Email
		}
	}

	return nil
}

// FetchUserRepositories lists the caller's repositories, most recently pushed
// first.
func (c *Client) FetchUserRepositories(ctx context.Context, token *entity.GitHubToken) ([]*service.RemoteRepository, error) {
	path := "/user/repos?" + url.Values{
		"sort":      {"pushed"},
		"direction": {"desc"},
		"per_page":  {fmt.Sprint(reposPerPage)},
	}.Encode()

	var repos []*service.RemoteRepository
	if err := c.getAPI(ctx, token, path, &repos); err != nil {
		return nil, err
	}

	return repos, nil
}

// FetchRepository fetches a single repository by owner and name.
func (c *Client) FetchRepository(ctx context.Context, token *entity.GitHubToken, owner, name string) (*service.RemoteRepository, error) {
	var repo service.RemoteRepository
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(name))
	if err := c.getAPI(ctx, token, path, &repo); err != nil {
		return nil, err
	}

	return &repo, nil
}

// postJSON POSTs to an OAuth endpoint and decodes the JSON body.
func (c *Client) postJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build oauth request")
	}
	req.Header.Set("Accept", acceptJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "oauth request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("oauth endpoint returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode oauth response")
	}

	return nil
}

// getAPI GETs a REST path with the v2022-11-28 headers and decodes the body.
func (c *Client) getAPI(ctx context.Context, token *entity.GitHubToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build api request")
	}
	req.Header.Set("Accept", acceptGithubJSON)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "api request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return errors.Errorf("github api returned %d for %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode api response")
	}

	return nil
}
