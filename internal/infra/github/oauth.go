// Package github implements the GitHub OAuth and REST boundary.
package github

import (
	"net/url"

	"evault/config"
	"evault/internal/domain/entity"
	"evault/internal/domain/service"
)

const (
	defaultOAuthBaseURL = "https://github.com"
	defaultAPIBaseURL   = "https://api.github.com"

	// oauthScope grants repository access plus the profile read the
	// dashboard needs.
	oauthScope = "repo read:user"

	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// urlBuilder assembles GitHub OAuth URLs. Pure string work, no I/O.
type urlBuilder struct {
	cfg     *config.GithubOAuthConfig
	baseURL string
}

// NewURLBuilder is the constructor for the OAuth URL builder.
func NewURLBuilder(cfg *config.Config) service.AuthURLBuilder {
	return &urlBuilder{cfg: cfg.GithubOAuth, baseURL: defaultOAuthBaseURL}
}

// AuthorizeURL builds the provider consent URL. The session id and device
// type ride the redirect URI so the callback can pick the flow back up; the
// state parameter is the CSRF check.
func (b *urlBuilder) AuthorizeURL(state, sessionID string, deviceType entity.DeviceType) string {
	redirect := b.cfg.RedirectURI + "?" + url.Values{
		"session_id":  {sessionID},
		"device_type": {string(deviceType)},
	}.Encode()

	return b.baseURL + "/login/oauth/authorize?" + url.Values{
		"client_id":    {b.cfg.ClientID},
		"redirect_uri": {redirect},
		"scope":        {oauthScope},
		"state":        {state},
	}.Encode()
}

// tokenExchangeURL builds the code-for-token exchange endpoint.
func tokenExchangeURL(baseURL string, cfg *config.GithubOAuthConfig, code string) string {
	return baseURL + "/login/oauth/access_token?" + url.Values{
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
		"code":          {code},
	}.Encode()
}

// deviceCodeURL builds the device authorization request endpoint.
func deviceCodeURL(baseURL string, cfg *config.GithubOAuthConfig) string {
	return baseURL + "/login/device/code?" + url.Values{
		"client_id": {cfg.ClientID},
		"scope":     {oauthScope},
	}.Encode()
}

// devicePollURL builds the device grant poll endpoint.
func devicePollURL(baseURL string, cfg *config.GithubOAuthConfig, deviceCode string) string {
	return baseURL + "/login/oauth/access_token?" + url.Values{
		"client_id":   {cfg.ClientID},
		"device_code": {deviceCode},
		"grant_type":  {deviceGrantType},
	}.Encode()
}
