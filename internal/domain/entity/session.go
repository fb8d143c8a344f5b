// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strconv"

	"evault/internal/errors"
)

// DeviceType identifies which kind of client started a login attempt.
type DeviceType string

const (
	// DeviceWeb is an interactive browser; it receives the session token as
	// an HTTP-only cookie paired with a CSRF token.
	DeviceWeb DeviceType = "web"

	// DeviceCLI is a headless client; it retrieves the session token through
	// the poll endpoint instead of a cookie.
	DeviceCLI DeviceType = "cli"
)

// ParseDeviceType validates a raw device_type query parameter.
func ParseDeviceType(raw string) (DeviceType, error) {
	switch DeviceType(raw) {
	case DeviceWeb, DeviceCLI:
		return DeviceType(raw), nil
	default:
		return "", errors.Errorf("unknown device type %q", raw)
	}
}

// GitHubUser is the slice of the provider profile kept inside a session.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	AvatarURL string `json:"avatar_url"`
}

// GitHubToken is the provider-issued OAuth token bound to a session.
type GitHubToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// UserSession is an authenticated principal bound to a provider token,
// keyed in the cache solely by its own unguessable access token.
type UserSession struct {
	DeviceType DeviceType
	User       GitHubUser
	Token      GitHubToken

	// CSRFToken is set for web sessions only; state-changing requests must
	// pair it with the session cookie.
	CSRFToken string
}

// Field names for the cache hash representation of a UserSession.
const (
	fieldDeviceType    = "device_type"
	fieldCSRFToken     = "csrf_token"
	fieldUserID        = "user.id"
	fieldUserLogin     = "user.login"
	fieldUserName      = "user.name"
	fieldUserType      = "user.type"
	fieldUserAvatarURL = "user.avatar_url"
	fieldTokenAccess   = "token.access_token"
	fieldTokenType     = "token.token_type"
	fieldTokenScope    = "token.scope"
)

// ToFields flattens the session into the field map stored as a cache hash.
// An empty CSRFToken is omitted rather than stored as an empty field.
func (s *UserSession) ToFields() map[string]string {
	fields := map[string]string{
		fieldDeviceType:    string(s.DeviceType),
		fieldUserID:        strconv.FormatInt(s.User.ID, 10),
		fieldUserLogin:     s.User.Login,
		fieldUserName:      s.User.Name,
		fieldUserType:      s.User.Type,
		fieldUserAvatarURL: s.User.AvatarURL,
		fieldTokenAccess:   s.Token.AccessToken,
		fieldTokenType:     s.Token.TokenType,
		fieldTokenScope:    s.Token.Scope,
	}
	if s.CSRFToken != "" {
		fields[fieldCSRFToken] = s.CSRFToken
	}

	return fields
}

// SessionFromFields rebuilds a UserSession from its cache hash fields.
func SessionFromFields(fields map[string]string) (*UserSession, error) {
	deviceType, err := ParseDeviceType(fields[fieldDeviceType])
	if err != nil {
		return nil, errors.Wrap(err, "malformed session record")
	}

	userID, err := strconv.ParseInt(fields[fieldUserID], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "malformed session user id")
	}

	return &UserSession{
		DeviceType: deviceType,
		User: GitHubUser{
			ID:        userID,
			Login:     fields[fieldUserLogin],
			Name:      fields[fieldUserName],
			Type:      fields[fieldUserType],
			AvatarURL: fields[fieldUserAvatarURL],
		},
		Token: GitHubToken{
			AccessToken: fields[fieldTokenAccess],
			TokenType:   fields[fieldTokenType],
			Scope:       fields[fieldTokenScope],
		},
		CSRFToken: fields[fieldCSRFToken],
	}, nil
}
