package service

import "evault/internal/domain/entity"

// AuthURLBuilder constructs provider authorize URLs. Pure and stateless; the
// broker never sees the OAuth client credentials directly.
type AuthURLBuilder interface {
	// AuthorizeURL embeds the session id and device type into the
	// registered redirect URI and the CSRF state into the authorize query.
	AuthorizeURL(state, sessionID string, deviceType entity.DeviceType) string
}
