package github

import (
	"context"
	"time"

	"evault/internal/domain/entity"

	"github.com/pkg/errors"
)

// slowDownBackoff is the extra wait GitHub asks for on a slow_down answer.
const slowDownBackoff = 5 * time.Second

// DeviceGrant is a pending device authorization: the code the user types in
// at the verification URI and the polling parameters the provider dictates.
type DeviceGrant struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// RequestDeviceCode starts the device-code flow.
func (c *Client) RequestDeviceCode(ctx context.Context) (*DeviceGrant, error) {
	var grant DeviceGrant
	err := c.postJSON(ctx, deviceCodeURL(c.oauthBaseURL, c.cfg), &grant)
	if err != nil {
		return nil, err
	}
	if grant.DeviceCode == "" {
		return nil, errors.New("device code request returned no device code")
	}

	return &grant, nil
}

// AwaitDeviceToken polls the provider until the user approves the grant, the
// grant expires or the context is cancelled. authorization_pending keeps the
// loop going at the provider's interval; slow_down stretches it; anything
// else is terminal.
func (c *Client) AwaitDeviceToken(ctx context.Context, grant *DeviceGrant) (*entity.GitHubToken, error) {
	interval := time.Duration(grant.Interval) * time.Second
	if interval <= 0 {
		interval = slowDownBackoff
	}

	return c.awaitDeviceToken(ctx, grant, interval)
}

func (c *Client) awaitDeviceToken(ctx context.Context, grant *DeviceGrant, interval time.Duration) (*entity.GitHubToken, error) {
	deadline := time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "device poll cancelled")
		case <-timer.C:
		}

		if time.Now().After(deadline) {
			return nil, errors.New("device grant expired before approval")
		}

		var payload tokenResponse
		err := c.postJSON(ctx, devicePollURL(c.oauthBaseURL, c.cfg, grant.DeviceCode), &payload)
		if err != nil {
			return nil, err
		}

		switch payload.Error {
		case "":
			if payload.AccessToken == "" {
				return nil, errors.New("device poll returned no access token")
			}

			return &entity.GitHubToken{
				AccessToken: payload.AccessToken,
				TokenType:   payload.TokenType,
				Scope:       payload.Scope,
			}, nil
		case "authorization_pending":
		case "slow_down":
			if payload.Interval > 0 {
				interval = time.Duration(payload.Interval) * time.Second
			} else {
				interval += slowDownBackoff
			}
		default:
			return nil, errors.Errorf("device poll rejected: %s: %s", payload.Error, payload.ErrorDescription)
		}

		timer.Reset(interval)
	}
}
