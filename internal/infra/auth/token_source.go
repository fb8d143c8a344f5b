package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"evault/internal/domain/service"

	"github.com/pkg/errors"
)

// tokenSource mints opaque tokens from the system CSPRNG.
type tokenSource struct{}

// NewTokenSource is the constructor for tokenSource.
func NewTokenSource() service.TokenSource {
	return &tokenSource{}
}

// URLSafe returns numBytes of entropy in unpadded url-safe base64, suitable
// for cookies and query parameters.
func (t *tokenSource) URLSafe(numBytes int) (string, error) {
	raw, err := randomBytes(numBytes)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Hex returns numBytes of entropy hex-encoded.
func (t *tokenSource) Hex(numBytes int) (string, error) {
	raw, err := randomBytes(numBytes)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(raw), nil
}

func randomBytes(numBytes int) ([]byte, error) {
	raw := make([]byte, numBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, errors.Wrap(err, "failed to read token entropy")
	}

	return raw, nil
}
