package service

// TokenSource mints opaque random tokens: handshake session ids, CSRF states
// and the service's own bearer tokens.
type TokenSource interface {
	// URLSafe returns a URL-safe base64 token from numBytes of entropy.
	URLSafe(numBytes int) (string, error)

	// Hex returns a hex token from numBytes of entropy.
	Hex(numBytes int) (string, error)
}
