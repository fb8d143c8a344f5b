package service

// PasswordHasher hashes and verifies vault passwords.
type PasswordHasher interface {
	// Hash generates a salted digest from a plaintext password.
	Hash(password string) (string, error)

	// Check reports whether the plaintext password matches the digest. A
	// malformed digest is an error, not a mismatch.
	Check(password, digest string) (bool, error)
}
