// Package auth holds the credential primitives: password hashing, token
// minting and vault key derivation.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"evault/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters, the RFC 9106 low-memory recommendation.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonSaltLen = 32
	argonKeyLen  = 32
)

// argon2Hasher implements the PasswordHasher interface with argon2id and the
// standard $argon2id$... encoded digest format.
type argon2Hasher struct{}

// NewArgon2Hasher is the constructor for argon2Hasher.
func NewArgon2Hasher() service.PasswordHasher {
	return &argon2Hasher{}
}

func (h *argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "failed to read salt entropy")
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	digest := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))

	return digest, nil
}

func (h *argon2Hasher) Check(password, digest string) (bool, error) {
	version, memory, time, threads, salt, key, err := parseDigest(digest)
	if err != nil {
		return false, err
	}
	if version != argon2.Version {
		return false, errors.Errorf("unsupported argon2 version %d", version)
	}

	candidate := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(key)))

	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}

func parseDigest(digest string) (version int, memory, time uint32, threads uint8, salt, key []byte, err error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		err = errors.New("malformed argon2id digest")

		return
	}

	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		err = errors.Wrap(err, "malformed argon2 version")

		return
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		err = errors.Wrap(err, "malformed argon2 parameters")

		return
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		err = errors.Wrap(err, "malformed argon2 salt")

		return
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		err = errors.Wrap(err, "malformed argon2 key")
	}

	return
}
