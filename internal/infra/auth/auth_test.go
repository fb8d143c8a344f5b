package auth

import (
	"encoding/base64"
	"strings"
	"testing"

	"evault/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	hasher := NewArgon2Hasher()

	digest, err := hasher.Hash("hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=65536,t=3,p=4$"))

	ok, err := hasher.Check("hunter2", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Check("wrong-password", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_SaltedDigestsDiffer(t *testing.T) {
	hasher := NewArgon2Hasher()

	first, err := hasher.Hash("hunter2")
	require.NoError(t, err)
	second, err := hasher.Hash("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestArgon2Hasher_MalformedDigest(t *testing.T) {
	hasher := NewArgon2Hasher()

	for _, digest := range []string{"", "plaintext", "$bcrypt$whatever", "$argon2id$v=19$m=65536$short"} {
		_, err := hasher.Check("hunter2", digest)
		assert.Error(t, err, "digest %q", digest)
	}
}

func TestTokenSource_Encodings(t *testing.T) {
	tokens := NewTokenSource()

	urlSafe, err := tokens.URLSafe(32)
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(urlSafe)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	hexToken, err := tokens.Hex(32)
	require.NoError(t, err)
	assert.Len(t, hexToken, 64)

	other, err := tokens.URLSafe(32)
	require.NoError(t, err)
	assert.NotEqual(t, urlSafe, other)
}

func TestKeyDeriver_Deterministic(t *testing.T) {
	cfg := &config.Config{ServerSecret: "server-secret"}
	deriver := NewKeyDeriver(cfg)

	first := deriver.DeriveVaultKey(42, "hunter2")
	assert.Len(t, first, 32)
	assert.Equal(t, first, deriver.DeriveVaultKey(42, "hunter2"))

	// every input byte participates in the derivation
	assert.NotEqual(t, first, deriver.DeriveVaultKey(43, "hunter2"))
	assert.NotEqual(t, first, deriver.DeriveVaultKey(42, "hunter3"))
	assert.NotEqual(t, first, NewKeyDeriver(&config.Config{ServerSecret: "other"}).DeriveVaultKey(42, "hunter2"))
}
