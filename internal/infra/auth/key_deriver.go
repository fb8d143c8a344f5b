package auth

import (
	"encoding/binary"

	"evault/config"
	"evault/internal/domain/service"

	"github.com/zeebo/blake3"
)

// keyDerivationContext is the fixed blake3 derive-key context. It is part of
// the key construction: changing it invalidates every derived key.
const keyDerivationContext = "evault 2069-04-20 00:04:20 evault key construction v0"

const derivedKeyLen = 32

// keyDeriver implements the KeyDeriver interface with blake3 derive_key.
type keyDeriver struct {
	serverSecret []byte
}

// NewKeyDeriver is the constructor for keyDeriver.
func NewKeyDeriver(cfg *config.Config) service.KeyDeriver {
	return &keyDeriver{serverSecret: []byte(cfg.ServerSecret)}
}

// DeriveVaultKey derives the symmetric key for one vault. The material binds
// the server secret, the repository id (little-endian int64) and the vault
// password, in that order.
func (d *keyDeriver) DeriveVaultKey(vaultID int64, password string) []byte {
	material := make([]byte, 0, len(d.serverSecret)+8+len(password))
	material = append(material, d.serverSecret...)
	material = binary.LittleEndian.AppendUint64(material, uint64(vaultID))
	material = append(material, password...)

	key := make([]byte, derivedKeyLen)
	blake3.DeriveKey(keyDerivationContext, material, key)

	return key
}
