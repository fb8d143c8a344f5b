package service

// KeyDeriver derives the symmetric key protecting a vault's payload from the
// server secret, the vault id and the vault password.
type KeyDeriver interface {
	DeriveVaultKey(vaultID int64, password string) []byte
}
