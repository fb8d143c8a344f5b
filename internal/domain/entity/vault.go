package entity

import "time"

// Vault is a locally registered repository record: a GitHub repository the
// owner has enrolled, protected by a repository password digest.
type Vault struct {
	ID             int64 // the GitHub repository id
	Name           string
	OwnerID        int64
	BucketAddr     *string
	PasswordDigest string
}

// VaultVersion is one pushed revision of a vault's payload.
type VaultVersion struct {
	ID                int64     `json:"id"`
	FileID            string    `json:"file_id"`
	StorageID         string    `json:"storage_id"`
	VersionNumber     int       `json:"version_number"`
	ChangeDescription string    `json:"change_description"`
	VaultID           int64     `json:"vault_id"`
	CreatedBy         int64     `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	Checksum          string    `json:"checksum"`
}

// VaultEnv is a staged key/value entry attached to a vault.
type VaultEnv struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Stage     string    `json:"stage"`
	VaultID   int64     `json:"vault_id"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
