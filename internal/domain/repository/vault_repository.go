package repository

import (
	"context"
	"errors"

	"evault/internal/domain/entity"
)

// ErrVaultNotFound is returned when no vault row exists for the given id.
var ErrVaultNotFound = errors.New("vault not found")

// VaultRepository defines persistence for locally registered repository records.
type VaultRepository interface {
	// FindByID retrieves a vault by the GitHub repository id.
	FindByID(ctx context.Context, id int64) (*entity.Vault, error)

	// Create persists a new vault. Uniqueness of the id is enforced by the
	// store's constraint; a duplicate surfaces as a conflict error.
	Create(ctx context.Context, vault *entity.Vault) error

	// ListVersions returns the pushed revisions of a vault, newest first.
	ListVersions(ctx context.Context, vaultID int64) ([]*entity.VaultVersion, error)

	// ListEnvs returns the env entries of a vault for one stage, or for all
	// stages when stage is empty.
	ListEnvs(ctx context.Context, vaultID int64, stage string) ([]*entity.VaultEnv, error)
}
