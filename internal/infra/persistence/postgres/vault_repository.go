package postgres

import (
	"context"

	"evault/internal/domain/entity"
	domainerrors "evault/internal/domain/errors"
	"evault/internal/domain/repository"
	"evault/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// vaultRepository implements the domain.VaultRepository interface using GORM.
type vaultRepository struct {
	db *gorm.DB
}

// NewVaultRepository is the constructor for vaultRepository.
func NewVaultRepository(db *gorm.DB) repository.VaultRepository {
	return &vaultRepository{db: db}
}

// FindByID retrieves a registered repository record by its GitHub id.
func (repo *vaultRepository) FindByID(ctx context.Context, id int64) (*entity.Vault, error) {
	var vaultM model.VaultModel
	err := repo.db.WithContext(ctx).First(&vaultM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVaultNotFound
		}

		return nil, errors.Wrap(err, "failed to find vault by id")
	}

	return toVaultDomain(&vaultM), nil
}

// Create inserts a new record. A second registration of the same repository
// id trips the primary key constraint and surfaces as ErrVaultExists.
func (repo *vaultRepository) Create(ctx context.Context, vault *entity.Vault) error {
	vaultM := model.VaultModel{
		ID:             vault.ID,
		Name:           vault.Name,
		OwnerID:        vault.OwnerID,
		BucketAddr:     vault.BucketAddr,
		PasswordDigest: vault.PasswordDigest,
	}

	err := repo.db.WithContext(ctx).Create(&vaultM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrVaultExists
		}

		return errors.Wrap(err, "failed to create vault")
	}

	return nil
}

// ListVersions returns a vault's pushed revisions, newest first.
func (repo *vaultRepository) ListVersions(ctx context.Context, vaultID int64) ([]*entity.VaultVersion, error) {
	var versionMs []model.VaultVersionModel
	err := repo.db.WithContext(ctx).
		Where("vault_id = ?", vaultID).
		Order("version_number DESC").
		Find(&versionMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vault versions")
	}

	versions := make([]*entity.VaultVersion, 0, len(versionMs))
	for i := range versionMs {
		versions = append(versions, toVaultVersionDomain(&versionMs[i]))
	}

	return versions, nil
}

// ListEnvs returns a vault's staged key/value entries. An empty stage lists
// every stage.
func (repo *vaultRepository) ListEnvs(ctx context.Context, vaultID int64, stage string) ([]*entity.VaultEnv, error) {
	query := repo.db.WithContext(ctx).Where("vault_id = ?", vaultID)
	if stage != "" {
		query = query.Where("stage = ?", stage)
	}

	var envMs []model.VaultEnvModel
	err := query.Order("stage ASC, key ASC").Find(&envMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vault envs")
	}

	envs := make([]*entity.VaultEnv, 0, len(envMs))
	for i := range envMs {
		envs = append(envs, toVaultEnvDomain(&envMs[i]))
	}

	return envs, nil
}

func toVaultDomain(vaultM *model.VaultModel) *entity.Vault {
	return &entity.Vault{
		ID:             vaultM.ID,
		Name:           vaultM.Name,
		OwnerID:        vaultM.OwnerID,
		BucketAddr:     vaultM.BucketAddr,
		PasswordDigest: vaultM.PasswordDigest,
	}
}

func toVaultVersionDomain(versionM *model.VaultVersionModel) *entity.VaultVersion {
	return &entity.VaultVersion{
		ID:                versionM.ID,
		FileID:            versionM.FileID,
		StorageID:         versionM.StorageID,
		VersionNumber:     versionM.VersionNumber,
		ChangeDescription: versionM.ChangeDescription,
		VaultID:           versionM.VaultID,
		CreatedBy:         versionM.CreatedBy,
		CreatedAt:         versionM.CreatedAt,
		Checksum:          versionM.Checksum,
	}
}

func toVaultEnvDomain(envM *model.VaultEnvModel) *entity.VaultEnv {
	return &entity.VaultEnv{
		ID:        envM.ID,
		Key:       envM.Key,
		Value:     envM.Value,
		Stage:     envM.Stage,
		VaultID:   envM.VaultID,
		CreatedBy: envM.CreatedBy,
		CreatedAt: envM.CreatedAt,
	}
}
