package usecase

import (
	"context"

	"evault/internal/domain/entity"
	"evault/internal/domain/service"
)

// --- Input DTOs ---

// CreateVaultInput registers a local repository record.
type CreateVaultInput struct {
	RepoID       int64  `query:"repo_id" validate:"required"`
	Password     string `query:"password" validate:"required"`
	RepoFullName string `query:"repo_fullname" validate:"required"`
}

// --- Output DTOs ---

// VaultOutput is the local repository record returned to the dashboard,
// carrying its version history and env entries along.
type VaultOutput struct {
	ID         int64                  `json:"id"`
	Name       string                 `json:"name"`
	OwnerID    int64                  `json:"owner_id"`
	BucketAddr *string                `json:"bucket_addr"`
	Versions   []*entity.VaultVersion `json:"versions"`
	Envs       []*entity.VaultEnv     `json:"envs"`
}

// DashboardUsecase serves the dashboard API over the caller's GitHub
// repositories and the locally registered vault records. It depends on the
// broker only through the resolved UserSession.
type DashboardUsecase interface {
	// ListRepositories fetches the caller's repositories live from GitHub.
	ListRepositories(ctx context.Context, session *entity.UserSession) ([]*service.RemoteRepository, error)

	// GetVault looks up a local record after validating the repo full-name
	// format and the caller's live ownership of the repository.
	GetVault(ctx context.Context, session *entity.UserSession, repoID int64, repoFullName string) (*VaultOutput, error)

	// CreateVault registers a local record for a repository the caller owns.
	CreateVault(ctx context.Context, session *entity.UserSession, input *CreateVaultInput) error
}
