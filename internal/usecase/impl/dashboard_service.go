package impl

import (
	"context"
	"log/slog"

	"evault/internal/domain/entity"
	domainerrors "evault/internal/domain/errors"
	"evault/internal/domain/repository"
	"evault/internal/domain/service"
	"evault/internal/usecase"
	"evault/internal/util"

	"github.com/pkg/errors"
)

// dashboardService implements the DashboardUsecase interface.
type dashboardService struct {
	identity service.IdentityService
	vaults   repository.VaultRepository
	hasher   service.PasswordHasher
	logger   *slog.Logger
}

// NewDashboardService is the constructor for dashboardService.
func NewDashboardService(
	identity service.IdentityService,
	vaults repository.VaultRepository,
	hasher service.PasswordHasher,
	logger *slog.Logger,
) usecase.DashboardUsecase {
	return &dashboardService{
		identity: identity,
		vaults:   vaults,
		hasher:   hasher,
		logger:   logger,
	}
}

// ListRepositories returns the caller's repositories live from GitHub using
// the provider token stored in the session.
func (srv *dashboardService) ListRepositories(ctx context.Context, session *entity.UserSession) ([]*service.RemoteRepository, error) {
	repos, err := srv.identity.FetchUserRepositories(ctx, &session.Token)
	if err != nil {
		srv.logger.Error("repository list failed",
			slog.Int64("user_id", session.User.ID),
			slog.Any("error", err))

		return nil, domainerrors.ErrUpstreamAuth.WrapMessage("repository list failed")
	}

	return repos, nil
}

// GetVault validates the repo string, confirms live ownership and returns the
// local record with its version history and env entries.
func (srv *dashboardService) GetVault(ctx context.Context, session *entity.UserSession, repoID int64, repoFullName string) (*usecase.VaultOutput, error) {
	owner, name, ok := util.SplitRepoFullName(repoFullName)
	if !ok {
		return nil, domainerrors.ErrInvalidRepoName
	}

	if err := srv.checkOwnership(ctx, session, owner, name); err != nil {
		return nil, err
	}

	vault, err := srv.vaults.FindByID(ctx, repoID)
	if err != nil {
		if errors.Is(err, repository.ErrVaultNotFound) {
			return nil, domainerrors.ErrVaultNotFound
		}

		return nil, errors.Wrap(err, "failed to find vault")
	}

	versions, err := srv.vaults.ListVersions(ctx, repoID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vault versions")
	}

	envs, err := srv.vaults.ListEnvs(ctx, repoID, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vault envs")
	}

	return &usecase.VaultOutput{
		ID:         vault.ID,
		Name:       vault.Name,
		OwnerID:    vault.OwnerID,
		BucketAddr: vault.BucketAddr,
		Versions:   versions,
		Envs:       envs,
	}, nil
}

// CreateVault registers a local record for a repository the caller owns. The
// password is stored as a salted digest, never in the clear. Uniqueness of
// the repository id is left to the store's constraint.
func (srv *dashboardService) CreateVault(ctx context.Context, session *entity.UserSession, input *usecase.CreateVaultInput) error {
	owner, name, ok := util.SplitRepoFullName(input.RepoFullName)
	if !ok {
		return domainerrors.ErrInvalidRepoName
	}

	remote, err := srv.identity.FetchRepository(ctx, &session.Token, owner, name)
	if err != nil {
		srv.logger.Error("repository fetch failed",
			slog.String("repo", input.RepoFullName),
			slog.Any("error", err))

		return domainerrors.ErrUpstreamAuth.WrapMessage("repository fetch failed")
	}
	if remote.Owner.ID != session.User.ID {
		return domainerrors.ErrNotOwner
	}

	digest, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return errors.Wrap(err, "failed to hash vault password")
	}

	err = srv.vaults.Create(ctx, &entity.Vault{
		ID:             input.RepoID,
		Name:           remote.FullName,
		OwnerID:        remote.Owner.ID,
		PasswordDigest: digest,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create vault")
	}

	srv.logger.Info("vault registered",
		slog.Int64("vault_id", input.RepoID),
		slog.Int64("owner_id", remote.Owner.ID))

	return nil
}

// checkOwnership confirms against the provider that the session's user owns
// the repository.
func (srv *dashboardService) checkOwnership(ctx context.Context, session *entity.UserSession, owner, name string) error {
	remote, err := srv.identity.FetchRepository(ctx, &session.Token, owner, name)
	if err != nil {
		srv.logger.Error("repository fetch failed",
			slog.String("repo", owner+"/"+name),
			slog.Any("error", err))

		return domainerrors.ErrUpstreamAuth.WrapMessage("repository fetch failed")
	}

	if remote.Owner.ID != session.User.ID {
		return domainerrors.ErrNotOwner
	}

	return nil
}
