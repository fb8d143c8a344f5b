package postgres

import (
	"context"

	"evault/internal/domain/entity"
	"evault/internal/domain/repository"
	"evault/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their GitHub id.
func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).First(&userM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// Upsert inserts the user on first login and refreshes the mutable profile
// fields on every later one. The GitHub id is the conflict target.
func (repo *userRepository) Upsert(ctx context.Context, user *entity.User) error {
	userM := model.UserModel{
		ID:    user.ID,
		Login: user.Login,
		Name:  user.Name,
		Email: user.Email,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"login", "name", "email", "updated_at"}),
		}).
		Create(&userM).Error
	if err != nil {
		return errors.Wrap(err, "failed to upsert user")
	}

	return nil
}

// toUserDomain maps the persistence model back to a pure domain entity.
func toUserDomain(userM *model.UserModel) *entity.User {
	return &entity.User{
		ID:        userM.ID,
		Login:     userM.Login,
		Name:      userM.Name,
		Email:     userM.Email,
		CreatedAt: userM.CreatedAt,
		UpdatedAt: userM.UpdatedAt,
	}
}
