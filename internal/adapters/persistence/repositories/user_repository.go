package repositories

import (
	"context"

	"finance-backoffice/internal/adapters/persistence/models"
	"finance-backoffice/internal/core/domain"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a principal. The unique index on username decides races
// between concurrent registrations.
func (r *userRepository) Create(ctx context.Context, principal *domain.Principal) error {
	user := models.UserFromDomain(principal)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrUsernameTaken
		}
		return translate("create user", err)
	}
	principal.ID = user.ID
	principal.CreatedAt = user.CreatedAt
	return nil
}

// FindByID gets a user by ID
func (r *userRepository) FindByID(ctx context.Context, id uint) (*domain.Principal, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate("find user", err)
	}
	return user.ToDomain(), nil
}

// FindByUsername gets a user by username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate("find user", err)
	}
	return user.ToDomain(), nil
}

// ExistsWithRole checks if any user holds role
func (r *userRepository) ExistsWithRole(ctx context.Context, role domain.Role) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", string(role)).Count(&count).Error
	if err != nil {
		return false, translate("count users", err)
	}
	return count > 0, nil
}
