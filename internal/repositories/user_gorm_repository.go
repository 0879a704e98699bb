package repositories

import (
	"context"
	"errors"
	"fmt"

	"spots/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create user %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username", username)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email", email)
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id", id)
}

func (r *GORMUserRepository) first(ctx context.Context, column string, value interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, column+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with %s %v: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s %v: %w", column, value, err)
	}
	return &user, nil
}

// SetAdmin grants or revokes the admin flag of a user.
func (r *GORMUserRepository) SetAdmin(ctx context.Context, username string, isAdmin bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("is_admin", isAdmin)
	if res.Error != nil {
		return fmt.Errorf("failed to update admin flag for %s: %w", username, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with username %s: %w", username, ErrNotFound)
	}
	return nil
}
