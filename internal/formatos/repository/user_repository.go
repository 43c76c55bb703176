package repository

import (
	"context"
	"errors"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"gorm.io/gorm"
)

// UserRepository reads plant users.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates the repository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads a user. Returns (nil, nil) when absent.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// List returns active users.
func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("status = ? AND deleted_at IS NULL", "active").
		Order("name ASC").
		Find(&users).Error
	return users, err
}
