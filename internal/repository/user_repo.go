package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// UserRepository resolves accounts and the profiles that carry their scope.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (models.User, error)
	FindVolunteerByUserID(ctx context.Context, userID uint) (models.VolunteerProfile, error)
	FindAdminByUserID(ctx context.Context, userID uint) (models.AdminProfile, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the repository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindVolunteerByUserID(ctx context.Context, userID uint) (models.VolunteerProfile, error) {
	var profile models.VolunteerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.VolunteerProfile{}, err
	}
	return profile, nil
}

func (r *userRepository) FindAdminByUserID(ctx context.Context, userID uint) (models.AdminProfile, error) {
	var profile models.AdminProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.AdminProfile{}, err
	}
	return profile, nil
}
