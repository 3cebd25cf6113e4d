package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// CollegeRepository persists colleges. Plain CRUD; colleges have no state
// machine, they only delimit admin scope.
type CollegeRepository interface {
	FindByID(ctx context.Context, id uint) (models.College, error)
	List(ctx context.Context) ([]models.College, error)
	Create(ctx context.Context, college *models.College) error
}

type collegeRepository struct {
	db *gorm.DB
}

// NewCollegeRepository constructs the repository implementation.
func NewCollegeRepository(db *gorm.DB) CollegeRepository {
	return &collegeRepository{db: db}
}

func (r *collegeRepository) FindByID(ctx context.Context, id uint) (models.College, error) {
	var college models.College
	if err := r.db.WithContext(ctx).First(&college, id).Error; err != nil {
		return models.College{}, err
	}
	return college, nil
}

func (r *collegeRepository) List(ctx context.Context) ([]models.College, error) {
	var colleges []models.College
	if err := r.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&colleges).Error; err != nil {
		return nil, err
	}
	return colleges, nil
}

func (r *collegeRepository) Create(ctx context.Context, college *models.College) error {
	return r.db.WithContext(ctx).Create(college).Error
}
