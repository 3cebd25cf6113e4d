package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// SensitiveWordRepository persists the moderation block list. Ordering is
// computed by the caller at read time; nothing about order is stored.
type SensitiveWordRepository interface {
	ListActive(ctx context.Context) ([]models.SensitiveWord, error)
	List(ctx context.Context) ([]models.SensitiveWord, error)
	Create(ctx context.Context, word *models.SensitiveWord) error
	Delete(ctx context.Context, id uint) (int64, error)
	SetActive(ctx context.Context, id uint, active bool) (int64, error)
}

type sensitiveWordRepository struct {
	db *gorm.DB
}

// NewSensitiveWordRepository constructs the repository implementation.
func NewSensitiveWordRepository(db *gorm.DB) SensitiveWordRepository {
	return &sensitiveWordRepository{db: db}
}

func (r *sensitiveWordRepository) ListActive(ctx context.Context) ([]models.SensitiveWord, error) {
	var words []models.SensitiveWord
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

func (r *sensitiveWordRepository) List(ctx context.Context) ([]models.SensitiveWord, error) {
	var words []models.SensitiveWord
	if err := r.db.WithContext(ctx).Order("word").Find(&words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

func (r *sensitiveWordRepository) Create(ctx context.Context, word *models.SensitiveWord) error {
	return r.db.WithContext(ctx).Create(word).Error
}

func (r *sensitiveWordRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.SensitiveWord{}, id)
	return result.RowsAffected, result.Error
}

func (r *sensitiveWordRepository) SetActive(ctx context.Context, id uint, active bool) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.SensitiveWord{}).Where("id = ?", id).Update("is_active", active)
	return result.RowsAffected, result.Error
}
