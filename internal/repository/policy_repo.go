package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// PolicyRepository persists the singleton moderation policy row.
type PolicyRepository interface {
	GetOrCreate(ctx context.Context) (models.ContentPolicy, error)
	Update(ctx context.Context, updates map[string]interface{}) (models.ContentPolicy, error)
}

type policyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository constructs the repository implementation.
func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepository{db: db}
}

// GetOrCreate returns the single policy row, inserting the defaults when it
// is absent. Two cold-start readers may both miss the initial read and both
// attempt the insert; the unique index on slot turns the losing insert into
// a no-op, and the re-read below returns the winner's row.
func (r *policyRepository) GetOrCreate(ctx context.Context) (models.ContentPolicy, error) {
	var policy models.ContentPolicy
	err := r.db.WithContext(ctx).Where("slot = ?", models.PolicySlot).First(&policy).Error
	if err == nil {
		return policy, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ContentPolicy{}, err
	}

	seed := models.ContentPolicy{
		Slot:             models.PolicySlot,
		CommentsEnabled:  true,
		LiveChatEnabled:  true,
		ModerationAction: models.ModerationActionReject,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slot"}}, DoNothing: true}).
		Create(&seed).Error
	if err != nil {
		return models.ContentPolicy{}, err
	}

	if err := r.db.WithContext(ctx).Where("slot = ?", models.PolicySlot).First(&policy).Error; err != nil {
		return models.ContentPolicy{}, err
	}
	return policy, nil
}

// Update applies the supplied columns to the singleton row and returns the
// refreshed state.
func (r *policyRepository) Update(ctx context.Context, updates map[string]interface{}) (models.ContentPolicy, error) {
	policy, err := r.GetOrCreate(ctx)
	if err != nil {
		return models.ContentPolicy{}, err
	}

	if err := r.db.WithContext(ctx).Model(&models.ContentPolicy{}).Where("id = ?", policy.ID).Updates(updates).Error; err != nil {
		return models.ContentPolicy{}, err
	}

	var refreshed models.ContentPolicy
	if err := r.db.WithContext(ctx).First(&refreshed, policy.ID).Error; err != nil {
		return models.ContentPolicy{}, err
	}
	return refreshed, nil
}
