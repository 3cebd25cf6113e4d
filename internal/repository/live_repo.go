package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// LiveFilter narrows live room list queries.
type LiveFilter struct {
	Status          string
	CollegeID       *uint
	AnchorID        *uint
	TitleSearch     string
	VisibleStatuses []string
	Page            int
	PageSize        int
}

// LiveRepository exposes persistence helpers for live rooms.
type LiveRepository interface {
	Create(ctx context.Context, room *models.LiveRoom) error
	FindByID(ctx context.Context, id uint) (models.LiveRoom, error)
	List(ctx context.Context, filter LiveFilter) ([]models.LiveRoom, int64, error)
	// TransitionWhere is the single atomic compare-and-update primitive for
	// the live state machine. Matching on {id, status, college} in one
	// UPDATE is what guarantees that of two racing audits exactly one
	// observes a non-zero row count.
	TransitionWhere(ctx context.Context, id uint, fromStatuses []string, collegeID *uint, updates map[string]interface{}) (int64, error)
}

type liveRepository struct {
	db *gorm.DB
}

// NewLiveRepository constructs the repository implementation.
func NewLiveRepository(db *gorm.DB) LiveRepository {
	return &liveRepository{db: db}
}

func (r *liveRepository) Create(ctx context.Context, room *models.LiveRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *liveRepository) FindByID(ctx context.Context, id uint) (models.LiveRoom, error) {
	var room models.LiveRoom
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return models.LiveRoom{}, err
	}
	return room, nil
}

func (r *liveRepository) List(ctx context.Context, filter LiveFilter) ([]models.LiveRoom, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LiveRoom{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if len(filter.VisibleStatuses) > 0 {
		query = query.Where("status IN ?", filter.VisibleStatuses)
	}
	if filter.CollegeID != nil {
		query = query.Where("college_id = ?", *filter.CollegeID)
	}
	if filter.AnchorID != nil {
		query = query.Where("anchor_id = ?", *filter.AnchorID)
	}
	if filter.TitleSearch != "" {
		query = query.Where("title LIKE ?", "%"+filter.TitleSearch+"%")
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var items []models.LiveRoom
	if err := query.Order("plan_start_time DESC, id DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *liveRepository) TransitionWhere(ctx context.Context, id uint, fromStatuses []string, collegeID *uint, updates map[string]interface{}) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LiveRoom{}).Where("id = ?", id)
	if len(fromStatuses) > 0 {
		query = query.Where("status IN ?", fromStatuses)
	}
	if collegeID != nil {
		query = query.Where("college_id = ?", *collegeID)
	}
	result := query.Updates(updates)
	return result.RowsAffected, result.Error
}
