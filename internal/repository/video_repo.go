package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// VideoFilter narrows video list queries. A nil pointer leaves the
// dimension unconstrained; VisibleStatuses restricts the viewer to a fixed
// status set regardless of the Status filter.
type VideoFilter struct {
	Status          string
	CollegeID       *uint
	UploaderID      *uint
	TitleSearch     string
	VisibleStatuses []string
	Page            int
	PageSize        int
}

// VideoRepository exposes persistence helpers for videos.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	FindByID(ctx context.Context, id uint) (models.Video, error)
	List(ctx context.Context, filter VideoFilter) ([]models.Video, int64, error)
	// TransitionWhere applies updates to the row only when its current
	// status is one of fromStatuses (and, when collegeID is set, the row
	// belongs to that college). The affected-row count lets the caller
	// implement first-writer-wins auditing.
	TransitionWhere(ctx context.Context, id uint, fromStatuses []string, collegeID *uint, updates map[string]interface{}) (int64, error)
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository constructs the repository implementation.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepository) FindByID(ctx context.Context, id uint) (models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		return models.Video{}, err
	}
	return video, nil
}

func (r *videoRepository) List(ctx context.Context, filter VideoFilter) ([]models.Video, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Video{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if len(filter.VisibleStatuses) > 0 {
		query = query.Where("status IN ?", filter.VisibleStatuses)
	}
	if filter.CollegeID != nil {
		query = query.Where("college_id = ?", *filter.CollegeID)
	}
	if filter.UploaderID != nil {
		query = query.Where("uploader_id = ?", *filter.UploaderID)
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

	var items []models.Video
	if err := query.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *videoRepository) TransitionWhere(ctx context.Context, id uint, fromStatuses []string, collegeID *uint, updates map[string]interface{}) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id)
	if len(fromStatuses) > 0 {
		query = query.Where("status IN ?", fromStatuses)
	}
	if collegeID != nil {
		query = query.Where("college_id = ?", *collegeID)
	}
	result := query.Updates(updates)
	return result.RowsAffected, result.Error
}
