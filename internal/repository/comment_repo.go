package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// CommentRepository persists video comments and live messages.
type CommentRepository interface {
	CreateVideoComment(ctx context.Context, comment *models.VideoComment) error
	ListVideoComments(ctx context.Context, videoID uint, page, pageSize int) ([]models.VideoComment, int64, error)
	CreateLiveMessage(ctx context.Context, message *models.LiveMessage) error
	ListLiveMessages(ctx context.Context, roomID uint, kind string, page, pageSize int) ([]models.LiveMessage, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository constructs the repository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) CreateVideoComment(ctx context.Context, comment *models.VideoComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) ListVideoComments(ctx context.Context, videoID uint, page, pageSize int) ([]models.VideoComment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.VideoComment{}).Where("video_id = ?", videoID)

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, page, pageSize)

	var items []models.VideoComment
	if err := query.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *commentRepository) CreateLiveMessage(ctx context.Context, message *models.LiveMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *commentRepository) ListLiveMessages(ctx context.Context, roomID uint, kind string, page, pageSize int) ([]models.LiveMessage, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LiveMessage{}).Where("room_id = ?", roomID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, page, pageSize)

	var items []models.LiveMessage
	if err := query.Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
