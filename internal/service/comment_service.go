package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/repository"
)

// ErrContentNotCommentable indicates the target is not open for comments or
// messages in its current state.
var ErrContentNotCommentable = errors.New("content does not accept messages in its current state")

// ErrEmptyContent indicates the message was empty after sanitization.
var ErrEmptyContent = errors.New("message is empty")

// CommentService posts and lists moderated user text: comments under
// published videos and chat/Q&A messages inside living rooms. Moderation
// runs before any write; a REJECT outcome means nothing is persisted.
type CommentService interface {
	PostVideoComment(ctx context.Context, principal authz.Principal, videoID uint, req dto.CommentCreateRequest) (dto.CommentResponse, error)
	ListVideoComments(ctx context.Context, videoID uint, page, pageSize int) (dto.CommentListResponse, error)
	PostLiveMessage(ctx context.Context, principal authz.Principal, roomID uint, req dto.LiveMessageCreateRequest) (dto.LiveMessageResponse, error)
	ListLiveMessages(ctx context.Context, roomID uint, kind string, page, pageSize int) (dto.LiveMessageListResponse, error)
}

type commentService struct {
	comments   repository.CommentRepository
	videos     repository.VideoRepository
	rooms      repository.LiveRepository
	moderation ModerationService
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewCommentService constructs the comment service.
func NewCommentService(comments repository.CommentRepository, videos repository.VideoRepository, rooms repository.LiveRepository, moderation ModerationService, validate *validator.Validate, logger zerolog.Logger) CommentService {
	return &commentService{
		comments:   comments,
		videos:     videos,
		rooms:      rooms,
		moderation: moderation,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "comment_service").Logger(),
	}
}

func (s *commentService) PostVideoComment(ctx context.Context, principal authz.Principal, videoID uint, req dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if !authz.Can(principal.Role, authz.CapCommentPost) {
		return dto.CommentResponse{}, ErrRoleNotAllowed
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.CommentResponse{}, err
	}

	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommentResponse{}, ErrVideoNotFound
		}
		return dto.CommentResponse{}, err
	}
	if video.Status != models.VideoStatusPublished {
		return dto.CommentResponse{}, ErrContentNotCommentable
	}

	content, err := s.moderateText(ctx, SceneVideoComment, req.Content)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	comment := models.VideoComment{
		VideoID:  videoID,
		AuthorID: principal.UserID,
		Content:  content,
	}
	if err := s.comments.CreateVideoComment(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}
	return dto.NewCommentResponse(comment), nil
}

func (s *commentService) ListVideoComments(ctx context.Context, videoID uint, page, pageSize int) (dto.CommentListResponse, error) {
	page = maxInt(page, 1)
	if pageSize <= 0 {
		pageSize = 20
	}

	items, total, err := s.comments.ListVideoComments(ctx, videoID, page, pageSize)
	if err != nil {
		return dto.CommentListResponse{}, err
	}

	responses := make([]dto.CommentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.NewCommentResponse(item))
	}

	return dto.CommentListResponse{
		Items:      responses,
		Pagination: paginationMeta(page, pageSize, total),
	}, nil
}

func (s *commentService) PostLiveMessage(ctx context.Context, principal authz.Principal, roomID uint, req dto.LiveMessageCreateRequest) (dto.LiveMessageResponse, error) {
	if !authz.Can(principal.Role, authz.CapChatPost) {
		return dto.LiveMessageResponse{}, ErrRoleNotAllowed
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.LiveMessageResponse{}, err
	}

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LiveMessageResponse{}, ErrLiveNotFound
		}
		return dto.LiveMessageResponse{}, err
	}
	if room.Status != models.LiveStatusLiving {
		return dto.LiveMessageResponse{}, ErrContentNotCommentable
	}

	// Only CHAT messages are subject to the live chat toggle; Q&A is a
	// separate scene and passes through it.
	scene := SceneLiveQA
	if req.Kind == models.LiveMessageChat {
		scene = SceneLiveChat
	}

	content, err := s.moderateText(ctx, scene, req.Content)
	if err != nil {
		return dto.LiveMessageResponse{}, err
	}

	message := models.LiveMessage{
		RoomID:   roomID,
		AuthorID: principal.UserID,
		Kind:     req.Kind,
		Content:  content,
	}
	if err := s.comments.CreateLiveMessage(ctx, &message); err != nil {
		return dto.LiveMessageResponse{}, err
	}
	return dto.NewLiveMessageResponse(message), nil
}

func (s *commentService) ListLiveMessages(ctx context.Context, roomID uint, kind string, page, pageSize int) (dto.LiveMessageListResponse, error) {
	page = maxInt(page, 1)
	if pageSize <= 0 {
		pageSize = 50
	}

	items, total, err := s.comments.ListLiveMessages(ctx, roomID, strings.ToUpper(strings.TrimSpace(kind)), page, pageSize)
	if err != nil {
		return dto.LiveMessageListResponse{}, err
	}

	responses := make([]dto.LiveMessageResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.NewLiveMessageResponse(item))
	}

	return dto.LiveMessageListResponse{
		Items:      responses,
		Pagination: paginationMeta(page, pageSize, total),
	}, nil
}

// moderateText strips markup, then runs the moderation engine.
func (s *commentService) moderateText(ctx context.Context, scene Scene, raw string) (string, error) {
	sanitized := s.sanitizer.Sanitize(raw)
	content, err := s.moderation.Moderate(ctx, scene, sanitized)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}

func paginationMeta(page, pageSize int, total int64) dto.PaginationMeta {
	meta := dto.PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: 1,
	}
	if pageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return meta
}
