package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/observability"
	"github.com/seva-edu/seva-go-api/internal/repository"
)

var (
	// ErrVideoNotFound indicates the referenced video does not exist.
	ErrVideoNotFound = errors.New("video not found")
	// ErrNotOwner rejects an operation reserved for the content creator.
	ErrNotOwner = errors.New("not the content owner")
	// ErrScopeMismatch rejects a cross-college admin action.
	ErrScopeMismatch = errors.New("entity outside admin college scope")
	// ErrNoCollege indicates the acting volunteer has no resolvable college.
	ErrNoCollege = errors.New("volunteer has no resolvable college")
	// ErrRoleNotAllowed rejects an actor whose role lacks the capability.
	ErrRoleNotAllowed = errors.New("role not allowed for this operation")
	// ErrReasonRequired indicates a rejection or takedown without a reason.
	ErrReasonRequired = errors.New("reason is required")
	// ErrInvalidTransition indicates the entity is not in a valid
	// predecessor state for the requested transition.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StateConflictError reports a lost first-writer-wins race: the conditional
// update matched zero rows because another writer already moved the entity.
// Current carries the status observed on re-read so callers can refresh.
type StateConflictError struct {
	Current string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("already processed, current status %s", e.Current)
}

// VideoService drives the video lifecycle state machine.
type VideoService interface {
	Create(ctx context.Context, principal authz.Principal, req dto.VideoCreateRequest) (dto.VideoResponse, error)
	SubmitReview(ctx context.Context, principal authz.Principal, id uint) (dto.VideoResponse, error)
	Audit(ctx context.Context, principal authz.Principal, id uint, req dto.VideoAuditRequest) (dto.VideoResponse, error)
	BatchAudit(ctx context.Context, principal authz.Principal, req dto.VideoBatchAuditRequest) (dto.VideoBatchAuditResponse, error)
	Offline(ctx context.Context, principal authz.Principal, id uint, req dto.VideoOfflineRequest) (dto.VideoResponse, error)
	Get(ctx context.Context, principal authz.Principal, id uint) (dto.VideoResponse, error)
	List(ctx context.Context, principal authz.Principal, req dto.VideoListRequest) (dto.VideoListResponse, error)
}

type videoService struct {
	videos    repository.VideoRepository
	users     repository.UserRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewVideoService constructs the video lifecycle engine. The redis client is
// optional and only caches the public published listing.
func NewVideoService(videos repository.VideoRepository, users repository.UserRepository, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) VideoService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &videoService{
		videos:    videos,
		users:     users,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "video_service").Logger(),
	}
}

func (s *videoService) Create(ctx context.Context, principal authz.Principal, req dto.VideoCreateRequest) (dto.VideoResponse, error) {
	if !authz.Can(principal.Role, authz.CapVideoCreate) {
		return dto.VideoResponse{}, ErrRoleNotAllowed
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.VideoResponse{}, err
	}

	profile, err := s.users.FindVolunteerByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoResponse{}, ErrNoCollege
		}
		return dto.VideoResponse{}, err
	}
	if profile.CollegeID == 0 {
		return dto.VideoResponse{}, ErrNoCollege
	}

	video := models.Video{
		Title:      strings.TrimSpace(req.Title),
		URL:        req.URL,
		Intro:      req.Intro,
		CoverURL:   req.CoverURL,
		Duration:   req.Duration,
		GradeRange: req.GradeRange,
		SubjectTag: req.SubjectTag,
		Status:     models.VideoStatusDraft,
		UploaderID: principal.UserID,
		CollegeID:  profile.CollegeID,
	}
	if err := s.videos.Create(ctx, &video); err != nil {
		return dto.VideoResponse{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		OperatorID: principal.UserID,
		Action:     models.AuditActionCreate,
		TargetID:   strconv.FormatUint(uint64(video.ID), 10),
		TargetType: "Video",
		Detail:     "video draft created",
		ClientIP:   principal.ClientIP,
	})
	observability.LifecycleTransitions().WithLabelValues("video", "create").Inc()

	return dto.NewVideoResponse(video), nil
}

func (s *videoService) SubmitReview(ctx context.Context, principal authz.Principal, id uint) (dto.VideoResponse, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoResponse{}, ErrVideoNotFound
		}
		return dto.VideoResponse{}, err
	}
	if video.UploaderID != principal.UserID {
		return dto.VideoResponse{}, ErrNotOwner
	}
	if video.Status != models.VideoStatusDraft && video.Status != models.VideoStatusRejected {
		return dto.VideoResponse{}, fmt.Errorf("%w: cannot submit from %s", ErrInvalidTransition, video.Status)
	}

	// Resubmitting a rejected video clears the previous reason.
	affected, err := s.videos.TransitionWhere(ctx, id,
		[]string{models.VideoStatusDraft, models.VideoStatusRejected}, nil,
		map[string]interface{}{"status": models.VideoStatusReview, "reject_reason": nil})
	if err != nil {
		return dto.VideoResponse{}, err
	}
	if affected == 0 {
		return dto.VideoResponse{}, s.conflictFor(ctx, id)
	}

	s.audit.Record(ctx, AuditEntry{
		OperatorID: principal.UserID,
		Action:     models.AuditActionUpdate,
		TargetID:   strconv.FormatUint(uint64(id), 10),
		TargetType: "Video",
		Detail:     "submitted for review",
		ClientIP:   principal.ClientIP,
	})
	observability.LifecycleTransitions().WithLabelValues("video", "submit_review").Inc()

	return s.refresh(ctx, id)
}

func (s *videoService) Audit(ctx context.Context, principal authz.Principal, id uint, req dto.VideoAuditRequest) (dto.VideoResponse, error) {
	if !authz.Can(principal.Role, authz.CapVideoAudit) {
		return dto.VideoResponse{}, ErrRoleNotAllowed
	}
	if !req.Pass && strings.TrimSpace(req.Reason) == "" {
		return dto.VideoResponse{}, ErrReasonRequired
	}

	scope, err := s.adminScope(ctx, principal)
	if err != nil {
		return dto.VideoResponse{}, err
	}

	updates := map[string]interface{}{
		"status":        models.VideoStatusPublished,
		"reject_reason": nil,
	}
	action := models.AuditActionReviewPass
	if !req.Pass {
		updates["status"] = models.VideoStatusRejected
		updates["reject_reason"] = strings.TrimSpace(req.Reason)
		action = models.AuditActionReviewReject
	}

	affected, err := s.videos.TransitionWhere(ctx, id, []string{models.VideoStatusReview}, scope, updates)
	if err != nil {
		return dto.VideoResponse{}, err
	}
	if affected == 0 {
		return dto.VideoResponse{}, s.disambiguate(ctx, id, scope)
	}

	s.audit.Record(ctx, AuditEntry{
		OperatorID: principal.UserID,
		Action:     action,
		TargetID:   strconv.FormatUint(uint64(id), 10),
		TargetType: "Video",
		Detail:     strings.TrimSpace(req.Reason),
		ClientIP:   principal.ClientIP,
	})
	observability.LifecycleTransitions().WithLabelValues("video", strings.ToLower(action)).Inc()

	return s.refresh(ctx, id)
}

// BatchAudit applies the same decision per id, collecting per-item outcomes
// instead of aborting the batch on the first failure.
func (s *videoService) BatchAudit(ctx context.Context, principal authz.Principal, req dto.VideoBatchAuditRequest) (dto.VideoBatchAuditResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.VideoBatchAuditResponse{}, err
	}

	items := make([]dto.VideoBatchAuditItem, 0, len(req.IDs))
	for _, id := range req.IDs {
		_, err := s.Audit(ctx, principal, id, dto.VideoAuditRequest{Pass: req.Pass, Reason: req.Reason})
		item := dto.VideoBatchAuditItem{ID: id, Success: err == nil}
		if err != nil {
			item.Message = err.Error()
		}
		items = append(items, item)
	}
	return dto.VideoBatchAuditResponse{Items: items}, nil
}

func (s *videoService) Offline(ctx context.Context, principal authz.Principal, id uint, req dto.VideoOfflineRequest) (dto.VideoResponse, error) {
	if !authz.Can(principal.Role, authz.CapVideoOffline) {
		return dto.VideoResponse{}, ErrRoleNotAllowed
	}

	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoResponse{}, ErrVideoNotFound
		}
		return dto.VideoResponse{}, err
	}

	var scope *uint
	if authz.IsAdmin(principal.Role) {
		if strings.TrimSpace(req.Reason) == "" {
			return dto.VideoResponse{}, ErrReasonRequired
		}
		scope, err = s.adminScope(ctx, principal)
		if err != nil {
			return dto.VideoResponse{}, err
		}
	} else if video.UploaderID != principal.UserID {
		return dto.VideoResponse{}, ErrNotOwner
	}

	if video.Status != models.VideoStatusPublished {
		return dto.VideoResponse{}, fmt.Errorf("%w: cannot take %s video offline", ErrInvalidTransition, video.Status)
	}

	affected, err := s.videos.TransitionWhere(ctx, id, []string{models.VideoStatusPublished}, scope,
		map[string]interface{}{"status": models.VideoStatusOffline})
	if err != nil {
		return dto.VideoResponse{}, err
	}
	if affected == 0 {
		return dto.VideoResponse{}, s.disambiguate(ctx, id, scope)
	}

	s.audit.Record(ctx, AuditEntry{
		OperatorID: principal.UserID,
		Action:     models.AuditActionOffline,
		TargetID:   strconv.FormatUint(uint64(id), 10),
		TargetType: "Video",
		Detail:     strings.TrimSpace(req.Reason),
		ClientIP:   principal.ClientIP,
	})
	observability.LifecycleTransitions().WithLabelValues("video", "offline").Inc()

	return s.refresh(ctx, id)
}

func (s *videoService) Get(ctx context.Context, principal authz.Principal, id uint) (dto.VideoResponse, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoResponse{}, ErrVideoNotFound
		}
		return dto.VideoResponse{}, err
	}
	if !s.visible(ctx, principal, video) {
		return dto.VideoResponse{}, ErrVideoNotFound
	}
	return dto.NewVideoResponse(video), nil
}

func (s *videoService) List(ctx context.Context, principal authz.Principal, req dto.VideoListRequest) (dto.VideoListResponse, error) {
	page := maxInt(req.Page, 1)
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := repository.VideoFilter{
		Status:      req.Status,
		TitleSearch: strings.TrimSpace(req.Title),
		Page:        page,
		PageSize:    pageSize,
	}
	if req.CollegeID > 0 {
		collegeID := req.CollegeID
		filter.CollegeID = &collegeID
	}
	if req.UploaderID > 0 {
		uploaderID := req.UploaderID
		filter.UploaderID = &uploaderID
	}

	publicView := false
	switch principal.Role {
	case models.RolePlatformAdmin:
		// Unrestricted.
	case models.RoleCollegeAdmin:
		scope, err := s.adminScope(ctx, principal)
		if err != nil {
			return dto.VideoListResponse{}, err
		}
		filter.CollegeID = scope
	case models.RoleVolunteer:
		// Volunteers see published content plus their own uploads; when
		// they filter on themselves all statuses are visible, otherwise
		// only published.
		if filter.UploaderID == nil || *filter.UploaderID != principal.UserID {
			filter.VisibleStatuses = []string{models.VideoStatusPublished}
		}
	default:
		filter.VisibleStatuses = []string{models.VideoStatusPublished}
		publicView = true
	}

	cacheKey := ""
	if publicView && s.cache != nil {
		cacheKey = fmt.Sprintf("videos:published:v1:%d:%d:%s:%d", page, pageSize, filter.TitleSearch, req.CollegeID)
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.VideoListResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.CacheHit = true
				return response, nil
			}
		}
	}

	items, total, err := s.videos.List(ctx, filter)
	if err != nil {
		return dto.VideoListResponse{}, err
	}

	responses := make([]dto.VideoResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.NewVideoResponse(item))
	}

	response := dto.VideoListResponse{
		Items: responses,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}

	if cacheKey != "" {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache published video list")
			}
		}
	}

	return response, nil
}

// visible applies the viewer-scoped visibility invariant at read time.
func (s *videoService) visible(ctx context.Context, principal authz.Principal, video models.Video) bool {
	switch principal.Role {
	case models.RolePlatformAdmin:
		return true
	case models.RoleCollegeAdmin:
		scope, err := s.adminScope(ctx, principal)
		if err != nil || scope == nil {
			return false
		}
		return *scope == video.CollegeID
	case models.RoleVolunteer:
		return video.Status == models.VideoStatusPublished || video.UploaderID == principal.UserID
	default:
		return video.Status == models.VideoStatusPublished
	}
}

// adminScope resolves the college restriction for the acting admin: nil for
// platform admins, the admin's college otherwise.
func (s *videoService) adminScope(ctx context.Context, principal authz.Principal) (*uint, error) {
	if principal.Role == models.RolePlatformAdmin {
		return nil, nil
	}
	profile, err := s.users.FindAdminByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScopeMismatch
		}
		return nil, err
	}
	if profile.CollegeID == nil {
		return nil, ErrScopeMismatch
	}
	return profile.CollegeID, nil
}

// disambiguate explains a zero-row conditional update: missing row, a
// cross-college attempt, or a lost race.
func (s *videoService) disambiguate(ctx context.Context, id uint, scope *uint) error {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNotFound
		}
		return err
	}
	if scope != nil && video.CollegeID != *scope {
		return ErrScopeMismatch
	}
	return &StateConflictError{Current: video.Status}
}

func (s *videoService) conflictFor(ctx context.Context, id uint) error {
	return s.disambiguate(ctx, id, nil)
}

func (s *videoService) refresh(ctx context.Context, id uint) (dto.VideoResponse, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return dto.VideoResponse{}, err
	}
	return dto.NewVideoResponse(video), nil
}
