package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/observability"
	"github.com/seva-edu/seva-go-api/internal/repository"
)

var (
	// ErrLiveNotFound indicates the referenced live room does not exist.
	ErrLiveNotFound = errors.New("live room not found")
	// ErrPlanWindow rejects a schedule whose end does not follow its start.
	ErrPlanWindow = errors.New("plan end time must be after plan start time")
)

// liveOfflineSources are the states a room can be taken offline from.
var liveOfflineSources = []string{
	models.LiveStatusPassed,
	models.LiveStatusPublished,
	models.LiveStatusLiving,
	models.LiveStatusFinished,
}

// LiveService drives the live room lifecycle state machine.
type LiveService interface {
	CreateDraft(ctx context.Context, principal authz.Principal, req dto.LiveCreateRequest) (dto.LiveResponse, error)
	SubmitReview(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error)
	Audit(ctx context.Context, principal authz.Principal, id uint, req dto.LiveAuditRequest) (dto.LiveResponse, error)
	Publish(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error)
	Start(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error)
	Finish(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error)
	Offline(ctx context.Context, principal authz.Principal, id uint, req dto.LiveOfflineRequest) (dto.LiveResponse, error)
	Get(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error)
	List(ctx context.Context, principal authz.Principal, req dto.LiveListRequest) (dto.LiveListResponse, error)
}

type liveService struct {
	rooms     repository.LiveRepository
	users     repository.UserRepository
	validator *validator.Validate
	audit     AuditRecorder
	streamFmt StreamURLBuilder
	logger    zerolog.Logger
}

// StreamURLBuilder derives push and pull URLs from a stream key. The media
// server integration itself lives outside this service.
type StreamURLBuilder func(streamKey string) (pushURL, pullURL string)

// DefaultStreamURLs builds RTMP push / HLS pull URLs on the given host.
func DefaultStreamURLs(host string) StreamURLBuilder {
	return func(streamKey string) (string, string) {
		return fmt.Sprintf("rtmp://%s/live/%s", host, streamKey),
			fmt.Sprintf("https://%s/live/%s.m3u8", host, streamKey)
	}
}

// NewLiveService constructs the live room lifecycle engine.
func NewLiveService(rooms repository.LiveRepository, users repository.UserRepository, validate *validator.Validate, audit AuditRecorder, streamFmt StreamURLBuilder, logger zerolog.Logger) LiveService {
	if streamFmt == nil {
		streamFmt = DefaultStreamURLs("stream.seva.local")
	}
	return &liveService{
		rooms:     rooms,
		users:     users,
		validator: validate,
		audit:     audit,
		streamFmt: streamFmt,
		logger:    logger.With().Str("component", "live_service").Logger(),
	}
}

func (s *liveService) CreateDraft(ctx context.Context, principal authz.Principal, req dto.LiveCreateRequest) (dto.LiveResponse, error) {
	if !authz.Can(principal.Role, authz.CapLiveCreate) {
		return dto.LiveResponse{}, ErrRoleNotAllowed
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.LiveResponse{}, err
	}
	if !req.PlanEndTime.After(req.PlanStartTime) {
		return dto.LiveResponse{}, ErrPlanWindow
	}

	profile, err := s.users.FindVolunteerByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LiveResponse{}, ErrNoCollege
		}
		return dto.LiveResponse{}, err
	}
	if profile.CollegeID == 0 {
		return dto.LiveResponse{}, ErrNoCollege
	}

	room := models.LiveRoom{
		Title:         strings.TrimSpace(req.Title),
		Intro:         req.Intro,
		PlanStartTime: req.PlanStartTime,
		PlanEndTime:   req.PlanEndTime,
		Status:        models.LiveStatusDraft,
		AnchorID:      principal.UserID,
		CollegeID:     profile.CollegeID,
	}
	if err := s.rooms.Create(ctx, &room); err != nil {
		return dto.LiveResponse{}, err
	}

	s.recordAudit(ctx, principal, models.AuditActionCreate, room.ID, "live room draft created")
	observability.LifecycleTransitions().WithLabelValues("live_room", "create").Inc()

	return dto.NewLiveResponse(room, true), nil
}

func (s *liveService) SubmitReview(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error) {
	room, err := s.findRoom(ctx, id)
	if err != nil {
		return dto.LiveResponse{}, err
	}
	if room.AnchorID != principal.UserID {
		return dto.LiveResponse{}, ErrNotOwner
	}
	if room.Status != models.LiveStatusDraft && room.Status != models.LiveStatusRejected {
		return dto.LiveResponse{}, fmt.Errorf("%w: cannot submit from %s", ErrInvalidTransition, room.Status)
	}

	affected, err := s.rooms.TransitionWhere(ctx, id,
		[]string{models.LiveStatusDraft, models.LiveStatusRejected}, nil,
		map[string]interface{}{"status": models.LiveStatusReview, "reject_reason": nil})
	if err != nil {
		return dto.LiveResponse{}, err
	}
	if affected == 0 {
		return dto.LiveResponse{}, s.disambiguate(ctx, id, nil)
	}

	s.recordAudit(ctx, principal, models.AuditActionUpdate, id, "submitted for review")
	observability.LifecycleTransitions().WithLabelValues("live_room", "submit_review").Inc()

	return s.refresh(ctx, id, principal)
}

// Audit passes or rejects a room under review. Only college admins hold the
// live audit capability; the platform admin is excluded from this transition
// on purpose. The conditional update matches {id, REVIEW, admin college} in
// a single statement, so of two racing audits exactly one wins and the other
// observes a conflict.
func (s *liveService) Audit(ctx context.Context, principal authz.Principal, id uint, req dto.LiveAuditRequest) (dto.LiveResponse, error) {
	if !authz.Can(principal.Role, authz.CapLiveAudit) {
		return dto.LiveResponse{}, ErrRoleNotAllowed
	}
	if !req.Pass && strings.TrimSpace(req.Reason) == "" {
		return dto.LiveResponse{}, ErrReasonRequired
	}

	profile, err := s.users.FindAdminByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LiveResponse{}, ErrScopeMismatch
		}
		return dto.LiveResponse{}, err
	}
	if profile.CollegeID == nil {
		return dto.LiveResponse{}, ErrScopeMismatch
	}

	updates := map[string]interface{}{
		"status":        models.LiveStatusPassed,
		"reject_reason": nil,
	}
	action := models.AuditActionReviewPass
	if !req.Pass {
		updates["status"] = models.LiveStatusRejected
		updates["reject_reason"] = strings.TrimSpace(req.Reason)
		action = models.AuditActionReviewReject
	}

	affected, err := s.rooms.TransitionWhere(ctx, id, []string{models.LiveStatusReview}, profile.CollegeID, updates)
	if err != nil {
		return dto.LiveResponse{}, err
	}
	if affected == 0 {
		return dto.LiveResponse{}, s.disambiguate(ctx, id, profile.CollegeID)
	}

	s.recordAudit(ctx, principal, action, id, strings.TrimSpace(req.Reason))
	observability.LifecycleTransitions().WithLabelValues("live_room", strings.ToLower(action)).Inc()

	return s.refresh(ctx, id, principal)
}

// Publish lists a passed room before broadcast starts.
func (s *liveService) Publish(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error) {
	return s.anchorTransition(ctx, principal, id, authz.CapLivePublish,
		[]string{models.LiveStatusPassed},
		map[string]interface{}{"status": models.LiveStatusPublished},
		models.AuditActionPublish, "publish")
}

// Start moves a passed or published room into broadcast, stamping the actual
// start and minting fresh stream URLs.
func (s *liveService) Start(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error) {
	pushURL, pullURL := s.streamFmt(uuid.NewString())
	now := time.Now()
	return s.anchorTransition(ctx, principal, id, authz.CapLiveStart,
		[]string{models.LiveStatusPassed, models.LiveStatusPublished},
		map[string]interface{}{
			"status":       models.LiveStatusLiving,
			"actual_start": now,
			"push_url":     pushURL,
			"pull_url":     pullURL,
		},
		models.AuditActionUpdate, "start")
}

// Finish ends a broadcast.
func (s *liveService) Finish(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error) {
	now := time.Now()
	return s.anchorTransition(ctx, principal, id, authz.CapLiveFinish,
		[]string{models.LiveStatusLiving},
		map[string]interface{}{"status": models.LiveStatusFinished, "actual_end": now},
		models.AuditActionUpdate, "finish")
}

func (s *liveService) Offline(ctx context.Context, principal authz.Principal, id uint, req dto.LiveOfflineRequest) (dto.LiveResponse, error) {
	if !authz.Can(principal.Role, authz.CapLiveOffline) {
		return dto.LiveResponse{}, ErrRoleNotAllowed
	}

	room, err := s.findRoom(ctx, id)
	if err != nil {
		return dto.LiveResponse{}, err
	}

	var scope *uint
	if authz.IsAdmin(principal.Role) {
		if strings.TrimSpace(req.Reason) == "" {
			return dto.LiveResponse{}, ErrReasonRequired
		}
		if principal.Role == models.RoleCollegeAdmin {
			profile, err := s.users.FindAdminByUserID(ctx, principal.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return dto.LiveResponse{}, ErrScopeMismatch
				}
				return dto.LiveResponse{}, err
			}
			if profile.CollegeID == nil {
				return dto.LiveResponse{}, ErrScopeMismatch
			}
			scope = profile.CollegeID
		}
	} else if room.AnchorID != principal.UserID {
		return dto.LiveResponse{}, ErrNotOwner
	}

	if !contains(liveOfflineSources, room.Status) {
		return dto.LiveResponse{}, fmt.Errorf("%w: cannot take %s room offline", ErrInvalidTransition, room.Status)
	}

	affected, err := s.rooms.TransitionWhere(ctx, id, liveOfflineSources, scope,
		map[string]interface{}{"status": models.LiveStatusOffline})
	if err != nil {
		return dto.LiveResponse{}, err
	}
	if affected == 0 {
		return dto.LiveResponse{}, s.disambiguate(ctx, id, scope)
	}

	s.recordAudit(ctx, principal, models.AuditActionOffline, id, strings.TrimSpace(req.Reason))
	observability.LifecycleTransitions().WithLabelValues("live_room", "offline").Inc()

	return s.refresh(ctx, id, principal)
}

func (s *liveService) Get(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error) {
	room, err := s.findRoom(ctx, id)
	if err != nil {
		return dto.LiveResponse{}, err
	}
	if !s.visible(ctx, principal, room) {
		return dto.LiveResponse{}, ErrLiveNotFound
	}
	return dto.NewLiveResponse(room, room.AnchorID == principal.UserID), nil
}

func (s *liveService) List(ctx context.Context, principal authz.Principal, req dto.LiveListRequest) (dto.LiveListResponse, error) {
	page := maxInt(req.Page, 1)
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := repository.LiveFilter{
		Status:      req.Status,
		TitleSearch: strings.TrimSpace(req.Title),
		Page:        page,
		PageSize:    pageSize,
	}
	if req.CollegeID > 0 {
		collegeID := req.CollegeID
		filter.CollegeID = &collegeID
	}
	if req.AnchorID > 0 {
		anchorID := req.AnchorID
		filter.AnchorID = &anchorID
	}

	switch principal.Role {
	case models.RolePlatformAdmin:
		// Unrestricted.
	case models.RoleCollegeAdmin:
		profile, err := s.users.FindAdminByUserID(ctx, principal.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.LiveListResponse{}, ErrScopeMismatch
			}
			return dto.LiveListResponse{}, err
		}
		if profile.CollegeID == nil {
			return dto.LiveListResponse{}, ErrScopeMismatch
		}
		filter.CollegeID = profile.CollegeID
	case models.RoleVolunteer:
		if filter.AnchorID == nil || *filter.AnchorID != principal.UserID {
			filter.VisibleStatuses = publicLiveStatuses()
		}
	default:
		filter.VisibleStatuses = publicLiveStatuses()
	}

	items, total, err := s.rooms.List(ctx, filter)
	if err != nil {
		return dto.LiveListResponse{}, err
	}

	responses := make([]dto.LiveResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.NewLiveResponse(item, item.AnchorID == principal.UserID))
	}

	return dto.LiveListResponse{
		Items: responses,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}, nil
}

// anchorTransition is the shared shape of the owner-driven transitions:
// capability check, ownership check, predecessor check, conditional update,
// audit entry.
func (s *liveService) anchorTransition(ctx context.Context, principal authz.Principal, id uint, capability authz.Capability, fromStatuses []string, updates map[string]interface{}, auditAction, transition string) (dto.LiveResponse, error) {
	if !authz.Can(principal.Role, capability) {
		return dto.LiveResponse{}, ErrRoleNotAllowed
	}

	room, err := s.findRoom(ctx, id)
	if err != nil {
		return dto.LiveResponse{}, err
	}
	if room.AnchorID != principal.UserID {
		return dto.LiveResponse{}, ErrNotOwner
	}
	if !contains(fromStatuses, room.Status) {
		return dto.LiveResponse{}, fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, transition, room.Status)
	}

	affected, err := s.rooms.TransitionWhere(ctx, id, fromStatuses, nil, updates)
	if err != nil {
		return dto.LiveResponse{}, err
	}
	if affected == 0 {
		return dto.LiveResponse{}, s.disambiguate(ctx, id, nil)
	}

	s.recordAudit(ctx, principal, auditAction, id, transition)
	observability.LifecycleTransitions().WithLabelValues("live_room", transition).Inc()

	return s.refresh(ctx, id, principal)
}

func (s *liveService) visible(ctx context.Context, principal authz.Principal, room models.LiveRoom) bool {
	switch principal.Role {
	case models.RolePlatformAdmin:
		return true
	case models.RoleCollegeAdmin:
		profile, err := s.users.FindAdminByUserID(ctx, principal.UserID)
		if err != nil || profile.CollegeID == nil {
			return false
		}
		return *profile.CollegeID == room.CollegeID
	case models.RoleVolunteer:
		return room.AnchorID == principal.UserID || contains(publicLiveStatuses(), room.Status)
	default:
		return contains(publicLiveStatuses(), room.Status)
	}
}

func publicLiveStatuses() []string {
	return []string{models.LiveStatusPublished, models.LiveStatusLiving, models.LiveStatusFinished}
}

func (s *liveService) findRoom(ctx context.Context, id uint) (models.LiveRoom, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LiveRoom{}, ErrLiveNotFound
		}
		return models.LiveRoom{}, err
	}
	return room, nil
}

func (s *liveService) disambiguate(ctx context.Context, id uint, scope *uint) error {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLiveNotFound
		}
		return err
	}
	if scope != nil && room.CollegeID != *scope {
		return ErrScopeMismatch
	}
	return &StateConflictError{Current: room.Status}
}

func (s *liveService) refresh(ctx context.Context, id uint, principal authz.Principal) (dto.LiveResponse, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return dto.LiveResponse{}, err
	}
	return dto.NewLiveResponse(room, room.AnchorID == principal.UserID), nil
}

func (s *liveService) recordAudit(ctx context.Context, principal authz.Principal, action string, id uint, detail string) {
	s.audit.Record(ctx, AuditEntry{
		OperatorID: principal.UserID,
		Action:     action,
		TargetID:   strconv.FormatUint(uint64(id), 10),
		TargetType: "LiveRoom",
		Detail:     detail,
		ClientIP:   principal.ClientIP,
	})
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
