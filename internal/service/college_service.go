package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/repository"
)

// ErrDuplicateCollege indicates the college name is already taken.
var ErrDuplicateCollege = errors.New("college name already exists")

// CollegeService lists and registers colleges. No state machine here; the
// rows only delimit admin scope.
type CollegeService interface {
	List(ctx context.Context) ([]dto.CollegeResponse, error)
	Create(ctx context.Context, principal authz.Principal, req dto.CollegeCreateRequest) (dto.CollegeResponse, error)
}

type collegeService struct {
	repo      repository.CollegeRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewCollegeService constructs the college service.
func NewCollegeService(repo repository.CollegeRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) CollegeService {
	return &collegeService{
		repo:      repo,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "college_service").Logger(),
	}
}

func (s *collegeService) List(ctx context.Context) ([]dto.CollegeResponse, error) {
	colleges, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.CollegeResponse, 0, len(colleges))
	for _, college := range colleges {
		responses = append(responses, dto.NewCollegeResponse(college))
	}
	return responses, nil
}

func (s *collegeService) Create(ctx context.Context, principal authz.Principal, req dto.CollegeCreateRequest) (dto.CollegeResponse, error) {
	if !authz.Can(principal.Role, authz.CapCollegeAdmin) {
		return dto.CollegeResponse{}, ErrRoleNotAllowed
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.CollegeResponse{}, err
	}

	college := models.College{
		Name:      strings.TrimSpace(req.Name),
		IsActive:  true,
		SortOrder: req.SortOrder,
	}
	if err := s.repo.Create(ctx, &college); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.CollegeResponse{}, ErrDuplicateCollege
		}
		return dto.CollegeResponse{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		OperatorID: principal.UserID,
		Action:     models.AuditActionCreate,
		TargetID:   college.Name,
		TargetType: "College",
		ClientIP:   principal.ClientIP,
	})

	return dto.NewCollegeResponse(college), nil
}
