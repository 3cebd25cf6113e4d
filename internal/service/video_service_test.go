package service

import (
	"context"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/repository"
)

type userRepoStub struct {
	volunteers map[uint]models.VolunteerProfile
	admins     map[uint]models.AdminProfile
}

func (u *userRepoStub) FindByID(ctx context.Context, id uint) (models.User, error) {
	return models.User{ID: id}, nil
}

func (u *userRepoStub) FindVolunteerByUserID(ctx context.Context, userID uint) (models.VolunteerProfile, error) {
	profile, ok := u.volunteers[userID]
	if !ok {
		return models.VolunteerProfile{}, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (u *userRepoStub) FindAdminByUserID(ctx context.Context, userID uint) (models.AdminProfile, error) {
	profile, ok := u.admins[userID]
	if !ok {
		return models.AdminProfile{}, gorm.ErrRecordNotFound
	}
	return profile, nil
}

type auditRecorderStub struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (a *auditRecorderStub) Record(ctx context.Context, entry AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *auditRecorderStub) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	actions := make([]string, 0, len(a.entries))
	for _, entry := range a.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

// videoRepoFake keeps videos in a map and honours the conditional-update
// contract of TransitionWhere.
type videoRepoFake struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]models.Video
}

func newVideoRepoFake(videos ...models.Video) *videoRepoFake {
	f := &videoRepoFake{rows: make(map[uint]models.Video), nextID: 1}
	for _, v := range videos {
		if v.ID >= f.nextID {
			f.nextID = v.ID + 1
		}
		f.rows[v.ID] = v
	}
	return f
}

func (f *videoRepoFake) Create(ctx context.Context, video *models.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	video.ID = f.nextID
	f.nextID++
	f.rows[video.ID] = *video
	return nil
}

func (f *videoRepoFake) FindByID(ctx context.Context, id uint) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	video, ok := f.rows[id]
	if !ok {
		return models.Video{}, gorm.ErrRecordNotFound
	}
	return video, nil
}

func (f *videoRepoFake) List(ctx context.Context, filter repository.VideoFilter) ([]models.Video, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]models.Video, 0, len(f.rows))
	for _, video := range f.rows {
		if filter.Status != "" && video.Status != filter.Status {
			continue
		}
		if filter.CollegeID != nil && video.CollegeID != *filter.CollegeID {
			continue
		}
		if filter.UploaderID != nil && video.UploaderID != *filter.UploaderID {
			continue
		}
		if len(filter.VisibleStatuses) > 0 && !containsString(filter.VisibleStatuses, video.Status) {
			continue
		}
		items = append(items, video)
	}
	return items, int64(len(items)), nil
}

func (f *videoRepoFake) TransitionWhere(ctx context.Context, id uint, fromStatuses []string, collegeID *uint, updates map[string]interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	video, ok := f.rows[id]
	if !ok {
		return 0, nil
	}
	if !containsString(fromStatuses, video.Status) {
		return 0, nil
	}
	if collegeID != nil && video.CollegeID != *collegeID {
		return 0, nil
	}
	if status, ok := updates["status"]; ok {
		video.Status = status.(string)
	}
	if reason, ok := updates["reject_reason"]; ok {
		if reason == nil {
			video.RejectReason = nil
		} else {
			value := reason.(string)
			video.RejectReason = &value
		}
	}
	f.rows[id] = video
	return 1, nil
}

func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func videoTestService(repo *videoRepoFake, users *userRepoStub, audit *auditRecorderStub) VideoService {
	return NewVideoService(repo, users, nil, 0, validator.New(validator.WithRequiredStructEnabled()), audit, testLogger())
}

func volunteerPrincipal(id uint) authz.Principal {
	return authz.Principal{UserID: id, Role: models.RoleVolunteer, ClientIP: "10.0.0.1"}
}

func collegeAdminPrincipal(id uint) authz.Principal {
	return authz.Principal{UserID: id, Role: models.RoleCollegeAdmin, ClientIP: "10.0.0.2"}
}

func platformAdminPrincipal(id uint) authz.Principal {
	return authz.Principal{UserID: id, Role: models.RolePlatformAdmin, ClientIP: "10.0.0.3"}
}

func usersWithScopes() *userRepoStub {
	collegeOne := uint(1)
	return &userRepoStub{
		volunteers: map[uint]models.VolunteerProfile{
			10: {ID: 1, UserID: 10, CollegeID: 1},
		},
		admins: map[uint]models.AdminProfile{
			20: {ID: 1, UserID: 20, CollegeID: &collegeOne},
		},
	}
}

func TestVideoCreateResolvesVolunteerCollege(t *testing.T) {
	repo := newVideoRepoFake()
	audit := &auditRecorderStub{}
	svc := videoTestService(repo, usersWithScopes(), audit)

	video, err := svc.Create(context.Background(), volunteerPrincipal(10), dto.VideoCreateRequest{
		Title: "Algebra basics",
		URL:   "https://cdn.example.com/algebra.mp4",
	})
	require.NoError(t, err)
	require.Equal(t, models.VideoStatusDraft, video.Status)
	require.Equal(t, uint(1), video.CollegeID)
	require.Equal(t, []string{models.AuditActionCreate}, audit.actions())
}

func TestVideoCreateRequiresVolunteerRole(t *testing.T) {
	svc := videoTestService(newVideoRepoFake(), usersWithScopes(), &auditRecorderStub{})

	_, err := svc.Create(context.Background(), authz.Principal{UserID: 5, Role: models.RoleChild}, dto.VideoCreateRequest{
		Title: "t", URL: "https://x",
	})
	require.ErrorIs(t, err, ErrRoleNotAllowed)
}

func TestVideoSubmitClearsRejectReason(t *testing.T) {
	reason := "too blurry"
	repo := newVideoRepoFake(models.Video{
		ID: 1, Status: models.VideoStatusRejected, RejectReason: &reason, UploaderID: 10, CollegeID: 1,
	})
	svc := videoTestService(repo, usersWithScopes(), &auditRecorderStub{})

	video, err := svc.SubmitReview(context.Background(), volunteerPrincipal(10), 1)
	require.NoError(t, err)
	require.Equal(t, models.VideoStatusReview, video.Status)
	require.Nil(t, video.RejectReason)
}

func TestVideoSubmitOnlyByOwner(t *testing.T) {
	repo := newVideoRepoFake(models.Video{ID: 1, Status: models.VideoStatusDraft, UploaderID: 10, CollegeID: 1})
	svc := videoTestService(repo, usersWithScopes(), &auditRecorderStub{})

	_, err := svc.SubmitReview(context.Background(), volunteerPrincipal(11), 1)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestVideoSubmitInvalidFromPublished(t *testing.T) {
	repo := newVideoRepoFake(models.Video{ID: 1, Status: models.VideoStatusPublished, UploaderID: 10, CollegeID: 1})
	svc := videoTestService(repo, usersWithScopes(), &auditRecorderStub{})

	_, err := svc.SubmitReview(context.Background(), volunteerPrincipal(10), 1)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestVideoAuditPassPublishes(t *testing.T) {
	repo := newVideoRepoFake(models.Video{ID: 1, Status: models.VideoStatusReview, UploaderID: 10, CollegeID: 1})
	audit := &auditRecorderStub{}
	svc := videoTestService(repo, usersWithScopes(), audit)

	video, err := svc.Audit(context.Background(), collegeAdminPrincipal(20), 1, dto.VideoAuditRequest{Pass: true})
	require.NoError(t, err)
	require.Equal(t, models.VideoStatusPublished, video.Status)
	require.Equal(t, []string{models.AuditActionReviewPass}, audit.actions())
}

func TestVideoAuditFailRequiresReason(t *testing.T) {
	repo := newVideoRepoFake(models.Video{ID: 1, Status: models.VideoStatusReview, UploaderID: 10, CollegeID: 1})
	svc := videoTestService(repo, usersWithScopes(), &auditRecorderStub{})

	_, err := svc.Audit(context.Background(), collegeAdminPrincipal(20), 1, dto.VideoAuditRequest{Pass: false})
	require.ErrorIs(t, err, ErrReasonRequired)

	video, err := svc.Audit(context.Background(), collegeAdminPrincipal(20), 1, dto.VideoAuditRequest{Pass: false, Reason: "off topic"})
	require.NoError(t, err)
	require.Equal(t, models.VideoStatusRejected, video.Status)
	require.NotNil(t, video.RejectReason)
	require.Equal(t, "off topic", *video.RejectReason)
}

func TestVideoAuditOutsideCollegeScope(t *testing.T) {
	repo := newVideoRepoFake(models.Video{ID: 1, Status: models.VideoStatusReview, UploaderID: 10, CollegeID: 2})
	svc := videoTestService(repo, usersWithScopes(), &auditRecorderStub{})

	_, err := svc.Audit(context.Background(), collegeAdminPrincipal(20), 1, dto.VideoAuditRequest{Pass: true})
	require.ErrorIs(t, err, ErrScopeMismatch)
}

func TestVideoAuditLostRaceReportsCurrentStatus(t *testing.T) {
	repo := newVideoRepoFake(models.Video{ID: 1, Status: models.VideoStatusPublished, UploaderID: 10, CollegeID: 1})
	audit := &auditRecorderStub{}
	svc := videoTestService(repo, usersWithScopes(), audit)

	_, err := svc.Audit(context.Background(), collegeAdminPrincipal(20), 1, dto.VideoAuditRequest{Pass: true})

	var conflict *StateConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, models.VideoStatusPublished, conflict.Current)
	require.Empty(t, audit.actions(), "the losing audit must not be recorded")
}

func TestVideoAuditMissingVideo(t *testing.T) {
	svc := videoTestService(newVideoRepoFake(), usersWithScopes(), &auditRecorderStub{})

	_, err := svc.Audit(context.Background(), platformAdminPrincipal(30), 99, dto.VideoAuditRequest{Pass: true})
	require.ErrorIs(t, err, ErrVideoNotFound)
}

func TestVideoBatchAuditCollectsPerItemOutcomes(t *testing.T) {
	repo := newVideoRepoFake(
		models.Video{ID: 1, Status: models.VideoStatusReview, UploaderID: 10, CollegeID: 1},
		models.Video{ID: 2, Status: models.VideoStatusDraft, UploaderID: 10, CollegeID: 1},
	)
	svc := videoTestService(repo, usersWithScopes(), &auditRecorderStub{})

	result, err := svc.BatchAudit(context.Background(), collegeAdminPrincipal(20), dto.VideoBatchAuditRequest{
		IDs: []uint{1, 2, 99}, Pass: true,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	require.True(t, result.Items[0].Success)
	require.False(t, result.Items[1].Success, "draft video cannot be audited")
	require.False(t, result.Items[2].Success, "missing video fails its own item")
}

func TestVideoOfflineByAdminNeedsReason(t *testing.T) {
	repo := newVideoRepoFake(models.Video{ID: 1, Status: models.VideoStatusPublished, UploaderID: 10, CollegeID: 1})
	svc := videoTestService(repo, usersWithScopes(), &auditRecorderStub{})

	_, err := svc.Offline(context.Background(), collegeAdminPrincipal(20), 1, dto.VideoOfflineRequest{})
	require.ErrorIs(t, err, ErrReasonRequired)

	video, err := svc.Offline(context.Background(), collegeAdminPrincipal(20), 1, dto.VideoOfflineRequest{Reason: "copyright"})
	require.NoError(t, err)
	require.Equal(t, models.VideoStatusOffline, video.Status)
}

func TestVideoOfflineByOwnerWithoutReason(t *testing.T) {
	repo := newVideoRepoFake(models.Video{ID: 1, Status: models.VideoStatusPublished, UploaderID: 10, CollegeID: 1})
	svc := videoTestService(repo, usersWithScopes(), &auditRecorderStub{})

	video, err := svc.Offline(context.Background(), volunteerPrincipal(10), 1, dto.VideoOfflineRequest{})
	require.NoError(t, err)
	require.Equal(t, models.VideoStatusOffline, video.Status)
}

func TestVideoGetHidesDraftsFromPublic(t *testing.T) {
	repo := newVideoRepoFake(models.Video{ID: 1, Status: models.VideoStatusDraft, UploaderID: 10, CollegeID: 1})
	svc := videoTestService(repo, usersWithScopes(), &auditRecorderStub{})

	_, err := svc.Get(context.Background(), authz.Principal{UserID: 5, Role: models.RoleChild}, 1)
	require.ErrorIs(t, err, ErrVideoNotFound)

	own, err := svc.Get(context.Background(), volunteerPrincipal(10), 1)
	require.NoError(t, err)
	require.Equal(t, models.VideoStatusDraft, own.Status)
}

func TestVideoListPublicViewCachesInRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	repo := newVideoRepoFake(models.Video{ID: 1, Status: models.VideoStatusPublished, UploaderID: 10, CollegeID: 1})
	svc := NewVideoService(repo, usersWithScopes(), redisClient, 0, validator.New(validator.WithRequiredStructEnabled()), &auditRecorderStub{}, testLogger())

	public := authz.Principal{UserID: 5, Role: models.RoleChild}

	first, err := svc.List(context.Background(), public, dto.VideoListRequest{})
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Len(t, first.Items, 1)

	second, err := svc.List(context.Background(), public, dto.VideoListRequest{})
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Len(t, second.Items, 1)
}

func TestVideoListCollegeAdminScoped(t *testing.T) {
	repo := newVideoRepoFake(
		models.Video{ID: 1, Status: models.VideoStatusReview, UploaderID: 10, CollegeID: 1},
		models.Video{ID: 2, Status: models.VideoStatusReview, UploaderID: 11, CollegeID: 2},
	)
	svc := videoTestService(repo, usersWithScopes(), &auditRecorderStub{})

	result, err := svc.List(context.Background(), collegeAdminPrincipal(20), dto.VideoListRequest{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, uint(1), result.Items[0].CollegeID)
}
