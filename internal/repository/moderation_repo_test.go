package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/models"
)

func TestVideoTransitionWhereMatchesStatusAndCollege(t *testing.T) {
	db := setupModerationTestDB(t, &models.Video{})
	repo := NewVideoRepository(db)

	video := models.Video{Title: "Fractions", URL: "https://cdn.seva.local/v1.mp4", Status: models.VideoStatusReview, UploaderID: 10, CollegeID: 1}
	require.NoError(t, db.Create(&video).Error)

	collegeID := uint(1)
	affected, err := repo.TransitionWhere(context.Background(), video.ID, []string{models.VideoStatusReview}, &collegeID, map[string]interface{}{"status": models.VideoStatusPublished})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	var stored models.Video
	require.NoError(t, db.First(&stored, video.ID).Error)
	require.Equal(t, models.VideoStatusPublished, stored.Status)
}

func TestVideoTransitionWhereReturnsZeroOnStatusMismatch(t *testing.T) {
	db := setupModerationTestDB(t, &models.Video{})
	repo := NewVideoRepository(db)

	video := models.Video{Title: "Algebra", URL: "https://cdn.seva.local/v2.mp4", Status: models.VideoStatusDraft, UploaderID: 10, CollegeID: 1}
	require.NoError(t, db.Create(&video).Error)

	affected, err := repo.TransitionWhere(context.Background(), video.ID, []string{models.VideoStatusReview}, nil, map[string]interface{}{"status": models.VideoStatusPublished})
	require.NoError(t, err)
	require.Zero(t, affected)

	var stored models.Video
	require.NoError(t, db.First(&stored, video.ID).Error)
	require.Equal(t, models.VideoStatusDraft, stored.Status, "row is untouched when the status guard misses")
}

func TestVideoTransitionWhereReturnsZeroOnCollegeMismatch(t *testing.T) {
	db := setupModerationTestDB(t, &models.Video{})
	repo := NewVideoRepository(db)

	video := models.Video{Title: "Geometry", URL: "https://cdn.seva.local/v3.mp4", Status: models.VideoStatusReview, UploaderID: 10, CollegeID: 1}
	require.NoError(t, db.Create(&video).Error)

	otherCollege := uint(2)
	affected, err := repo.TransitionWhere(context.Background(), video.ID, []string{models.VideoStatusReview}, &otherCollege, map[string]interface{}{"status": models.VideoStatusPublished})
	require.NoError(t, err)
	require.Zero(t, affected)
}

func TestVideoTransitionWhereFirstWriterWins(t *testing.T) {
	db := setupModerationTestDB(t, &models.Video{})
	repo := NewVideoRepository(db)

	video := models.Video{Title: "Physics", URL: "https://cdn.seva.local/v4.mp4", Status: models.VideoStatusReview, UploaderID: 10, CollegeID: 1}
	require.NoError(t, db.Create(&video).Error)

	first, err := repo.TransitionWhere(context.Background(), video.ID, []string{models.VideoStatusReview}, nil, map[string]interface{}{"status": models.VideoStatusPublished})
	require.NoError(t, err)
	require.Equal(t, int64(1), first)

	second, err := repo.TransitionWhere(context.Background(), video.ID, []string{models.VideoStatusReview}, nil, map[string]interface{}{"status": models.VideoStatusRejected, "reject_reason": "late"})
	require.NoError(t, err)
	require.Zero(t, second, "losing writer must observe zero affected rows")

	var stored models.Video
	require.NoError(t, db.First(&stored, video.ID).Error)
	require.Equal(t, models.VideoStatusPublished, stored.Status)
	require.Nil(t, stored.RejectReason)
}

func TestVideoListFiltersByVisibleStatuses(t *testing.T) {
	db := setupModerationTestDB(t, &models.Video{})
	repo := NewVideoRepository(db)

	published := models.Video{Title: "Published", URL: "u1", Status: models.VideoStatusPublished, UploaderID: 10, CollegeID: 1}
	draft := models.Video{Title: "Draft", URL: "u2", Status: models.VideoStatusDraft, UploaderID: 10, CollegeID: 1}
	require.NoError(t, db.Create(&published).Error)
	require.NoError(t, db.Create(&draft).Error)

	items, total, err := repo.List(context.Background(), VideoFilter{VisibleStatuses: []string{models.VideoStatusPublished}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	require.Equal(t, "Published", items[0].Title)
}

func TestLiveTransitionWhereAppliesStreamColumns(t *testing.T) {
	db := setupModerationTestDB(t, &models.LiveRoom{})
	repo := NewLiveRepository(db)

	room := models.LiveRoom{
		Title:         "Evening QA",
		PlanStartTime: time.Now().Add(time.Hour),
		PlanEndTime:   time.Now().Add(2 * time.Hour),
		Status:        models.LiveStatusPublished,
		AnchorID:      10,
		CollegeID:     1,
	}
	require.NoError(t, db.Create(&room).Error)

	now := time.Now()
	affected, err := repo.TransitionWhere(context.Background(), room.ID, []string{models.LiveStatusPublished}, nil, map[string]interface{}{
		"status":       models.LiveStatusLiving,
		"push_url":     "rtmp://stream.seva.local/live/abc",
		"pull_url":     "https://stream.seva.local/live/abc.m3u8",
		"actual_start": now,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	var stored models.LiveRoom
	require.NoError(t, db.First(&stored, room.ID).Error)
	require.Equal(t, models.LiveStatusLiving, stored.Status)
	require.NotEmpty(t, stored.PushURL)
	require.NotNil(t, stored.ActualStart)
}

func TestPolicyRepositoryGetOrCreateIsSingleton(t *testing.T) {
	db := setupModerationTestDB(t, &models.ContentPolicy{})
	repo := NewPolicyRepository(db)

	first, err := repo.GetOrCreate(context.Background())
	require.NoError(t, err)
	require.True(t, first.CommentsEnabled)
	require.True(t, first.LiveChatEnabled)
	require.Equal(t, models.ModerationActionReject, first.ModerationAction)

	second, err := repo.GetOrCreate(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.ContentPolicy{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPolicyRepositorySlotBlocksSecondRow(t *testing.T) {
	db := setupModerationTestDB(t, &models.ContentPolicy{})
	repo := NewPolicyRepository(db)

	first, err := repo.GetOrCreate(context.Background())
	require.NoError(t, err)

	// A racing cold-start writer that misses the initial read would attempt
	// this insert; the unique slot index must refuse it.
	rival := models.ContentPolicy{Slot: models.PolicySlot, ModerationAction: models.ModerationActionMask}
	require.ErrorIs(t, db.Create(&rival).Error, gorm.ErrDuplicatedKey)

	again, err := repo.GetOrCreate(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.ContentPolicy{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPolicyRepositoryUpdateRefreshesRow(t *testing.T) {
	db := setupModerationTestDB(t, &models.ContentPolicy{})
	repo := NewPolicyRepository(db)

	updated, err := repo.Update(context.Background(), map[string]interface{}{
		"comments_enabled":  false,
		"moderation_action": models.ModerationActionMask,
	})
	require.NoError(t, err)
	require.False(t, updated.CommentsEnabled)
	require.True(t, updated.LiveChatEnabled)
	require.Equal(t, models.ModerationActionMask, updated.ModerationAction)
}

func TestSensitiveWordRepositoryRejectsDuplicates(t *testing.T) {
	db := setupModerationTestDB(t, &models.SensitiveWord{})
	repo := NewSensitiveWordRepository(db)

	word := models.SensitiveWord{Word: "spoiler", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), &word))

	dup := models.SensitiveWord{Word: "spoiler", IsActive: true}
	err := repo.Create(context.Background(), &dup)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSensitiveWordRepositoryDeleteAndToggleReportAffectedRows(t *testing.T) {
	db := setupModerationTestDB(t, &models.SensitiveWord{})
	repo := NewSensitiveWordRepository(db)

	word := models.SensitiveWord{Word: "banned", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), &word))

	affected, err := repo.SetActive(context.Background(), word.ID, false)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Empty(t, active)

	affected, err = repo.Delete(context.Background(), word.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	affected, err = repo.Delete(context.Background(), word.ID)
	require.NoError(t, err)
	require.Zero(t, affected, "missing rows report zero so the caller can map not-found")
}

func TestAuditLogRepositoryListFilters(t *testing.T) {
	db := setupModerationTestDB(t, &models.AuditLog{})
	repo := NewAuditLogRepository(db)

	entries := []models.AuditLog{
		{OperatorID: 20, Action: models.AuditActionReviewPass, TargetID: "1", TargetType: "Video"},
		{OperatorID: 20, Action: models.AuditActionOffline, TargetID: "1", TargetType: "Video"},
		{OperatorID: 30, Action: models.AuditActionReviewPass, TargetID: "2", TargetType: "LiveRoom"},
	}
	for i := range entries {
		require.NoError(t, repo.Create(context.Background(), &entries[i]))
	}

	operator := uint(20)
	items, total, err := repo.List(context.Background(), AuditLogFilter{Action: models.AuditActionReviewPass, OperatorID: &operator})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	require.Equal(t, "Video", items[0].TargetType)

	items, total, err = repo.List(context.Background(), AuditLogFilter{TargetType: "LiveRoom"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, uint(30), items[0].OperatorID)
}

func TestCommentRepositoryListLiveMessagesFiltersKind(t *testing.T) {
	db := setupModerationTestDB(t, &models.LiveMessage{})
	repo := NewCommentRepository(db)

	chat := models.LiveMessage{RoomID: 5, AuthorID: 1, Kind: models.LiveMessageChat, Content: "hello"}
	question := models.LiveMessage{RoomID: 5, AuthorID: 2, Kind: models.LiveMessageQA, Content: "when is class"}
	require.NoError(t, repo.CreateLiveMessage(context.Background(), &chat))
	require.NoError(t, repo.CreateLiveMessage(context.Background(), &question))

	messages, total, err := repo.ListLiveMessages(context.Background(), 5, models.LiveMessageQA, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, messages, 1)
	require.Equal(t, "when is class", messages[0].Content)

	all, total, err := repo.ListLiveMessages(context.Background(), 5, "", 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, all, 2)
}

// Each test gets its own in-memory database so affected-row and count
// assertions cannot leak across cases.
func setupModerationTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models...))
	return db
}
