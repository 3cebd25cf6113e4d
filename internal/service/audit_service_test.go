package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/repository"
)

type auditLogRepoStub struct {
	entries    []models.AuditLog
	createErr  error
	lastFilter repository.AuditLogFilter
}

func (a *auditLogRepoStub) Create(ctx context.Context, entry *models.AuditLog) error {
	if a.createErr != nil {
		return a.createErr
	}
	entry.ID = uint(len(a.entries) + 1)
	a.entries = append(a.entries, *entry)
	return nil
}

func (a *auditLogRepoStub) List(ctx context.Context, filter repository.AuditLogFilter) ([]models.AuditLog, int64, error) {
	a.lastFilter = filter
	return a.entries, int64(len(a.entries)), nil
}

func TestAuditRecordPersistsEntry(t *testing.T) {
	repo := &auditLogRepoStub{}
	svc := NewAuditService(repo, nil, "", testLogger())

	svc.Record(context.Background(), AuditEntry{
		OperatorID: 20,
		Action:     "review_pass",
		TargetID:   "7",
		TargetType: "Video",
		ClientIP:   "10.0.0.2",
	})

	require.Len(t, repo.entries, 1)
	require.Equal(t, "REVIEW_PASS", repo.entries[0].Action, "actions are normalized to upper case")
	require.Equal(t, "7", repo.entries[0].TargetID)
}

func TestAuditRecordDropsIncompleteEntries(t *testing.T) {
	repo := &auditLogRepoStub{}
	svc := NewAuditService(repo, nil, "", testLogger())

	svc.Record(context.Background(), AuditEntry{OperatorID: 20})
	svc.Record(context.Background(), AuditEntry{Action: models.AuditActionCreate})

	require.Empty(t, repo.entries)
}

func TestAuditRecordSwallowsRepositoryFailure(t *testing.T) {
	repo := &auditLogRepoStub{createErr: errors.New("connection reset")}
	svc := NewAuditService(repo, nil, "", testLogger())

	// Must not panic or surface the error to the caller.
	svc.Record(context.Background(), AuditEntry{
		OperatorID: 20,
		Action:     models.AuditActionOffline,
		TargetID:   "3",
		TargetType: "LiveRoom",
	})

	require.Empty(t, repo.entries)
}

func TestAuditListReturnsRecordedEntries(t *testing.T) {
	repo := &auditLogRepoStub{}
	svc := NewAuditService(repo, nil, "", testLogger())

	svc.Record(context.Background(), AuditEntry{OperatorID: 20, Action: models.AuditActionPublish, TargetID: "1", TargetType: "LiveRoom"})

	result, err := svc.List(context.Background(), dto.AuditLogListRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, models.AuditActionPublish, result.Items[0].Action)
	require.Equal(t, 1, result.Pagination.Page)
	require.Equal(t, int64(1), result.Pagination.TotalItems)
	require.Equal(t, 1, result.Pagination.TotalPages)
}

func TestAuditListMapsFilters(t *testing.T) {
	repo := &auditLogRepoStub{}
	svc := NewAuditService(repo, nil, "", testLogger())

	_, err := svc.List(context.Background(), dto.AuditLogListRequest{
		Action:     "review_pass",
		TargetType: "Video",
		OperatorID: 20,
		Page:       2,
		PageSize:   5,
	})
	require.NoError(t, err)
	require.Equal(t, "REVIEW_PASS", repo.lastFilter.Action)
	require.Equal(t, "Video", repo.lastFilter.TargetType)
	require.NotNil(t, repo.lastFilter.OperatorID)
	require.Equal(t, uint(20), *repo.lastFilter.OperatorID)
}
