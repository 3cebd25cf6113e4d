package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/models"
)

type policyRepoStub struct {
	policy    models.ContentPolicy
	loadCount int
}

func (p *policyRepoStub) GetOrCreate(ctx context.Context) (models.ContentPolicy, error) {
	p.loadCount++
	return p.policy, nil
}

func (p *policyRepoStub) Update(ctx context.Context, updates map[string]interface{}) (models.ContentPolicy, error) {
	if v, ok := updates["comments_enabled"]; ok {
		p.policy.CommentsEnabled = v.(bool)
	}
	if v, ok := updates["live_chat_enabled"]; ok {
		p.policy.LiveChatEnabled = v.(bool)
	}
	if v, ok := updates["moderation_action"]; ok {
		p.policy.ModerationAction = v.(string)
	}
	return p.policy, nil
}

type wordRepoStub struct {
	rows      []models.SensitiveWord
	loadCount int
	createErr error
	affected  int64
}

func (w *wordRepoStub) ListActive(ctx context.Context) ([]models.SensitiveWord, error) {
	w.loadCount++
	active := make([]models.SensitiveWord, 0, len(w.rows))
	for _, row := range w.rows {
		if row.IsActive {
			active = append(active, row)
		}
	}
	return active, nil
}

func (w *wordRepoStub) List(ctx context.Context) ([]models.SensitiveWord, error) {
	return w.rows, nil
}

func (w *wordRepoStub) Create(ctx context.Context, word *models.SensitiveWord) error {
	if w.createErr != nil {
		return w.createErr
	}
	word.ID = uint(len(w.rows) + 1)
	w.rows = append(w.rows, *word)
	return nil
}

func (w *wordRepoStub) Delete(ctx context.Context, id uint) (int64, error) {
	return w.affected, nil
}

func (w *wordRepoStub) SetActive(ctx context.Context, id uint, active bool) (int64, error) {
	return w.affected, nil
}

func defaultPolicyRepo() *policyRepoStub {
	return &policyRepoStub{policy: models.ContentPolicy{
		ID:               1,
		CommentsEnabled:  true,
		LiveChatEnabled:  true,
		ModerationAction: models.ModerationActionReject,
	}}
}

func TestPolicyServiceCachesWithinTTL(t *testing.T) {
	repo := defaultPolicyRepo()
	svc := NewPolicyService(repo, &wordRepoStub{}, validator.New(validator.WithRequiredStructEnabled()), time.Minute, testLogger())

	for i := 0; i < 3; i++ {
		_, err := svc.GetPolicy(context.Background())
		require.NoError(t, err)
	}

	require.Equal(t, 1, repo.loadCount, "repeated reads inside the TTL should hit the cache")
}

func TestPolicyServiceUpdateInvalidatesImmediately(t *testing.T) {
	repo := defaultPolicyRepo()
	svc := NewPolicyService(repo, &wordRepoStub{}, validator.New(validator.WithRequiredStructEnabled()), time.Minute, testLogger())

	policy, err := svc.GetPolicy(context.Background())
	require.NoError(t, err)
	require.True(t, policy.CommentsEnabled)

	updated, err := svc.UpdatePolicy(context.Background(), dto.PolicyUpdateRequest{CommentsEnabled: boolPtr(false)})
	require.NoError(t, err)
	require.False(t, updated.CommentsEnabled)

	// The next read must reflect the write even though the TTL has not
	// elapsed.
	after, err := svc.GetPolicy(context.Background())
	require.NoError(t, err)
	require.False(t, after.CommentsEnabled)
	require.Equal(t, 2, repo.loadCount)
}

func TestPolicyServiceRejectsEmptyPatch(t *testing.T) {
	svc := NewPolicyService(defaultPolicyRepo(), &wordRepoStub{}, validator.New(validator.WithRequiredStructEnabled()), time.Minute, testLogger())

	_, err := svc.UpdatePolicy(context.Background(), dto.PolicyUpdateRequest{})
	require.ErrorIs(t, err, ErrEmptyPolicyPatch)
}

func TestPolicyServiceNormalizesModerationAction(t *testing.T) {
	repo := defaultPolicyRepo()
	svc := NewPolicyService(repo, &wordRepoStub{}, validator.New(validator.WithRequiredStructEnabled()), time.Minute, testLogger())

	updated, err := svc.UpdatePolicy(context.Background(), dto.PolicyUpdateRequest{ModerationAction: strPtr(" mask ")})
	require.NoError(t, err)
	require.Equal(t, models.ModerationActionMask, updated.ModerationAction)
}

func TestPolicyServiceRejectsUnknownModerationAction(t *testing.T) {
	repo := defaultPolicyRepo()
	svc := NewPolicyService(repo, &wordRepoStub{}, validator.New(validator.WithRequiredStructEnabled()), time.Minute, testLogger())

	_, err := svc.UpdatePolicy(context.Background(), dto.PolicyUpdateRequest{ModerationAction: strPtr("PURGE")})

	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Equal(t, models.ModerationActionReject, repo.policy.ModerationAction, "invalid action must not reach the store")
}

func TestAddWordRejectsBlankWord(t *testing.T) {
	words := &wordRepoStub{}
	svc := NewPolicyService(defaultPolicyRepo(), words, validator.New(validator.WithRequiredStructEnabled()), time.Minute, testLogger())

	_, err := svc.AddWord(context.Background(), dto.SensitiveWordRequest{Word: "   "})

	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Empty(t, words.rows, "blank words must not be persisted")
}

func TestActiveWordsOrderedLongestThenLex(t *testing.T) {
	words := &wordRepoStub{rows: []models.SensitiveWord{
		{ID: 1, Word: "ab", IsActive: true},
		{ID: 2, Word: "abc", IsActive: true},
		{ID: 3, Word: "zz", IsActive: true},
		{ID: 4, Word: "inactive-word", IsActive: false},
	}}
	svc := NewPolicyService(defaultPolicyRepo(), words, validator.New(validator.WithRequiredStructEnabled()), time.Minute, testLogger())

	got, err := svc.ActiveWords(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"abc", "ab", "zz"}, got)
}

func TestActiveWordsCachedUntilWordMutation(t *testing.T) {
	words := &wordRepoStub{rows: []models.SensitiveWord{{ID: 1, Word: "bad", IsActive: true}}, affected: 1}
	svc := NewPolicyService(defaultPolicyRepo(), words, validator.New(validator.WithRequiredStructEnabled()), time.Minute, testLogger())

	_, err := svc.ActiveWords(context.Background())
	require.NoError(t, err)
	_, err = svc.ActiveWords(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, words.loadCount)

	_, err = svc.AddWord(context.Background(), dto.SensitiveWordRequest{Word: "worse"})
	require.NoError(t, err)

	_, err = svc.ActiveWords(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, words.loadCount, "word mutation should bust the cache")
}

func TestAddWordMapsDuplicateError(t *testing.T) {
	words := &wordRepoStub{createErr: gorm.ErrDuplicatedKey}
	svc := NewPolicyService(defaultPolicyRepo(), words, validator.New(validator.WithRequiredStructEnabled()), time.Minute, testLogger())

	_, err := svc.AddWord(context.Background(), dto.SensitiveWordRequest{Word: "dup"})
	require.ErrorIs(t, err, ErrDuplicateWord)
}

func TestRemoveWordNotFound(t *testing.T) {
	words := &wordRepoStub{affected: 0}
	svc := NewPolicyService(defaultPolicyRepo(), words, validator.New(validator.WithRequiredStructEnabled()), time.Minute, testLogger())

	require.ErrorIs(t, svc.RemoveWord(context.Background(), 42), ErrWordNotFound)
	require.ErrorIs(t, svc.SetWordActive(context.Background(), 42, false), ErrWordNotFound)
}
