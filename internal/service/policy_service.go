package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/repository"
)

// ErrEmptyPolicyPatch indicates an update request carrying no fields.
var ErrEmptyPolicyPatch = errors.New("policy patch must set at least one field")

// ErrDuplicateWord indicates the word is already on the block list.
var ErrDuplicateWord = errors.New("sensitive word already exists")

// ErrWordNotFound indicates the block-list entry does not exist.
var ErrWordNotFound = errors.New("sensitive word not found")

const defaultPolicyCacheTTL = 10 * time.Second

// PolicyService is the single source of truth for the moderation
// configuration and the active word list. Both reads go through a
// process-local TTL cache so moderated writes avoid a database round trip;
// every policy or word mutation invalidates the affected cache immediately,
// so staleness is only ever the TTL window on *other* instances.
type PolicyService interface {
	GetPolicy(ctx context.Context) (models.ContentPolicy, error)
	UpdatePolicy(ctx context.Context, patch dto.PolicyUpdateRequest) (dto.PolicyResponse, error)
	ActiveWords(ctx context.Context) ([]string, error)
	BustCache()

	ListWords(ctx context.Context) ([]dto.SensitiveWordResponse, error)
	AddWord(ctx context.Context, req dto.SensitiveWordRequest) (dto.SensitiveWordResponse, error)
	RemoveWord(ctx context.Context, id uint) error
	SetWordActive(ctx context.Context, id uint, active bool) error
}

type policyCacheEntry struct {
	policy   models.ContentPolicy
	loadedAt time.Time
}

type wordsCacheEntry struct {
	words    []string
	loadedAt time.Time
}

type policyService struct {
	policies  repository.PolicyRepository
	words     repository.SensitiveWordRepository
	validator *validator.Validate
	ttl       time.Duration
	logger    zerolog.Logger

	mu          sync.RWMutex
	policyCache *policyCacheEntry
	wordsCache  *wordsCacheEntry
}

// NewPolicyService constructs the policy store.
func NewPolicyService(policies repository.PolicyRepository, words repository.SensitiveWordRepository, validate *validator.Validate, ttl time.Duration, logger zerolog.Logger) PolicyService {
	if ttl <= 0 {
		ttl = defaultPolicyCacheTTL
	}
	return &policyService{
		policies:  policies,
		words:     words,
		validator: validate,
		ttl:       ttl,
		logger:    logger.With().Str("component", "policy_service").Logger(),
	}
}

func (s *policyService) GetPolicy(ctx context.Context) (models.ContentPolicy, error) {
	s.mu.RLock()
	entry := s.policyCache
	s.mu.RUnlock()

	if entry != nil && time.Since(entry.loadedAt) < s.ttl {
		return entry.policy, nil
	}

	policy, err := s.policies.GetOrCreate(ctx)
	if err != nil {
		return models.ContentPolicy{}, err
	}

	s.mu.Lock()
	s.policyCache = &policyCacheEntry{policy: policy, loadedAt: time.Now()}
	s.mu.Unlock()

	return policy, nil
}

func (s *policyService) UpdatePolicy(ctx context.Context, patch dto.PolicyUpdateRequest) (dto.PolicyResponse, error) {
	if patch.Empty() {
		return dto.PolicyResponse{}, ErrEmptyPolicyPatch
	}

	if patch.ModerationAction != nil {
		action := strings.ToUpper(strings.TrimSpace(*patch.ModerationAction))
		patch.ModerationAction = &action
	}
	if err := s.validator.Struct(patch); err != nil {
		return dto.PolicyResponse{}, err
	}

	updates := map[string]interface{}{}
	if patch.CommentsEnabled != nil {
		updates["comments_enabled"] = *patch.CommentsEnabled
	}
	if patch.LiveChatEnabled != nil {
		updates["live_chat_enabled"] = *patch.LiveChatEnabled
	}
	if patch.ModerationAction != nil {
		updates["moderation_action"] = *patch.ModerationAction
	}

	policy, err := s.policies.Update(ctx, updates)
	if err != nil {
		return dto.PolicyResponse{}, err
	}

	// Invalidate before returning so the very next read on this instance
	// reflects the change, with no stale window after a write.
	s.mu.Lock()
	s.policyCache = nil
	s.mu.Unlock()

	return dto.NewPolicyResponse(policy), nil
}

// ActiveWords returns the active block list sorted longest word first, then
// lexicographically. The ordering is a contract, not a convenience: masking
// longer words before their substrings keeps overlapping matches from
// splitting an already-masked run.
func (s *policyService) ActiveWords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	entry := s.wordsCache
	s.mu.RUnlock()

	if entry != nil && time.Since(entry.loadedAt) < s.ttl {
		return entry.words, nil
	}

	rows, err := s.words.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	words := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Word != "" {
			words = append(words, row.Word)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	s.mu.Lock()
	s.wordsCache = &wordsCacheEntry{words: words, loadedAt: time.Now()}
	s.mu.Unlock()

	return words, nil
}

// BustCache clears both caches unconditionally.
func (s *policyService) BustCache() {
	s.mu.Lock()
	s.policyCache = nil
	s.wordsCache = nil
	s.mu.Unlock()
}

func (s *policyService) ListWords(ctx context.Context) ([]dto.SensitiveWordResponse, error) {
	rows, err := s.words.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.SensitiveWordResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.NewSensitiveWordResponse(row))
	}
	return responses, nil
}

func (s *policyService) AddWord(ctx context.Context, req dto.SensitiveWordRequest) (dto.SensitiveWordResponse, error) {
	// Trim before validating so a whitespace-only word fails the required tag
	// instead of landing on the block list as an empty entry.
	req.Word = strings.TrimSpace(req.Word)
	if err := s.validator.Struct(req); err != nil {
		return dto.SensitiveWordResponse{}, err
	}

	word := models.SensitiveWord{
		Word:     req.Word,
		IsActive: true,
	}
	if req.IsActive != nil {
		word.IsActive = *req.IsActive
	}

	if err := s.words.Create(ctx, &word); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SensitiveWordResponse{}, ErrDuplicateWord
		}
		return dto.SensitiveWordResponse{}, err
	}

	s.BustCache()
	return dto.NewSensitiveWordResponse(word), nil
}

func (s *policyService) RemoveWord(ctx context.Context, id uint) error {
	affected, err := s.words.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWordNotFound
	}
	s.BustCache()
	return nil
}

func (s *policyService) SetWordActive(ctx context.Context, id uint, active bool) error {
	affected, err := s.words.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWordNotFound
	}
	s.BustCache()
	return nil
}
