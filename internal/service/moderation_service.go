package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/observability"
)

// Scene is the moderation context of a piece of text. It determines which
// enablement toggle applies: video comments are gated by commentsEnabled,
// CHAT-type live messages by liveChatEnabled, and Q&A messages by neither.
type Scene string

const (
	SceneVideoComment Scene = "video_comment"
	SceneLiveChat     Scene = "live_chat"
	SceneLiveQA       Scene = "live_qa"
)

// ErrCommentsDisabled indicates the comments toggle is off.
var ErrCommentsDisabled = errors.New("comments are disabled")

// ErrLiveChatDisabled indicates the live chat toggle is off.
var ErrLiveChatDisabled = errors.New("live chat is disabled")

// ErrSensitiveContent rejects content under the REJECT action. The message
// deliberately does not say which word matched.
var ErrSensitiveContent = errors.New("content contains sensitive words")

const (
	minMaskLen = 3
	maxMaskLen = 8
)

// ModerationService gates and transforms free-text user content according to
// the current policy.
type ModerationService interface {
	// Moderate returns the text to persist. Under MASK it is the input with
	// every occurrence of each matched word replaced by asterisks; under
	// REJECT a match fails with ErrSensitiveContent before anything is
	// written.
	Moderate(ctx context.Context, scene Scene, text string) (string, error)
}

type moderationService struct {
	policies PolicyService
	logger   zerolog.Logger
}

// NewModerationService constructs the moderation engine.
func NewModerationService(policies PolicyService, logger zerolog.Logger) ModerationService {
	return &moderationService{
		policies: policies,
		logger:   logger.With().Str("component", "moderation_service").Logger(),
	}
}

func (s *moderationService) Moderate(ctx context.Context, scene Scene, text string) (string, error) {
	policy, err := s.policies.GetPolicy(ctx)
	if err != nil {
		return "", err
	}

	switch scene {
	case SceneVideoComment:
		if !policy.CommentsEnabled {
			observability.ModerationChecks().WithLabelValues(string(scene), "disabled").Inc()
			return "", ErrCommentsDisabled
		}
	case SceneLiveChat:
		if !policy.LiveChatEnabled {
			observability.ModerationChecks().WithLabelValues(string(scene), "disabled").Inc()
			return "", ErrLiveChatDisabled
		}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		observability.ModerationChecks().WithLabelValues(string(scene), "clean").Inc()
		return "", nil
	}

	words, err := s.policies.ActiveWords(ctx)
	if err != nil {
		return "", err
	}
	if len(words) == 0 {
		observability.ModerationChecks().WithLabelValues(string(scene), "clean").Inc()
		return trimmed, nil
	}

	// One upfront pass against the original text. Replacement runs are
	// never re-scanned, so a word that happens to appear inside an
	// asterisk run cannot re-match.
	matched := make([]string, 0, 2)
	for _, word := range words {
		if strings.Contains(trimmed, word) {
			matched = append(matched, word)
		}
	}
	if len(matched) == 0 {
		observability.ModerationChecks().WithLabelValues(string(scene), "clean").Inc()
		return trimmed, nil
	}

	if policy.ModerationAction == models.ModerationActionReject {
		observability.ModerationChecks().WithLabelValues(string(scene), "rejected").Inc()
		s.logger.Info().Str("scene", string(scene)).Int("matches", len(matched)).Msg("content rejected by moderation policy")
		return "", ErrSensitiveContent
	}

	// Matched words arrive longest first from the policy store, so a longer
	// match is masked before any shorter word nested inside it can split
	// the region.
	masked := trimmed
	for _, word := range matched {
		masked = strings.ReplaceAll(masked, word, maskFor(word))
	}

	observability.ModerationChecks().WithLabelValues(string(scene), "masked").Inc()
	return masked, nil
}

// maskFor sizes the replacement by rune count so multi-byte words do not
// leak their byte length.
func maskFor(word string) string {
	n := utf8.RuneCountInString(word)
	if n < minMaskLen {
		n = minMaskLen
	}
	if n > maxMaskLen {
		n = maxMaskLen
	}
	return strings.Repeat("*", n)
}
