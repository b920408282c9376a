package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/PabloGalante/lifeline/internal/domain"
	"github.com/PabloGalante/lifeline/internal/observability"
)

const (
	DefaultGenerateTimeout          = 30 * time.Second
	DefaultMaxConcurrentGenerations = 8

	defaultListLimit = 20
	maxListLimit     = 100
	storeTimeout     = 5 * time.Second
)

// ErrNoStore is returned by RecentAssessments when no store is configured.
var ErrNoStore = errors.New("assessment store not configured")

type Service struct {
	scorer  domain.RiskScorer
	llm     domain.LLMClient
	store   domain.AssessmentStore
	limiter *semaphore.Weighted
	timeout time.Duration
	now     func() time.Time
}

// Options tunes a Service. Zero values fall back to the defaults.
type Options struct {
	GenerateTimeout          time.Duration
	MaxConcurrentGenerations int64

	// Store is optional; nil disables assessment recording.
	Store domain.AssessmentStore
}

func NewService(scorer domain.RiskScorer, llm domain.LLMClient, opts Options) *Service {
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultGenerateTimeout
	}
	if opts.MaxConcurrentGenerations <= 0 {
		opts.MaxConcurrentGenerations = DefaultMaxConcurrentGenerations
	}

	return &Service{
		scorer:  scorer,
		llm:     llm,
		store:   opts.Store,
		limiter: semaphore.NewWeighted(opts.MaxConcurrentGenerations),
		timeout: opts.GenerateTimeout,
		now:     time.Now,
	}
}

type ReplyInput struct {
	Message string
}

type ReplyOutput struct {
	Label           domain.Label
	Score           domain.RiskScore
	Reply           string
	OriginalMessage string
}

// Reply classifies the message, builds the matching prompt and asks the
// generator for an answer. Each call is independent.
func (s *Service) Reply(ctx context.Context, in ReplyInput) (*ReplyOutput, error) {
	if in.Message == "" {
		return nil, domain.ErrMissingMessage
	}

	start := s.now()
	log := observability.LoggerFromContext(ctx).With(
		"message_runes", utf8.RuneCountInString(in.Message),
	)

	score, err := s.scorer.Score(ctx, in.Message)
	if err != nil {
		log.Error("risk scoring failed", "error", err)
		return nil, asInferenceError(err)
	}

	label := domain.ClassifyScore(score)
	log = log.With("label", label, "score", float64(score))
	log.Info("message classified")

	reply, err := s.generate(ctx, BuildPrompt(in.Message, label))
	if err != nil {
		log.Error("reply generation failed", "error", err)
		return nil, err
	}

	latency := s.now().Sub(start)
	log.Info("reply generated", "elapsed_ms", latency.Milliseconds())

	provider, model, _ := strings.Cut(providerName(s.llm), "/")
	s.record(ctx, &domain.Assessment{
		ID:           domain.AssessmentID(uuid.NewString()),
		RequestID:    domain.RequestID(observability.RequestIDFromContext(ctx)),
		Label:        label,
		Score:        score,
		MessageRunes: utf8.RuneCountInString(in.Message),
		Provider:     provider,
		Model:        model,
		LatencyMS:    latency.Milliseconds(),
		CreatedAt:    s.now(),
	})

	return &ReplyOutput{
		Label:           label,
		Score:           score,
		Reply:           reply,
		OriginalMessage: in.Message,
	}, nil
}

// generate runs one generator call inside a concurrency slot, both bounded by
// the same deadline.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBusy, err)
	}
	defer s.limiter.Release(1)

	reply, err := s.llm.GenerateReply(ctx, prompt)
	if err != nil {
		return "", asServiceError(ctx, err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: empty reply", domain.ErrService)
	}
	return reply, nil
}

func (s *Service) record(ctx context.Context, a *domain.Assessment) {
	if s.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	if err := s.store.AppendAssessment(ctx, a); err != nil {
		observability.LoggerFromContext(ctx).Warn("failed to record assessment", "error", err)
	}
}

// HasStore reports whether assessments are being recorded.
func (s *Service) HasStore() bool {
	return s.store != nil
}

// RecentAssessments returns the newest stored assessments. limit <= 0 uses a
// default of 20, and it is capped at 100.
func (s *Service) RecentAssessments(ctx context.Context, limit int) ([]*domain.Assessment, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	out, err := s.store.ListRecentAssessments(ctx, limit)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to list assessments", "error", err)
		return nil, err
	}
	return out, nil
}

// asInferenceError keeps input errors as they are and reports every other
// scorer failure, cancellation included, as ErrInference.
func asInferenceError(err error) error {
	if errors.Is(err, domain.ErrInvalidMessage) || errors.Is(err, domain.ErrInference) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrInference, err)
}

func asServiceError(ctx context.Context, err error) error {
	if errors.Is(err, domain.ErrService) || errors.Is(err, domain.ErrServiceTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrServiceTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrService, err)
}

// providerName is "provider/model" for clients that report it.
func providerName(c domain.LLMClient) string {
	if n, ok := c.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", c)
}
