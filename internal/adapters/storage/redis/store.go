// Package redis keeps the assessment history in a capped Redis list, newest
// first, so that several replicas can share it.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/PabloGalante/lifeline/internal/domain"
)

const (
	// DefaultKey is the list holding serialized assessments.
	DefaultKey = "lifeline:assessments"
	// DefaultCapacity bounds the list length.
	DefaultCapacity = 1000
)

type Store struct {
	client   *redis.Client
	key      string
	capacity int64
}

// NewStore connects using a redis:// or rediss:// URL and checks the
// connection with a PING.
func NewStore(ctx context.Context, url string) (*Store, error) {
	if url == "" {
		return nil, fmt.Errorf("redis URL is required for the redis store")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	return &Store{client: client, key: DefaultKey, capacity: DefaultCapacity}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// AppendAssessment pushes a to the head of the list and trims the tail.
func (s *Store) AppendAssessment(ctx context.Context, a *domain.Assessment) error {
	if a == nil {
		return nil
	}
	if a.ID == "" {
		a.ID = domain.AssessmentID(uuid.NewString())
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding assessment: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, 0, s.capacity-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis AppendAssessment: %w", err)
	}
	return nil
}

// ListRecentAssessments returns up to limit assessments, newest first.
// If limit <= 0, returns all.
func (s *Store) ListRecentAssessments(ctx context.Context, limit int) ([]*domain.Assessment, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := s.client.LRange(ctx, s.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis ListRecentAssessments: %w", err)
	}

	return decodeAssessments(raw)
}

func decodeAssessments(raw []string) ([]*domain.Assessment, error) {
	out := make([]*domain.Assessment, 0, len(raw))
	for _, r := range raw {
		var a domain.Assessment
		if err := json.Unmarshal([]byte(r), &a); err != nil {
			return nil, fmt.Errorf("decoding assessment: %w", err)
		}
		out = append(out, &a)
	}
	return out, nil
}
