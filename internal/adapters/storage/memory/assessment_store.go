package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/PabloGalante/lifeline/internal/domain"
)

// AssessmentStore is a simple in-memory implementation of domain.AssessmentStore.
// It is NOT persistent and keeps at most capacity records, dropping the oldest.
type AssessmentStore struct {
	mu       sync.RWMutex
	entries  []*domain.Assessment
	capacity int
}

// DefaultCapacity bounds the in-memory history.
const DefaultCapacity = 1000

// NewAssessmentStore creates a store; capacity <= 0 uses DefaultCapacity.
func NewAssessmentStore(capacity int) *AssessmentStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &AssessmentStore{capacity: capacity}
}

// AppendAssessment saves a copy of a.
func (s *AssessmentStore) AppendAssessment(_ context.Context, a *domain.Assessment) error {
	if a == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = domain.AssessmentID(uuid.NewString())
	}

	cp := *a
	s.entries = append(s.entries, &cp)
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = append(s.entries[:0:0], s.entries[over:]...)
	}

	return nil
}

// ListRecentAssessments returns the last `limit` assessments, newest first.
// If limit <= 0, returns all.
func (s *AssessmentStore) ListRecentAssessments(_ context.Context, limit int) ([]*domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}

	out := make([]*domain.Assessment, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *s.entries[i]
		out = append(out, &cp)
	}

	return out, nil
}
