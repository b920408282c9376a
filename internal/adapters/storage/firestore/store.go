package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/lifeline/internal/domain"
)

const assessmentsCollection = "assessments"

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (LIFELINE_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) assessmentsCol() *firestore.CollectionRef {
	return s.client.Collection(assessmentsCollection)
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type assessmentDoc struct {
	RequestID    string    `firestore:"request_id"`
	Label        string    `firestore:"label"`
	Score        float64   `firestore:"score"`
	MessageRunes int       `firestore:"message_runes"`
	Provider     string    `firestore:"provider"`
	Model        string    `firestore:"model"`
	LatencyMS    int64     `firestore:"latency_ms"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func toDoc(a *domain.Assessment) assessmentDoc {
	return assessmentDoc{
		RequestID:    string(a.RequestID),
		Label:        string(a.Label),
		Score:        float64(a.Score),
		MessageRunes: a.MessageRunes,
		Provider:     a.Provider,
		Model:        a.Model,
		LatencyMS:    a.LatencyMS,
		CreatedAt:    a.CreatedAt,
	}
}

func fromDoc(id string, d assessmentDoc) *domain.Assessment {
	return &domain.Assessment{
		ID:           domain.AssessmentID(id),
		RequestID:    domain.RequestID(d.RequestID),
		Label:        domain.Label(d.Label),
		Score:        domain.RiskScore(d.Score),
		MessageRunes: d.MessageRunes,
		Provider:     d.Provider,
		Model:        d.Model,
		LatencyMS:    d.LatencyMS,
		CreatedAt:    d.CreatedAt,
	}
}

// ─────────────────────────────────────────
// AssessmentStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendAssessment(ctx context.Context, a *domain.Assessment) error {
	if a == nil {
		return nil
	}
	if a.ID == "" {
		a.ID = domain.AssessmentID(uuid.NewString())
	}

	_, err := s.assessmentsCol().Doc(string(a.ID)).Create(ctx, toDoc(a))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("assessment %s already exists", a.ID)
		}
		return fmt.Errorf("firestore AppendAssessment: %w", err)
	}
	return nil
}

func (s *Store) ListRecentAssessments(ctx context.Context, limit int) ([]*domain.Assessment, error) {
	q := s.assessmentsCol().OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Assessment
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore ListRecentAssessments: %w", err)
		}

		var doc assessmentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode assessmentDoc: %w", err)
		}

		out = append(out, fromDoc(snap.Ref.ID, doc))
	}
	return out, nil
}
