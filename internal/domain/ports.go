package domain

import "context"

// LLMClient defines how the core application interacts with a generative model.
type LLMClient interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// RiskScorer turns a raw message into a risk score.
type RiskScorer interface {
	Score(ctx context.Context, message string) (RiskScore, error)
}

// AssessmentStore persists the derived, text-free record of each request.
type AssessmentStore interface {
	AppendAssessment(ctx context.Context, a *Assessment) error
	ListRecentAssessments(ctx context.Context, limit int) ([]*Assessment, error)
}
