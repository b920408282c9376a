package domain

// Assessment is what remains of a chat request once it has been answered.
// It never holds the message or the generated reply.
type Assessment struct {
	ID        AssessmentID `json:"id"`
	RequestID RequestID    `json:"request_id,omitempty"`
	Label     Label        `json:"label"`
	Score     RiskScore    `json:"score"`

	// MessageRunes is the length of the message, in runes.
	MessageRunes int `json:"message_runes"`

	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	LatencyMS int64     `json:"latency_ms"`
	CreatedAt Timestamp `json:"created_at"`
}
