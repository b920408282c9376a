package domain

import "time"

type RequestID string
type AssessmentID string

// RiskScore is the raw classifier output, in [0,1]. Higher means more risk.
type RiskScore float64

// Label is the two-valued classification derived from a RiskScore.
type Label string

const (
	LabelAtRisk  Label = "at_risk"
	LabelNeutral Label = "neutral"
)

// RiskThreshold is inclusive on the at-risk side.
const RiskThreshold RiskScore = 0.5

// ClassifyScore maps a score to its label.
func ClassifyScore(score RiskScore) Label {
	if score >= RiskThreshold {
		return LabelAtRisk
	}
	return LabelNeutral
}

// MessageType is the name used for the label on the HTTP surface.
func (l Label) MessageType() string {
	switch l {
	case LabelAtRisk:
		return "Potential Suicide Post"
	default:
		return "Non Suicide Post"
	}
}

// Valid reports whether s is inside [0,1].
func (s RiskScore) Valid() bool {
	return s >= 0 && s <= 1
}

type Timestamp = time.Time
