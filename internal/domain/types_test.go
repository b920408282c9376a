package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/lifeline/internal/domain"
)

func TestClassifyScoreBoundary(t *testing.T) {
	cases := []struct {
		score domain.RiskScore
		want  domain.Label
	}{
		{0, domain.LabelNeutral},
		{0.25, domain.LabelNeutral},
		{0.4999999, domain.LabelNeutral},
		{0.5, domain.LabelAtRisk},
		{0.5000001, domain.LabelAtRisk},
		{0.93, domain.LabelAtRisk},
		{1, domain.LabelAtRisk},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, domain.ClassifyScore(tc.score), "score %v", tc.score)
	}
}

func TestLabelMessageType(t *testing.T) {
	assert.Equal(t, "Potential Suicide Post", domain.LabelAtRisk.MessageType())
	assert.Equal(t, "Non Suicide Post", domain.LabelNeutral.MessageType())
}

func TestRiskScoreValid(t *testing.T) {
	assert.True(t, domain.RiskScore(0).Valid())
	assert.True(t, domain.RiskScore(1).Valid())
	assert.False(t, domain.RiskScore(-0.01).Valid())
	assert.False(t, domain.RiskScore(1.01).Valid())
}
