package classifier

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/PabloGalante/lifeline/internal/domain"
	"github.com/PabloGalante/lifeline/internal/observability"
)

// Classifier is the immutable tokenizer + model pair loaded once at startup.
// It implements domain.RiskScorer.
type Classifier struct {
	tokenizer *Tokenizer
	model     SequenceModel
	maxLen    int
}

func New(tokenizer *Tokenizer, model SequenceModel) *Classifier {
	return &Classifier{
		tokenizer: tokenizer,
		model:     model,
		maxLen:    MaxSequenceLength,
	}
}

// Encode turns a message into the fixed-length padded id sequence fed to the model.
func (c *Classifier) Encode(message string) ([]int32, error) {
	if !utf8.ValidString(message) {
		return nil, fmt.Errorf("%w: message is not valid UTF-8", domain.ErrInvalidMessage)
	}
	seq := c.tokenizer.TextsToSequence(message)
	return PadPost(seq, c.maxLen), nil
}

// Score implements domain.RiskScorer.
func (c *Classifier) Score(ctx context.Context, message string) (domain.RiskScore, error) {
	seq, err := c.Encode(message)
	if err != nil {
		return 0, err
	}

	raw, err := c.model.Predict(ctx, seq)
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("%w: %w", domain.ErrInference, ctx.Err())
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrInference, err)
	}

	score := domain.RiskScore(raw)
	if math.IsNaN(raw) || !score.Valid() {
		return 0, fmt.Errorf("%w: model returned %v, outside [0,1]", domain.ErrInference, raw)
	}

	observability.LoggerFromContext(ctx).Debug("message scored", "score", raw)
	return score, nil
}
