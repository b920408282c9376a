package classifier

import "context"

// SequenceModel runs a padded token sequence through a sequence classifier and
// returns its single probability-like output.
type SequenceModel interface {
	Predict(ctx context.Context, seq []int32) (float64, error)
}
