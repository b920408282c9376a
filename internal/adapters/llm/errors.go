package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/PabloGalante/lifeline/internal/domain"
)

// wrapServiceError tags a generator failure with the matching domain error.
func wrapServiceError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrServiceTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrService, err)
}
