package processing

import (
	"errors"
	"fmt"

	"suncet-viewer/internal/types"
)

var ErrShapeMismatch = errors.New("frame shape mismatch")

type ShapeMismatchError struct {
	Current  []int
	Previous []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("cannot difference frames of shape %v and %v", e.Current, e.Previous)
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// MaybeDifference returns |current - previous| per element when enabled and a
// previous frame exists, and current unchanged otherwise. Values keep the
// input range; nothing is rescaled.
func MaybeDifference(current types.Frame, previous *types.Frame, enabled bool) (types.Frame, error) {
	if !enabled || previous == nil {
		return current, nil
	}
	if !current.SameShape(*previous) || len(current.Pix) != len(previous.Pix) {
		return types.Frame{}, &ShapeMismatchError{Current: current.Shape(), Previous: previous.Shape()}
	}

	out := types.NewFrame(current.Width, current.Height, current.Channels)
	out.Path = current.Path
	for i, a := range current.Pix {
		b := previous.Pix[i]
		if a >= b {
			out.Pix[i] = a - b
		} else {
			out.Pix[i] = b - a
		}
	}
	return out, nil
}
