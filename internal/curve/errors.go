package curve

import "errors"

var (
	// ErrInvalidInput reports a malformed sample series: mismatched lengths,
	// too few points, non-increasing x, or non-finite values.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidParameter reports a negative or non-finite sigma or threshold.
	ErrInvalidParameter = errors.New("invalid parameter")
)
