package physics

import "errors"

// Construction errors. Relaxation and integration never fail; bad input is
// rejected up front instead of surfacing later as NaN positions.
var (
	// ErrInvalidMass indicates a free point with a non-positive or non-finite mass.
	ErrInvalidMass = errors.New("physics: mass must be positive and finite")

	// ErrNegativeRestLength indicates a stick with rest length < 0.
	ErrNegativeRestLength = errors.New("physics: rest length must be non-negative and finite")

	// ErrNilEndpoint indicates a stick or box built from a nil point.
	ErrNilEndpoint = errors.New("physics: nil point")

	// ErrInvalidParams indicates tunables outside their valid range.
	ErrInvalidParams = errors.New("physics: parameter out of valid bounds")
)
