package geom

import "errors"

// Error taxonomy shared by the triangulator, the offset engine and the
// shape builders. Callers match these with errors.Is.
var (
	// ErrInvalidInput reports malformed structural input such as
	// non-increasing hole offsets. It is fatal to the call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientPoints reports fewer vertices than the operation needs.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrDegenerateGeometry reports input whose points are all coincident
	// or collinear. Builders recover from it where they can.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrUnresolvedIntersection reports that line widening had to reuse a
	// previous offset pair because two offset lines never met.
	ErrUnresolvedIntersection = errors.New("unresolved intersection")
)
