package sheet

import "errors"

// Sentinel errors returned by Sheet and Cell operations. Use errors.Is to
// check for a specific kind; details are appended via fmt.Errorf("%w: ...").
var (
	// ErrInvalidPosition is returned whenever a Position falls outside
	// [0, MaxRows) x [0, MaxCols), or a string fails to parse as one.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrFormulaParse is returned when formula text following '=' fails to
	// parse. The cell is left unchanged.
	ErrFormulaParse = errors.New("formula parse error")

	// ErrCircularDependency is returned when committing a new formula body
	// would close a cycle in the forward-reference graph. The cell and the
	// graph are left unchanged.
	ErrCircularDependency = errors.New("circular dependency")
)
