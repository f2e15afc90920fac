package shorts

import "errors"

var (
	// ErrInvalidSiteKind is returned when placing on a site that is not a
	// logic slice.
	ErrInvalidSiteKind = errors.New("shorts: invalid site kind")
	// ErrTileMismatch is returned when pairing primitives from different tiles.
	ErrTileMismatch = errors.New("shorts: primitives in different tiles")
	// ErrConflictingLogicLevel is returned when pairing primitives that drive
	// the same constant.
	ErrConflictingLogicLevel = errors.New("shorts: primitives drive the same level")
	// ErrNoRouteFound is returned when no shared node satisfies a query.
	ErrNoRouteFound = errors.New("shorts: no route found")
	// ErrCapacityExceeded is returned when the ledger cannot take more cells.
	ErrCapacityExceeded = errors.New("shorts: capacity exceeded")
	// ErrBrokenReference is returned when a persisted short cannot be resolved.
	ErrBrokenReference = errors.New("shorts: broken reference")

	ErrDeleted         = errors.New("shorts: short deleted")
	ErrAlreadyRouted   = errors.New("shorts: short already routed")
	ErrAlreadyReleased = errors.New("shorts: primitive already released")
	ErrNoLUT           = errors.New("shorts: short has no LUT primitive")
)

// ErrorKind classifies errors raised by this package.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindInvalidSiteKind
	KindTileMismatch
	KindConflictingLogicLevel
	KindNoRouteFound
	KindCapacityExceeded
	KindBrokenReference
	// KindLifecycle covers operations on records in the wrong state.
	KindLifecycle
	KindOther
)

var kindNames = map[ErrorKind]string{
	KindNone:                  "none",
	KindInvalidSiteKind:       "InvalidSiteKind",
	KindTileMismatch:          "TileMismatch",
	KindConflictingLogicLevel: "ConflictingLogicLevel",
	KindNoRouteFound:          "NoRouteFound",
	KindCapacityExceeded:      "CapacityExceeded",
	KindBrokenReference:       "BrokenReference",
	KindLifecycle:             "Lifecycle",
	KindOther:                 "Other",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

var kindOrder = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidSiteKind, KindInvalidSiteKind},
	{ErrTileMismatch, KindTileMismatch},
	{ErrConflictingLogicLevel, KindConflictingLogicLevel},
	{ErrNoRouteFound, KindNoRouteFound},
	{ErrCapacityExceeded, KindCapacityExceeded},
	{ErrBrokenReference, KindBrokenReference},
	{ErrDeleted, KindLifecycle},
	{ErrAlreadyRouted, KindLifecycle},
	{ErrAlreadyReleased, KindLifecycle},
	{ErrNoLUT, KindLifecycle},
}

// KindOf maps err to its kind. A nil error is KindNone; errors from outside
// this package are KindOther.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, k := range kindOrder {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindOther
}
