package cone

import (
	"errors"
	"fmt"
)

// Kind classifies a solver failure.
type Kind int

const (
	// InvalidDimensions means the diameters or length cannot describe a cone
	// (D <= d, l <= 0, negative or non-finite values).
	InvalidDimensions Kind = iota + 1
	// DegenerateAngle means the included angle is outside (0°, 180°) or so
	// close to either end that tan(α/2) is numerically unusable.
	DegenerateAngle
	// MissingInputs means a field required by the selected mode was not supplied.
	MissingInputs
)

func (k Kind) String() string {
	switch k {
	case InvalidDimensions:
		return "InvalidDimensions"
	case DegenerateAngle:
		return "DegenerateAngle"
	case MissingInputs:
		return "MissingInputs"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error type returned by every solver operation.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrInvalidDimensions = &Error{Kind: InvalidDimensions}
	ErrDegenerateAngle   = &Error{Kind: DegenerateAngle}
	ErrMissingInputs     = &Error{Kind: MissingInputs}
)

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	default:
		return e.Kind.String()
	}
}

// Is matches on Kind so callers can branch with errors.Is(err, ErrDegenerateAngle).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of a solver error, or 0 when err is not one.
func KindOf(err error) Kind {
	var solverErr *Error
	if errors.As(err, &solverErr) {
		return solverErr.Kind
	}
	return 0
}

func newError(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}
