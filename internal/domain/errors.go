package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks an assessment request that can never succeed.
var ErrInvalidRequest = errors.New("invalid assessment request")

// IndexError reports a grid lookup outside the declared axis range.
type IndexError struct {
	Axis   string
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.Axis, e.Index, e.Length)
}

// DomainError reports a physically invalid input such as a negative
// roughness or a non-monotonic power curve.
type DomainError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

// MalformedGridError reports a structurally inconsistent climate grid.
type MalformedGridError struct {
	Reason string
}

func (e *MalformedGridError) Error() string {
	return "malformed climate grid: " + e.Reason
}

func malformed(format string, args ...any) error {
	return &MalformedGridError{Reason: fmt.Sprintf(format, args...)}
}

// ExtrapolationWarning records that a query fell outside the grid range and
// was clamped to the nearest boundary. It is returned alongside results and
// never aborts a computation.
type ExtrapolationWarning struct {
	Axis      string  `json:"axis"`
	Requested float64 `json:"requested"`
	Clamped   float64 `json:"clamped"`
}

func (w ExtrapolationWarning) String() string {
	return fmt.Sprintf("%s %g outside grid range, clamped to %g", w.Axis, w.Requested, w.Clamped)
}
