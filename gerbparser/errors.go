package gerbparser

import (
	"fmt"
)

// FormatError reports a malformed or missing %FS%/%MO% specification, or
// any other structural defect in the command stream.
type FormatError struct {
	Line    int
	Command string
	Reason  string
}

func (e *FormatError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %q: %s", e.Line, e.Command, e.Reason)
}

// UnknownApertureError reports a D-code referenced before its %AD%
// definition, or a draw/flash attempted with no aperture selected.
type UnknownApertureError struct {
	Line int
	Code int
}

func (e *UnknownApertureError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("line %d: no aperture selected", e.Line)
	}
	return fmt.Sprintf("line %d: aperture D%d is not defined", e.Line, e.Code)
}

// MacroEvaluationError wraps a failure inside aperture or macro
// evaluation: division by zero, malformed expression, bad parameters.
type MacroEvaluationError struct {
	Line    int
	Command string
	Err     error
}

func (e *MacroEvaluationError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Command, e.Err)
}

func (e *MacroEvaluationError) Unwrap() error {
	return e.Err
}

// ArcResolutionError reports a single-quadrant arc whose center could not
// be disambiguated: no candidate satisfies both the radius-consistency
// and the quarter-turn constraints.
type ArcResolutionError struct {
	Line    int
	Command string
	Reason  string
}

func (e *ArcResolutionError) Error() string {
	return fmt.Sprintf("line %d: %q: %s", e.Line, e.Command, e.Reason)
}

// TriangulationError reports a region fill that failed for a reason other
// than tolerable degeneracy.
type TriangulationError struct {
	Line int
	Err  error
}

func (e *TriangulationError) Error() string {
	return fmt.Sprintf("line %d: region triangulation: %v", e.Line, e.Err)
}

func (e *TriangulationError) Unwrap() error {
	return e.Err
}

// Warning records a command that was skipped instead of aborting the
// parse.
type Warning struct {
	Line    int
	Command string
	Reason  string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %q: %s", w.Line, w.Command, w.Reason)
}
