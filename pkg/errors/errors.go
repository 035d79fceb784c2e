package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// CompilerError is the interface implemented by all failures of the semantic core.
type CompilerError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // "AlreadyExists", "NotFound", "InvalidArgument", "FailedPrecondition"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

func format(kind string, pos Position, msg string) string {
	if !pos.IsValid() && pos.Source == nil {
		return fmt.Sprintf("%s: %s", kind, msg)
	}
	return fmt.Sprintf("%s at %s: %s", kind, pos, msg)
}

// --- Concrete Error Types ---

// AlreadyExistsError reports a duplicate name, number or species, or a conflicting
// re-declaration.
type AlreadyExistsError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *AlreadyExistsError) Error() string   { return format(e.Kind(), e.Position, e.Msg) }
func (e *AlreadyExistsError) Pos() Position   { return e.Position }
func (e *AlreadyExistsError) Kind() string    { return "AlreadyExists" }
func (e *AlreadyExistsError) Message() string { return e.Msg }
func (e *AlreadyExistsError) Unwrap() error   { return e.Cause }
func (e *AlreadyExistsError) CausedBy(cause error) *AlreadyExistsError {
	e.Cause = cause
	return e
}

// NotFoundError reports a reference to an unknown selector, class, procedure or variable.
type NotFoundError struct {
	Position
	Msg   string
	Cause error
}

func (e *NotFoundError) Error() string   { return format(e.Kind(), e.Position, e.Msg) }
func (e *NotFoundError) Pos() Position   { return e.Position }
func (e *NotFoundError) Kind() string    { return "NotFound" }
func (e *NotFoundError) Message() string { return e.Msg }
func (e *NotFoundError) Unwrap() error   { return e.Cause }
func (e *NotFoundError) CausedBy(cause error) *NotFoundError {
	e.Cause = cause
	return e
}

// InvalidArgumentError reports malformed input: wrong arity, a value of the wrong
// shape, an ambiguous reference.
type InvalidArgumentError struct {
	Position
	Msg   string
	Cause error
}

func (e *InvalidArgumentError) Error() string   { return format(e.Kind(), e.Position, e.Msg) }
func (e *InvalidArgumentError) Pos() Position   { return e.Position }
func (e *InvalidArgumentError) Kind() string    { return "InvalidArgument" }
func (e *InvalidArgumentError) Message() string { return e.Msg }
func (e *InvalidArgumentError) Unwrap() error   { return e.Cause }
func (e *InvalidArgumentError) CausedBy(cause error) *InvalidArgumentError {
	e.Cause = cause
	return e
}

// FailedPreconditionError reports a construct that is well formed but not valid where
// it appears (a super send with no super class, a break outside any loop).
type FailedPreconditionError struct {
	Position
	Msg   string
	Cause error
}

func (e *FailedPreconditionError) Error() string   { return format(e.Kind(), e.Position, e.Msg) }
func (e *FailedPreconditionError) Pos() Position   { return e.Position }
func (e *FailedPreconditionError) Kind() string    { return "FailedPrecondition" }
func (e *FailedPreconditionError) Message() string { return e.Msg }
func (e *FailedPreconditionError) Unwrap() error   { return e.Cause }
func (e *FailedPreconditionError) CausedBy(cause error) *FailedPreconditionError {
	e.Cause = cause
	return e
}

// --- Constructors ---

func AlreadyExists(pos Position, msg string, args ...any) *AlreadyExistsError {
	return &AlreadyExistsError{Position: pos, Msg: fmt.Sprintf(msg, args...)}
}

func NotFound(pos Position, msg string, args ...any) *NotFoundError {
	return &NotFoundError{Position: pos, Msg: fmt.Sprintf(msg, args...)}
}

func InvalidArgument(pos Position, msg string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{Position: pos, Msg: fmt.Sprintf(msg, args...)}
}

func FailedPrecondition(pos Position, msg string, args ...any) *FailedPreconditionError {
	return &FailedPreconditionError{Position: pos, Msg: fmt.Sprintf(msg, args...)}
}

// --- Kind checks ---

// KindOf returns the kind of the first CompilerError in err's chain, or "" if none.
func KindOf(err error) string {
	var ce CompilerError
	if stderrors.As(err, &ce) {
		return ce.Kind()
	}
	return ""
}

func IsAlreadyExists(err error) bool      { return KindOf(err) == "AlreadyExists" }
func IsNotFound(err error) bool           { return KindOf(err) == "NotFound" }
func IsInvalidArgument(err error) bool    { return KindOf(err) == "InvalidArgument" }
func IsFailedPrecondition(err error) bool { return KindOf(err) == "FailedPrecondition" }

// --- Error Reporting ---

// DisplayErrors writes errs to w in a user-friendly format, including the source line
// and a position marker when the source text is available.
func DisplayErrors(w io.Writer, errs []CompilerError) {
	for _, err := range errs {
		pos := err.Pos()
		fmt.Fprintf(w, "%s\n", err.Error())

		if pos.Source == nil || pos.Source.Content == "" {
			continue
		}
		sourceLine := pos.Source.Line(pos.Line)
		if sourceLine == "" {
			continue
		}
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(sourceLine, "\r\n\t "))
		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", col))
		fmt.Fprintln(w)
	}
}
