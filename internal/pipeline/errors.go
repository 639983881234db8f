package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Run matches exactly one of them with
// errors.Is, unless the run was canceled through its context.
var (
	ErrSourceNotFound   = errors.New("source not found")
	ErrSourceRead       = errors.New("source read failure")
	ErrInvalidColumn    = errors.New("invalid column")
	ErrEncoding         = errors.New("encoding error")
	ErrMalformedHeader  = errors.New("malformed header")
	ErrMalformedRow     = errors.New("malformed row")
	ErrDestinationWrite = errors.New("destination write failure")
)

// Error is a failed run: the stage it failed in, its kind and the cause.
// Typed causes (*selector.ColumnError, *textenc.DecodeError, *csv.RowError)
// stay reachable through errors.As.
type Error struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

func fail(stage Stage, kind, err error) *Error {
	return &Error{Stage: stage, Kind: kind, Err: err}
}
