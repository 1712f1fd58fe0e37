// Package errors provides error handling for glbind.
//
// This package re-exports github.com/cockroachdb/errors and adds the failure
// kinds a generator run can end in, plus the pipeline stage a failure came
// from. Kinds and stages are both checked with Is:
//
//	if errors.Is(err, errors.ErrReferenceNotFound) {
//	    // a require named something no registry declares
//	}
//
// ExitCode turns any error returned by the pipeline into the process exit code.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing hints
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	UnwrapAll = crdb.UnwrapAll
)

// Failure kinds. Wrap these to add context while preserving the kind.
var (
	// ErrInvalidArguments indicates a required input is absent or malformed
	ErrInvalidArguments = New("invalid arguments")

	// ErrParse indicates a document could not be parsed or has the wrong root
	ErrParse = New("parse failure")

	// ErrIO indicates opening, reading or writing a file failed, including short reads
	ErrIO = New("i/o failure")

	// ErrOutOfMemory is reserved for allocation failure while buffering a file.
	// The Go runtime aborts on allocation failure, so nothing returns it today.
	ErrOutOfMemory = New("out of memory")

	// ErrReferenceNotFound indicates a require names a type, enum or command
	// that no loaded registry declares
	ErrReferenceNotFound = New("reference not found")

	// ErrFileTooLarge indicates a file exceeds the configured buffering limit
	ErrFileTooLarge = New("file too large")

	// ErrStale indicates --check found the output out of date
	ErrStale = New("output is stale")
)

// Pipeline stages. A stage is attached with MarkStage and only influences the
// exit code; the message of the wrapped error is unchanged.
var (
	StageLoad     = New("stage: registry load")
	StageParse    = New("stage: registry parse")
	StageEmit     = New("stage: emit")
	StageTemplate = New("stage: template read")
	StageWrite    = New("stage: output write")
)

// MarkStage records that err happened during stage. A nil err stays nil.
func MarkStage(err error, stage error) error {
	if err == nil {
		return nil
	}
	return Mark(err, stage)
}

// Exit codes returned by the glbind binary.
const (
	ExitOK           = 0
	ExitUnknown      = 1
	ExitInvalidArgs  = 2
	ExitLoad         = 3
	ExitParse        = 4
	ExitResolve      = 5
	ExitEmit         = 6
	ExitTemplateRead = 7
	ExitOutputWrite  = 8
	ExitStale        = 9
	ExitFileTooLarge = 10
	ExitOutOfMemory  = 11
)

// ExitCode maps an error to the process exit code. Specific kinds win over
// stages: a missing reference found while emitting exits with ExitResolve,
// not ExitEmit.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case Is(err, ErrInvalidArguments):
		return ExitInvalidArgs
	case Is(err, ErrReferenceNotFound):
		return ExitResolve
	case Is(err, ErrFileTooLarge):
		return ExitFileTooLarge
	case Is(err, ErrOutOfMemory):
		return ExitOutOfMemory
	case Is(err, ErrStale):
		return ExitStale
	case Is(err, ErrParse), Is(err, StageParse):
		return ExitParse
	case Is(err, StageTemplate):
		return ExitTemplateRead
	case Is(err, StageWrite):
		return ExitOutputWrite
	case Is(err, StageLoad):
		return ExitLoad
	case Is(err, StageEmit):
		return ExitEmit
	default:
		return ExitUnknown
	}
}
