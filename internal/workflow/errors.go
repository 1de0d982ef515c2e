package workflow

import (
	"errors"
	"fmt"
)

// Kind discriminates the error family raised across the toolkit. Workflow,
// template, filesystem, and serialization faults surface as an *Error
// carrying one of these; exporter-specific rejections (such as Makefile
// path restrictions) and argument checks return plain errors.
type Kind int

const (
	// KindInvalidName reports an empty or ill-formed workflow, job, or path name.
	KindInvalidName Kind = iota + 1
	// KindEmptyJob reports a job declared with no inputs and no outputs.
	KindEmptyJob
	// KindDuplicateJob reports a job identifier that is already in use.
	KindDuplicateJob
	// KindUnknownJob reports a job identifier that is not part of the workflow.
	KindUnknownJob
	// KindDuplicatePath reports a path appearing twice within a job declaration.
	KindDuplicatePath
	// KindDoubleProducer reports an output path already produced by another job.
	KindDoubleProducer
	// KindCycle reports a mutation that would make the job graph cyclic.
	KindCycle
	// KindTemplate reports a missing variable or malformed template at render time.
	KindTemplate
	// KindFilesystem reports a stat or I/O failure other than not-found.
	KindFilesystem
	// KindSerialization reports a malformed document or an invariant violation on reload.
	KindSerialization
)

// String returns the spec-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidName:
		return "InvalidName"
	case KindEmptyJob:
		return "EmptyJob"
	case KindDuplicateJob:
		return "DuplicateJob"
	case KindUnknownJob:
		return "UnknownJob"
	case KindDuplicatePath:
		return "DuplicatePath"
	case KindDoubleProducer:
		return "DoubleProducer"
	case KindCycle:
		return "Cycle"
	case KindTemplate:
		return "TemplateError"
	case KindFilesystem:
		return "FilesystemError"
	case KindSerialization:
		return "SerializationError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the concrete error type of the family. Path is set for
// filesystem faults; Err carries the underlying cause, if any.
type Error struct {
	Kind Kind
	Msg  string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path %q)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// HasKind reports whether err is, or wraps, an *Error of the given kind.
func HasKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
