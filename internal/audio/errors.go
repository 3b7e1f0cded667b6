package audio

import (
	"errors"
	"fmt"
)

// Kind classifies conversion failures for one file.
type Kind string

const (
	KindFileTooLarge            Kind = "file_too_large"
	KindProbeFailed             Kind = "probe_failed"
	KindStreamOpenFailed        Kind = "stream_open_failed"
	KindFormatNegotiationFailed Kind = "format_negotiation_failed"
	KindReadFailed              Kind = "read_failed"
	KindWriteFailed             Kind = "write_failed"
	KindCancelled               Kind = "cancelled"
)

// Error is a kind-aware conversion error tied to a single file.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

// Error formats the failure for logs and job messages.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is a conversion Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var convErr *Error
	if !errors.As(err, &convErr) {
		return false
	}
	return convErr.Kind == kind
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
