// Package errs defines the pipeline's error taxonomy. Workers classify
// failures with the Is* helpers to decide whether an error sinks one event,
// the whole invocation, or nothing at all.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindNotFound marks a source object that is already gone. Workers treat
	// it as "already processed" and skip silently.
	KindNotFound Kind = "not_found"
	// KindDecode marks a payload that cannot be parsed as an image.
	KindDecode Kind = "decode"
	// KindStore marks a blob or metadata backend failure. Fatal to the
	// current event only.
	KindStore Kind = "store"
	// KindTransport marks a queue or dispatch failure. Fatal to the whole
	// invocation.
	KindTransport Kind = "transport"
)

// Error wraps a cause with its taxonomy kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: [%s] %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap classifies err under kind, preserving the chain. Returns nil for a
// nil err.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func New(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool  { return is(err, KindNotFound) }
func IsDecode(err error) bool    { return is(err, KindDecode) }
func IsStore(err error) bool     { return is(err, KindStore) }
func IsTransport(err error) bool { return is(err, KindTransport) }
