package upstream

import (
	"errors"
	"fmt"
)

// Kind classifies an outbound failure so callers can choose to degrade, retry or propagate.
type Kind int

const (
	KindUnknown Kind = iota
	KindUpstreamUnavailable
	KindNotFound
	KindMalformedResponse
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindUpstreamUnavailable:
		return "upstream unavailable"
	case KindNotFound:
		return "not found"
	case KindMalformedResponse:
		return "malformed upstream response"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by every adapter.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func Unavailable(op string, err error) error {
	return &Error{Kind: KindUpstreamUnavailable, Op: op, Err: err}
}

func Malformed(op string, err error) error {
	return &Error{Kind: KindMalformedResponse, Op: op, Err: err}
}

func NotFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Err: fmt.Errorf(format, args...)}
}

func InvalidInput(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsUnavailable(err error) bool  { return KindOf(err) == KindUpstreamUnavailable }
func IsMalformed(err error) bool    { return KindOf(err) == KindMalformedResponse }
func IsInvalidInput(err error) bool { return KindOf(err) == KindInvalidInput }

// IsRetryable reports whether another attempt could succeed. Only transport-level failures qualify.
func IsRetryable(err error) bool { return IsUnavailable(err) }
