package protocol

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The kind is kept inside the process so callers
// can branch on it; at the outer boundary only the rendered text survives.
type Kind string

// Kind constants.
const (
	// KindValidation marks malformed input detected before any I/O.
	KindValidation Kind = "validation"

	// KindTransport marks connection, resolution, send or receive failures.
	KindTransport Kind = "transport"

	// KindSerialization marks a failure to encode a message to wire bytes.
	KindSerialization Kind = "serialization"

	// KindProtocol marks a protocol-specific rejection, such as an unsupported CoAP method.
	KindProtocol Kind = "protocol"

	// KindTimeout marks an operation that ran out of time waiting for the network.
	KindTimeout Kind = "timeout"

	// KindInternal marks a failure inside omnisend itself (recovered panics).
	KindInternal Kind = "internal"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Error is the structured error returned by every sender.
type Error struct {
	Kind     Kind     // Failure class
	Protocol Protocol // Protocol of the failed request, may be empty
	Op       string   // Operation that failed (parse, connect, send, receive, ...)
	Message  string   // Human readable description
	Err      error    // Underlying cause, may be nil
}

// Sentinel errors matching any *Error of the same kind with errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrTransport     = &Error{Kind: KindTransport}
	ErrSerialization = &Error{Kind: KindSerialization}
	ErrProtocol      = &Error{Kind: KindProtocol}
	ErrTimeout       = &Error{Kind: KindTimeout}
	ErrInternal      = &Error{Kind: KindInternal}
)

// Error renders the message shown to users.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind-only sentinels (ErrValidation, ErrTimeout, ...).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" || t.Err != nil || t.Protocol != "" || t.Op != "" {
		return e == t
	}
	return e.Kind == t.Kind
}

// Errorf creates an Error of the given kind with a formatted message.
func Errorf(kind Kind, p Protocol, op, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Protocol: p,
		Op:       op,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error of the given kind around err. It returns nil if err is nil.
func Wrap(kind Kind, p Protocol, op string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:     kind,
		Protocol: p,
		Op:       op,
		Message:  message,
		Err:      err,
	}
}

// Validation creates a KindValidation error.
func Validation(p Protocol, op, format string, args ...any) *Error {
	return Errorf(KindValidation, p, op, format, args...)
}

// Unsupported creates a KindProtocol error.
func Unsupported(p Protocol, op, format string, args ...any) *Error {
	return Errorf(KindProtocol, p, op, format, args...)
}

// KindOf returns the kind of err. Errors that are not *Error report
// KindInternal; a nil error reports the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
