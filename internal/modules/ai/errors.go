package ai

import "fmt"

// ErrorKind classifies model invocation failures so handlers can map them
// to the right status and message.
type ErrorKind int

const (
	// KindUnavailable covers transport failures, provider errors and timeouts.
	KindUnavailable ErrorKind = iota
	// KindBlocked means the provider refused the prompt (safety filters).
	KindBlocked
	// KindEmpty means the provider answered with no usable text.
	KindEmpty
)

// Error is a classified model invocation failure.
type Error struct {
	Kind        ErrorKind
	Message     string
	StatusCode  int    // provider HTTP status, when known
	BlockReason string // set when Kind == KindBlocked
	Err         error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindBlocked && e.BlockReason != "":
		return fmt.Sprintf("%s: %s", e.Message, e.BlockReason)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

func unavailable(message string, statusCode int, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, StatusCode: statusCode, Err: cause}
}

func blocked(reason string) *Error {
	return &Error{Kind: KindBlocked, Message: "prompt was blocked by the provider", BlockReason: reason}
}

func empty() *Error {
	return &Error{Kind: KindEmpty, Message: "empty response from AI"}
}
