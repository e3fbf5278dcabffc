package ratings

import "errors"

// Kind classifies engine failures. The HTTP boundary owns the mapping from
// kinds to status codes; engine logic never touches statuses.
type Kind int

const (
	// KindInternal is any unexpected store or processing failure.
	KindInternal Kind = iota
	// KindInvalidInput is a failed field validation or malformed payload.
	KindInvalidInput
	// KindUnauthenticated means credentials were absent or invalid.
	KindUnauthenticated
	// KindForbidden means the caller lacks the required role or ownership.
	KindForbidden
	// KindNotFound means a referenced movie or review does not exist.
	KindNotFound
	// KindConflict is a duplicate-identifier write.
	KindConflict
)

// Error is the engine's tagged error type.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func invalidInput(message string) error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

func notFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

func internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
