package domain

import "errors"

// Kind classifies errors surfaced to callers.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindAuth
	KindNotFound
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Error is a user-facing error. Msg is safe to return verbatim.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is lets errors.Is match an *Error against the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrUnauthorized:
		return e.Kind == KindAuth
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// Validation returns a user-correctable input error.
func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

// Conflict returns a uniqueness or limit violation.
func Conflict(msg string) error { return &Error{Kind: KindConflict, Msg: msg} }

// Unauthorized returns an authentication error.
func Unauthorized() error { return &Error{Kind: KindAuth, Msg: "Unauthorized"} }

// Message extracts the user-facing message of err, or "" when err is not an *Error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
