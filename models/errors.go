package models

import "fmt"

type ErrorKind string

const (
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindInvalidTransition  ErrorKind = "INVALID_TRANSITION"
	KindConflict           ErrorKind = "CONFLICT"
	KindPreconditionFailed ErrorKind = "PRECONDITION_FAILED"
	KindValidation         ErrorKind = "VALIDATION_ERROR"
)

// DomainError messages are written for clients: stable, role-agnostic, and
// never revealing whether a hidden record exists.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func ErrNotFound(what string) error {
	return &DomainError{Kind: KindNotFound, Message: what + " not found"}
}

func ErrForbidden() error {
	return &DomainError{Kind: KindForbidden, Message: "you do not have access to this resource"}
}

func ErrInvalidTransition(from, to ReportStatus) error {
	return &DomainError{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot change report status from %s to %s", from, to),
	}
}

func ErrConflict(reportID string) error {
	return &DomainError{
		Kind:    KindConflict,
		Message: fmt.Sprintf("report %s was modified concurrently, reload and retry", reportID),
	}
}

func ErrPreconditionFailed(msg string) error {
	return &DomainError{Kind: KindPreconditionFailed, Message: msg}
}

func ErrValidation(msg string) error {
	return &DomainError{Kind: KindValidation, Message: msg}
}

// KindOf returns the taxonomy kind, or "" for unclassified errors.
func KindOf(err error) ErrorKind {
	if de, ok := err.(*DomainError); ok {
		return de.Kind
	}
	return ""
}
