package domain

import "errors"

// Kind classifies failures reported to callers and the identity provider.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindNotFound
	KindAlreadyExists
	KindFailedPrecondition
	KindInvalidArgument
	KindUnavailable
	KindResourceExhausted
	KindPermissionDenied
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not-found"
	case KindAlreadyExists:
		return "already-exists"
	case KindFailedPrecondition:
		return "failed-precondition"
	case KindInvalidArgument:
		return "invalid-argument"
	case KindUnavailable:
		return "unavailable"
	case KindResourceExhausted:
		return "resource-exhausted"
	case KindPermissionDenied:
		return "permission-denied"
	default:
		return "internal"
	}
}

// Status is the upper snake case name used on the wire.
func (k Kind) Status() string {
	switch k {
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindAlreadyExists:
		return "ALREADY_EXISTS"
	case KindFailedPrecondition:
		return "FAILED_PRECONDITION"
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindUnavailable:
		return "UNAVAILABLE"
	case KindResourceExhausted:
		return "RESOURCE_EXHAUSTED"
	case KindPermissionDenied:
		return "PERMISSION_DENIED"
	default:
		return "INTERNAL"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf reports the kind carried by err. Errors outside the taxonomy are
// internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrAlreadyExists      = &Error{Kind: KindAlreadyExists}
	ErrFailedPrecondition = &Error{Kind: KindFailedPrecondition}
	ErrInternal           = &Error{Kind: KindInternal}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrUnavailable        = &Error{Kind: KindUnavailable}
	ErrResourceExhausted  = &Error{Kind: KindResourceExhausted}
	ErrPermissionDenied   = &Error{Kind: KindPermissionDenied}
)

const (
	MsgUnauthenticated    = "User is not properly authenticated."
	MsgCodeNotFound       = "Invitation code not found or already used."
	MsgAlreadyEnrolled    = "User is already enrolled in the study."
	MsgNoInvitation       = "No valid invitation code found for this user."
	MsgRecordMismatch     = "User document does not exist or contains incorrect invitation code."
	MsgInternal           = "Internal server error."
	MsgEnrollmentClosed   = "Enrollment is currently closed."
	MsgProductionReset    = "Resetting invitation codes in production requires force."
	MsgInvalidCodeRequest = "Code count and length must be positive."
)
