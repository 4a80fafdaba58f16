package oauth

import (
	"errors"
	"net/http"
)

type ErrorKind int

const (
	KindInvalidInput ErrorKind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindExpired
	KindInternal
)

func (k ErrorKind) StatusCode() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindExpired:
		return "expired"
	default:
		return "internal"
	}
}

// FlowError carries a client safe message. Err, when set, is for logs only.
type FlowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func (e *FlowError) StatusCode() int {
	return e.Kind.StatusCode()
}

// AsFlowError extracts a FlowError, treating anything else as internal.
func AsFlowError(err error) *FlowError {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe
	}
	return &FlowError{Kind: KindInternal, Message: "internal server error", Err: err}
}

func newFlowError(kind ErrorKind, message string) *FlowError {
	return &FlowError{Kind: kind, Message: message}
}

func internalError(err error) *FlowError {
	return &FlowError{Kind: KindInternal, Message: "internal server error", Err: err}
}
