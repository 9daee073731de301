package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is how a failed customer, product or order write is reported to
// the services, whichever database driver produced it.
type ErrorCode string

const (
	// CodeValidation: a NOT NULL or CHECK constraint rejected the row.
	CodeValidation ErrorCode = "validation"
	// CodeNotFound: the customer, product or order id has no row.
	CodeNotFound ErrorCode = "not_found"
	// CodeConflict: a unique index rejected the row, in practice a customer
	// email that is already registered.
	CodeConflict ErrorCode = "conflict"
	// CodePreconditionFailed: an order line points at a customer or product
	// that a concurrent request removed.
	CodePreconditionFailed ErrorCode = "precondition_failed"
	// CodeRetryable: deadlock, serialization failure or timeout. The whole
	// order or bulk call may be replayed.
	CodeRetryable ErrorCode = "retryable"
	// CodeInternal: anything else. Services report it as SERVER_ERROR.
	CodeInternal ErrorCode = "internal"
)

// Error is a store failure tagged with the repository operation that hit it,
// such as "customer.create" or "order.create".
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap tags a driver error from op with code. The driver error stays
// reachable through errors.As, so a pgconn.PgError can still be inspected.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf returns "" for errors that never went through the store mapping,
// which the HTTP layer treats as internal.
func CodeOf(err error) ErrorCode {
	var storeErr *Error
	if !errors.As(err, &storeErr) {
		return ""
	}
	return storeErr.Code
}
