package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// Code is a machine-readable error code returned to API clients.
type Code string

const (
	CodeUnknown                   Code = "UNKNOWN"
	CodeValidation                Code = "VALIDATION_ERROR"
	CodeDuplicateSerial           Code = "DUPLICATE_SERIAL"
	CodeDuplicateIdentity         Code = "DUPLICATE_IDENTITY"
	CodeNotFound                  Code = "NOT_FOUND"
	CodeNotFoundOrAlreadyReturned Code = "NOT_FOUND_OR_ALREADY_RETURNED"
	CodeHasActiveRentals          Code = "HAS_ACTIVE_RENTALS"
	CodeSelfDeletion              Code = "SELF_DELETION"
	CodeQuotaExceeded             Code = "QUOTA_EXCEEDED"
	CodeInsufficientStock         Code = "INSUFFICIENT_STOCK"
	CodeInvalidSubmission         Code = "INVALID_SUBMISSION"
	CodeConsistency               Code = "CONSISTENCY_ERROR"
	CodeInvalidCredentials        Code = "INVALID_CREDENTIALS"
	CodeUnauthenticated           Code = "UNAUTHENTICATED"
	CodeForbidden                 Code = "FORBIDDEN"
)

// Error is a domain error with a stable code and optional metadata.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation                = &Error{Code: CodeValidation, Message: "invalid input"}
	ErrDuplicateSerial           = &Error{Code: CodeDuplicateSerial, Message: "serial number already exists"}
	ErrDuplicateIdentity         = &Error{Code: CodeDuplicateIdentity, Message: "username or email already exists"}
	ErrNotFound                  = &Error{Code: CodeNotFound, Message: "not found"}
	ErrNotFoundOrAlreadyReturned = &Error{Code: CodeNotFoundOrAlreadyReturned, Message: "rental not found or already returned"}
	ErrHasActiveRentals          = &Error{Code: CodeHasActiveRentals, Message: "has active rentals"}
	ErrSelfDeletion              = &Error{Code: CodeSelfDeletion, Message: "you cannot delete your own account"}
	ErrQuotaExceeded             = &Error{Code: CodeQuotaExceeded, Message: "rental limit reached"}
	ErrInsufficientStock         = &Error{Code: CodeInsufficientStock, Message: "not enough stock available"}
	ErrInvalidSubmission         = &Error{Code: CodeInvalidSubmission, Message: "invalid form submission"}
	ErrConsistency               = &Error{Code: CodeConsistency, Message: "inventory consistency violated"}
	ErrInvalidCredentials        = &Error{Code: CodeInvalidCredentials, Message: "invalid username, password, or role"}
	ErrUnauthenticated           = &Error{Code: CodeUnauthenticated, Message: "authentication required"}
	ErrForbidden                 = &Error{Code: CodeForbidden, Message: "access denied"}
)

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMeta returns a copy of e with key set in its metadata.
func (e *Error) WithMeta(key, value string) *Error {
	md := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	return &Error{Code: e.Code, Message: e.Message, Metadata: md, Err: e.Err}
}

func ValidationError(message string) *Error {
	return NewError(CodeValidation, message)
}

func NotFound(entity string, id int32) *Error {
	return NewError(CodeNotFound, fmt.Sprintf("%s not found", entity)).
		WithMeta("entity", entity).
		WithMeta("id", strconv.Itoa(int(id)))
}

func QuotaExceeded(maxRentals int32) *Error {
	return NewError(CodeQuotaExceeded,
		fmt.Sprintf("You have reached your maximum rental limit (%d). Please return an item before renting another.", maxRentals)).
		WithMeta("max_rentals", strconv.Itoa(int(maxRentals)))
}

func InsufficientStock(remaining int32) *Error {
	return NewError(CodeInsufficientStock,
		fmt.Sprintf("Not enough stock available. Only %d unit(s) remaining.", remaining)).
		WithMeta("remaining", strconv.Itoa(int(remaining)))
}

func HasActiveRentals(entity string, count int32) *Error {
	return NewError(CodeHasActiveRentals,
		fmt.Sprintf("Cannot delete this %s: %d active rental(s) must be returned first.", entity, count)).
		WithMeta("active_rentals", strconv.Itoa(int(count)))
}

// ConsistencyError wraps a failed second step of a stock-affecting update.
// It is fatal for the request and always rolls the transaction back.
func ConsistencyError(operation string, err error) *Error {
	return &Error{
		Code:     CodeConsistency,
		Message:  fmt.Sprintf("inventory consistency violated during %s", operation),
		Metadata: map[string]string{"operation": operation},
		Err:      err,
	}
}

// GetCode extracts the code from any error, CodeUnknown if it carries none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
