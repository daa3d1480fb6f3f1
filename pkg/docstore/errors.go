package docstore

import "errors"

// StoreError represents a domain error from registry operations.
//
// These are business logic errors (record not found, caller is not the
// owner, duplicate name) as opposed to infrastructure errors (disk failure,
// network failure), which are wrapped and reported with ErrIOError or
// ErrUnavailable codes.
//
// Callers branch on the Code: "not found", "not allowed", and "wrong key"
// require different user actions and must stay distinguishable all the way
// to the surface.
type StoreError struct {
	// Code is the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Address is the account address the error relates to, in hex
	// (empty if not applicable).
	Address string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Address != "" {
		return e.Message + ": " + e.Address
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the referenced registry or document record
	// does not exist.
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates a record already exists at the derived
	// address (duplicate file name for the owner).
	ErrAlreadyExists

	// ErrNotOwner indicates the caller is not the record's owner.
	// Authorization failures are non-retriable and never produce state
	// changes.
	ErrNotOwner

	// ErrRecipientNotFound indicates no share entry exists for the
	// recipient being revoked.
	ErrRecipientNotFound

	// ErrInvalidArgument indicates malformed input: empty or oversized
	// file name, oversized pointer, zero identity.
	ErrInvalidArgument

	// ErrUnavailable indicates a transient backing-store failure. The only
	// class eligible for retry, and only on the read path.
	ErrUnavailable

	// ErrIOError indicates a non-transient storage failure.
	ErrIOError
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not found"
	case ErrAlreadyExists:
		return "already exists"
	case ErrNotOwner:
		return "not owner"
	case ErrRecipientNotFound:
		return "recipient not found"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrUnavailable:
		return "unavailable"
	case ErrIOError:
		return "io error"
	default:
		return "unknown"
	}
}

// NewError builds a StoreError with the given code and message.
func NewError(code ErrorCode, message string) *StoreError {
	return &StoreError{Code: code, Message: message}
}

// NewErrorAt builds a StoreError tied to an account address.
func NewErrorAt(code ErrorCode, message, addr string) *StoreError {
	return &StoreError{Code: code, Message: message, Address: addr}
}

// CodeOf extracts the ErrorCode from err, if it is (or wraps) a StoreError.
// The second return is false for non-store errors.
func CodeOf(err error) (ErrorCode, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// HasCode reports whether err is a StoreError with the given code.
func HasCode(err error, code ErrorCode) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return HasCode(err, ErrNotFound)
}

// IsUnavailable reports whether err is a transient store failure eligible
// for read-path retry.
func IsUnavailable(err error) bool {
	return HasCode(err, ErrUnavailable)
}
