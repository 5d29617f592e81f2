package storage

import (
	"fmt"
	"github.com/ValentinKolb/kvfacade/lib/value"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures a Storage.
type Options struct {
	// ProtectedFields are record fields that Update keeps from the stored
	// element when the new record omits them or leaves them empty.
	ProtectedFields []string
}

// DefaultOptions returns the default options, protecting the "password" field.
func DefaultOptions() Options {
	return Options{
		ProtectedFields: []string{"password"},
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the backend error that caused it.
//
// Errors compare by code, so errors.Is(err, ErrTypeMismatch) matches every
// type mismatch regardless of its message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
	Err  error   // The underlying cause, set for backend failures

	// Shapes of the merge operands, set for type mismatches
	Existing value.Kind
	Incoming value.Kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("StorageError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("StorageError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

var (
	ErrInvalidArgument = NewError(RetCInvalidArgument, "invalid argument")
	ErrTypeMismatch    = NewError(RetCTypeMismatch, "type mismatch")
	ErrInvalidKey      = NewError(RetCInvalidKey, "invalid key")
	ErrBackendFailure  = NewError(RetCBackendFailure, "backend failure")
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess         RetCode = iota // 0: Operation succeeded.
	RetCInvalidArgument                // 1: An argument was missing, empty or of the wrong shape.
	RetCTypeMismatch                   // 2: Insert could not merge the existing and the incoming value.
	RetCInvalidKey                     // 3: The stored value has a shape the operation can't work on.
	RetCBackendFailure                 // 4: The backend call itself failed.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInvalidArgument:
		return "InvalidArgument"
	case RetCTypeMismatch:
		return "TypeMismatch"
	case RetCInvalidKey:
		return "InvalidKey"
	case RetCBackendFailure:
		return "BackendFailure"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func invalidArgument(op string, format string, args ...any) *Error {
	return NewError(RetCInvalidArgument, op+": "+fmt.Sprintf(format, args...))
}

func invalidKey(op string, key string, stored any, expected string) *Error {
	return NewError(RetCInvalidKey, fmt.Sprintf("%s: key %q holds %s, expected %s", op, key, value.JSONType(stored), expected))
}

// backendFailure wraps err unless it already is a storage error
func backendFailure(op string, err error) error {
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{Code: RetCBackendFailure, Msg: op, Err: err}
}

// codeOf returns the return code carried by err
func codeOf(err error) RetCode {
	switch e := err.(type) {
	case nil:
		return RetCSuccess
	case *Error:
		return e.Code
	default:
		return RetCBackendFailure
	}
}
