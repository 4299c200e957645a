package model

import (
	"errors"
	"fmt"
)

// ErrorClass separates recoverable equip failures from caller defects.
type ErrorClass string

const (
	// ErrorClassEquip is an expected feasibility failure. No state was changed.
	ErrorClassEquip ErrorClass = "equip"

	// ErrorClassLookup indicates an unknown item, chassis or upgrade identifier.
	ErrorClassLookup ErrorClass = "lookup"

	// ErrorClassProgrammer indicates a caller defect, such as building a
	// command for an internal item.
	ErrorClassProgrammer ErrorClass = "programmer"

	// ErrorClassInternal indicates an inconsistent model state.
	ErrorClassInternal ErrorClass = "internal"
)

// Error is a classified error raised by the loadout model and its commands.
type Error struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code is an optional error code for programmatic handling.
	Code string `json:"code,omitempty"`

	// Resource is the item, chassis or upgrade id involved, if any.
	Resource string `json:"resource,omitempty"`

	// Operation is the command being built or applied.
	Operation string `json:"operation,omitempty"`

	// Result is set for equip-class errors.
	Result *EquipResult `json:"result,omitempty"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`

	// Details contains additional context-specific information.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Result != nil && e.Result.HasLocation {
		msg = fmt.Sprintf("%s at %s", msg, e.Result.Location)
	}
	switch {
	case e.Resource != "" && e.Operation != "":
		msg = fmt.Sprintf("[%s] %s (resource=%s, operation=%s)", e.Class, msg, e.Resource, e.Operation)
	case e.Resource != "":
		msg = fmt.Sprintf("[%s] %s (resource=%s)", e.Class, msg, e.Resource)
	default:
		msg = fmt.Sprintf("[%s] %s", e.Class, msg)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on class and code so sentinel comparisons work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewEquipError wraps a failed EquipResult.
func NewEquipError(r EquipResult) *Error {
	res := r
	return &Error{
		Class:   ErrorClassEquip,
		Message: r.Type.Message(),
		Code:    string(r.Type),
		Result:  &res,
	}
}

// NewLookupError reports an unknown identifier of the given kind.
func NewLookupError(kind, id string) *Error {
	return &Error{
		Class:    ErrorClassLookup,
		Message:  fmt.Sprintf("unknown %s", kind),
		Code:     ErrCodeNotFound,
		Resource: id,
	}
}

// NewProgrammerError reports a caller defect.
func NewProgrammerError(message string) *Error {
	return &Error{
		Class:   ErrorClassProgrammer,
		Message: message,
		Code:    ErrCodeInvalidArgument,
	}
}

// NewInternalError reports an inconsistent state.
func NewInternalError(message string, err error) *Error {
	return &Error{
		Class:   ErrorClassInternal,
		Message: message,
		Code:    ErrCodeInternal,
		Err:     err,
	}
}

// WithResource adds resource context to an error.
func (e *Error) WithResource(id string) *Error {
	e.Resource = id
	return e
}

// WithOperation adds operation context to an error.
func (e *Error) WithOperation(operation string) *Error {
	e.Operation = operation
	return e
}

// WithDetail adds a detail field to the error context.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsEquip returns true if err is a recoverable equip failure.
func IsEquip(err error) bool {
	return classOf(err) == ErrorClassEquip
}

// IsLookup returns true if err reports an unknown identifier.
func IsLookup(err error) bool {
	return classOf(err) == ErrorClassLookup
}

// IsProgrammer returns true if err reports a caller defect.
func IsProgrammer(err error) bool {
	return classOf(err) == ErrorClassProgrammer
}

// ResultOf extracts the EquipResult carried by an equip-class error.
func ResultOf(err error) (EquipResult, bool) {
	var e *Error
	if errors.As(err, &e) && e.Result != nil {
		return *e.Result, true
	}
	return EquipResult{}, false
}

func classOf(err error) ErrorClass {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}

// Common error codes.
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeInternal        = "INTERNAL_ERROR"
)
