package errs

import "errors"

var (
	ErrRequestValidate = errors.New("request validation")
	ErrMissingFields   = errors.New("missing required fields")
	ErrInvalidID       = errors.New("invalid id")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("duplicate event found")
)

type Error struct {
	err error
}

func NewError(err error) *Error {
	return &Error{
		err: err,
	}
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

type ValidateError struct {
	err     error
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields"`
}

func NewValidateError(err error) *ValidateError {
	return &ValidateError{
		err:     err,
		Message: err.Error(),
		Fields:  make(map[string]interface{}),
	}
}

func NewValidateFieldsError(err error, fields map[string]interface{}) *ValidateError {
	return &ValidateError{
		err:     err,
		Message: err.Error(),
		Fields:  fields,
	}
}

// NewMissingFieldsError reports required fields that are absent from a payload.
func NewMissingFieldsError(names []string) *ValidateError {
	fields := make(map[string]interface{}, len(names))
	for _, name := range names {
		fields[name] = "required field missing"
	}
	return NewValidateFieldsError(ErrMissingFields, fields)
}

func (e *ValidateError) Error() string {
	return e.err.Error()
}

func (e *ValidateError) Unwrap() error {
	return e.err
}

// ConflictError reports the fields on which a write collides with a stored record.
type ConflictError struct {
	Fields []string `json:"fields"`
}

func NewConflictError(fields ...string) *ConflictError {
	return &ConflictError{Fields: fields}
}

func (e *ConflictError) Error() string {
	return ErrConflict.Error()
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
