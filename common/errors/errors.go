package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeInternal    ErrorType = "INTERNAL"
	ErrTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrTypeExtraction  ErrorType = "EXTRACTION"
	ErrTypeSubmission  ErrorType = "SUBMISSION"
)

type DomainError struct {
	Type    ErrorType
	Message string
	// Field names the offending request field for VALIDATION errors.
	Field string
	Err   error
	Stack []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// Validation reports a missing or malformed request field.
func Validation(field, message string, err error) *DomainError {
	e := New(ErrTypeValidation, message, err)
	e.Field = field
	return e
}

func Required(field string) *DomainError {
	return Validation(field, field+" is required", nil)
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func Storage(message string, err error) *DomainError {
	return New(ErrTypeStorage, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

func Extraction(message string, err error) *DomainError {
	return New(ErrTypeExtraction, message, err)
}

func Submission(message string, err error) *DomainError {
	return New(ErrTypeSubmission, message, err)
}

// As returns the outermost DomainError in err's chain.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// TypeOf returns the kind of the outermost DomainError, or INTERNAL for foreign errors.
func TypeOf(err error) ErrorType {
	if de, ok := As(err); ok {
		return de.Type
	}
	return ErrTypeInternal
}

func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrTypeNotFound
}

func IsValidation(err error) bool {
	return err != nil && TypeOf(err) == ErrTypeValidation
}
