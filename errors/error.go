package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/rs/zerolog"
)

const InvalidCode = -1

type Error struct {
	message string
	code    int
	cause   error
	detail  map[string]interface{}
}

// Error implements error interface
func (e *Error) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

// Format prints detail fields with %+v
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') && len(e.detail) > 0 {
			_, _ = fmt.Fprintf(s, "%s %v", e.Error(), e.detail)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// Message returns message of error
func (e *Error) Message() string {
	return e.message
}

// Code returns code of error
func (e *Error) Code() int {
	return e.code
}

// Cause returns error cause of error
func (e *Error) Cause() error {
	return e.cause
}

// Unwrap returns error cause of error to implement Unwrap interface
func (e *Error) Unwrap() error {
	return e.cause
}

// Detail returns custom field value added by With
func (e *Error) Detail(key string) (interface{}, bool) {
	v, ok := e.detail[key]
	return v, ok
}

// WithCode updates code in error
func (e *Error) WithCode(code int) *Error {
	e.code = code
	return e
}

// With adds custom field in detail
func (e *Error) With(key string, value interface{}) *Error {
	if e.detail == nil {
		e.detail = make(map[string]interface{})
	}
	e.detail[key] = value
	return e
}

// Log adds error with detail fields in Zerolog logger
func (e *Error) Log(log *zerolog.Event) *zerolog.Event {
	log.Err(e)
	e.addDetailToLogger(log)
	return log
}

func (e *Error) addDetailToLogger(log *zerolog.Event) {
	if e.cause != nil {
		var errorCause *Error
		if stderrors.As(e.cause, &errorCause) {
			errorCause.addDetailToLogger(log)
		}
	}
	for key, value := range e.detail {
		log.Interface(key, value)
	}
}

// New creates new error
func New(message string) *Error {
	return &Error{
		message: message,
		code:    InvalidCode,
	}
}

// Wrap create new error with underlying error cause
func Wrap(e error, message string) *Error {
	return &Error{
		message: message,
		code:    InvalidCode,
		cause:   e,
	}
}

// LogError adds error with detail fields in Zerolog logger
func LogError(log *zerolog.Event, err error) *zerolog.Event {
	log.Err(err)
	var detailErr *Error
	if stderrors.As(err, &detailErr) {
		detailErr.addDetailToLogger(log)
	}
	return log
}

// Is exports Is from std errors.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Unwrap exports Unwrap from std errors.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// As exports As from std errors.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
