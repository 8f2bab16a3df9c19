package serviceerrors

import (
	"errors"

	"github.com/terra-ansible-demo/status-page/internal/messages"
)

type ServiceError struct {
	messageCode   *messages.MessageCode
	messageParams []any
	cause         error
}

func (e *ServiceError) Error() string {
	return messages.GetErrorMessage(e.messageCode, e.messageParams...)
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

func (e *ServiceError) MessageCode() *messages.MessageCode {
	return e.messageCode
}

func (e *ServiceError) MessageParams() []any {
	return e.messageParams
}

func NewServiceError(messageCode *messages.MessageCode, messageParams ...any) *ServiceError {
	return &ServiceError{
		messageCode:   messageCode,
		messageParams: messageParams,
	}
}

// WithCause keeps the underlying error available to errors.Is and errors.As.
func (e *ServiceError) WithCause(err error) *ServiceError {
	return &ServiceError{
		messageCode:   e.messageCode,
		messageParams: e.messageParams,
		cause:         err,
	}
}

// AsServiceError converts any error into a ServiceError, falling back to
// UnknownError when the error does not already carry a message code.
func AsServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return NewServiceError(messages.UnknownError, "Error", err.Error()).WithCause(err)
}
