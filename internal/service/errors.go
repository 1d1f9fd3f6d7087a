package service

import (
	"errors"
	"fmt"

	"credit-card-account/internal/model"
)

// ServiceError represents a service-level error
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// validationError converts a request validation failure into a ServiceError.
func validationError(err error) error {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &ServiceError{
			Code:    model.ErrCodeValidation,
			Message: ve.Message,
			Err:     err,
		}
	}
	return err
}
