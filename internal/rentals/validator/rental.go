package validator

import (
	"errors"
	"fmt"
	"lockrent/pkg/logger"
	"lockrent/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type RentalValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRentalValidator(log *logger.Logger) *RentalValidator {
	v := validator.New()

	log.Debug("Rental validator initialized successfully")

	return &RentalValidator{
		validate: v,
		logger:   log,
	}
}

func (v *RentalValidator) ValidateEndRental(req *model.EndRentalRequest) error {
	return v.validateStruct(req)
}

func (v *RentalValidator) ValidateLockStatus(req *model.LockStatusRequest) error {
	return v.validateStruct(req)
}

func (v *RentalValidator) ValidateRetire(req *model.RetireLockRequest) error {
	return v.validateStruct(req)
}

// ValidateLock checks a lock before it is stored.
func (v *RentalValidator) ValidateLock(lock *model.Lock) error {
	if err := v.validateStruct(lock); err != nil {
		return err
	}
	if lock.Rental != nil && lock.Rental.StartTime.IsZero() {
		return ValidationErrors{
			ValidationError{
				Field:   "StartTime",
				Message: "start_time is required for an active rental",
			},
		}
	}
	return nil
}

func (v *RentalValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *RentalValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "len":
			message = fmt.Sprintf("%s must be exactly %s bytes", err.Field(), err.Param())
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		case "mac":
			message = fmt.Sprintf("%s must be a valid MAC address", err.Field())
		case "latitude", "longitude":
			message = fmt.Sprintf("%s must be a valid %s", err.Field(), err.Tag())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
