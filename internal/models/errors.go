package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError wraps msg so that errors.Is(err, ErrValidation) holds.
func ValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// ValidateStruct runs the package validator and converts field errors into a
// single ErrValidation carrying readable messages.
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ValidationError(err.Error())
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return ValidationError(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return ValidationError(fmt.Sprintf("%s must be a valid email address", fe.Field()))
	case "url":
		return ValidationError(fmt.Sprintf("%s must be a valid url", fe.Field()))
	case "oneof":
		return ValidationError(fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
	case "min", "gte":
		return ValidationError(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
	default:
		return ValidationError(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

// translate maps driver errors onto the package sentinels.
func translate(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
