// Package validation holds the validator instance shared by every domain:
// custom tags, JSON field names in messages and human-readable translation.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"visitly/pkg/model"

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

// Fields renders the errors as a details map for AppError.
func (v ValidationErrors) Fields() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

type Validator struct {
	validate *validator.Validate
}

// New builds a validator with the "hhmm" and "yyyymmdd" tags registered.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("hhmm", validateClock); err != nil {
		return nil, fmt.Errorf("register 'hhmm' validator: %w", err)
	}
	if err := v.RegisterValidation("yyyymmdd", validateDate); err != nil {
		return nil, fmt.Errorf("register 'yyyymmdd' validator: %w", err)
	}

	return &Validator{validate: v}, nil
}

func validateClock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

// Struct validates s and returns ValidationErrors for tag failures.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

// Var validates a single value against tag, reporting failures under field.
func (v *Validator) Var(field string, value any, tag string) error {
	if err := v.validate.Var(value, tag); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			out := translate(validationErrs)
			for i := range out {
				out[i].Field = field
			}
			return out
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors

	for _, err := range errs {
		field := fieldPath(err)
		message := err.Error()

		switch err.Tag() {
		case "required", "required_if":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", field, err.Param())
		case "uuid":
			message = fmt.Sprintf("%s must be a UUID", field)
		case "e164":
			message = fmt.Sprintf("%s must be a phone number in E.164 format", field)
		case "timezone":
			message = fmt.Sprintf("%s must be an IANA timezone", field)
		case "hhmm":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", field)
		case "yyyymmdd":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
		case "latitude", "longitude":
			message = fmt.Sprintf("%s must be a valid %s", field, err.Tag())
		}

		out = append(out, ValidationError{Field: field, Message: message})
	}

	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}
