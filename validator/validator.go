package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// New creates a new validator instance
func New() *Validator {
	v := validator.New()

	// Register custom tag name function to use JSON tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validators
	v.RegisterValidation("taskstatus", validateTaskStatus)
	v.RegisterValidation("theme", validateTheme)
	v.RegisterValidation("timezone", validateTimezone)
	v.RegisterValidation("dateformat", validateDateFormat)
	v.RegisterValidation("summarydate", validateSummaryDate)

	return &Validator{validate: v}
}

// Validate validates a struct and returns validation errors
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs ValidationErrors
	for _, err := range err.(validator.ValidationErrors) {
		validationErrs = append(validationErrs, ValidationError{
			Field:   err.Field(),
			Message: msgForTag(err),
			Tag:     err.Tag(),
			Value:   fmt.Sprintf("%v", err.Value()),
		})
	}

	return validationErrs
}

func msgForTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", err.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", err.Field())
	case "taskstatus":
		return fmt.Sprintf("%s must be one of BACKLOG, TODO, IN_PROGRESS, DONE, CANCELLED", err.Field())
	case "theme":
		return fmt.Sprintf("%s must be light or dark", err.Field())
	case "timezone":
		return fmt.Sprintf("%s must be a valid IANA timezone", err.Field())
	case "dateformat":
		return fmt.Sprintf("%s must be a supported date format", err.Field())
	case "summarydate":
		return fmt.Sprintf("%s must be formatted YYYY-MM-DD", err.Field())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "BACKLOG", "TODO", "IN_PROGRESS", "DONE", "CANCELLED":
		return true
	}
	return false
}

func validateTheme(fl validator.FieldLevel) bool {
	theme := fl.Field().String()
	return theme == "light" || theme == "dark"
}

func validateTimezone(fl validator.FieldLevel) bool {
	tz := fl.Field().String()
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func validateDateFormat(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "DD-MM-YY", "MM-DD-YY", "YYYY-MM-DD":
		return true
	}
	return false
}

var summaryDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func validateSummaryDate(fl validator.FieldLevel) bool {
	return summaryDateRe.MatchString(fl.Field().String())
}
