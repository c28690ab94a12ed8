// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// areaCodePattern matches dotted area codes such as "BG" or "BG.22.3".
var areaCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+(\.[A-Za-z0-9]+)*$`)

// ValidationError is one failed field constraint.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the name of the field that failed validation. Fields with a
// json or query tag are reported under that name.
func (e *ValidationError) Field() string {
	return e.field
}

func (e *ValidationError) Tag() string {
	return e.tag
}

// Param is the tag argument, "100" for "max=100".
func (e *ValidationError) Param() string {
	return e.param
}

func (e *ValidationError) Value() interface{} {
	return e.value
}

func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError collects every failed constraint of one struct.
type RequestValidationError struct {
	errors []ValidationError
}

func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error joins the field messages with "; ".
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve.errors))
	for i := range ve.errors {
		parts[i] = ve.errors[i].message
	}
	return strings.Join(parts, "; ")
}

// APIError mirrors models.APIError so this package stays free of model imports.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts validation errors to the VALIDATION_ERROR API format.
func (ve *RequestValidationError) ToAPIError() *APIError {
	if len(ve.errors) == 0 {
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: "Validation failed",
		}
	}

	if len(ve.errors) == 1 {
		err := ve.errors[0]
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: err.message,
			Details: map[string]interface{}{
				"field": err.field,
				"tag":   err.tag,
				"value": err.value,
			},
		}
	}

	fields := make([]map[string]interface{}, len(ve.errors))
	lines := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		fields[i] = map[string]interface{}{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
		lines[i] = err.field + ": " + err.message
	}

	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: strings.Join(lines, "; "),
		Details: map[string]interface{}{
			"fields": fields,
		},
	}
}

// GetValidator returns the singleton validator instance with the custom
// validators registered. It is safe for concurrent use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)

		if err := validate.RegisterValidation("areacode", validateAreaCode); err != nil {
			panic(fmt.Sprintf("register areacode validator: %v", err))
		}
	})

	return validate
}

// fieldName reports a field under its query or json name so messages match
// what the client sent.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"query", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func validateAreaCode(fl validator.FieldLevel) bool {
	return IsAreaCode(fl.Field().String())
}

// IsAreaCode reports whether code is a well-formed dotted area code.
func IsAreaCode(code string) bool {
	return areaCodePattern.MatchString(code)
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes, or *RequestValidationError if validation fails.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{
				{
					field:   "unknown",
					tag:     "unknown",
					message: err.Error(),
				},
			},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}

	return &RequestValidationError{errors: fieldErrors}
}

// messages maps a validation tag to its message, given the reported field
// name and the tag parameter.
var messages = map[string]func(field, param string) string{
	"required":  func(f, _ string) string { return f + " is required" },
	"uuid":      func(f, _ string) string { return f + " must be a valid UUID" },
	"latitude":  func(f, _ string) string { return f + " must be a valid latitude (-90 to 90)" },
	"longitude": func(f, _ string) string { return f + " must be a valid longitude (-180 to 180)" },
	"areacode":  func(f, _ string) string { return f + " must be a dotted area code such as BG.22" },
	"oneof":     func(f, p string) string { return f + " must be one of: " + p },
	"gte":       func(f, p string) string { return f + " must be greater than or equal to " + p },
	"lte":       func(f, p string) string { return f + " must be less than or equal to " + p },
	"gt":        func(f, p string) string { return f + " must be greater than " + p },
	"lt":        func(f, p string) string { return f + " must be less than " + p },
}

func translateError(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg(fe.Field(), fe.Param())
	}

	bound := map[string]string{"min": "at least", "max": "at most"}[fe.Tag()]
	if bound == "" {
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
	var unit string
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = " items"
	}
	return fmt.Sprintf("%s must be %s %s%s", fe.Field(), bound, fe.Param(), unit)
}
