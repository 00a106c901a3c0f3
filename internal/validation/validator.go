// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ErrValidation is matched by every FieldError.
var ErrValidation = errors.New("validation failed")

// FieldError is a single client-attributable validation failure. Message is
// human readable and already names the field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RequestValidationError collects the failures from ValidateStruct.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns every field failure in struct order.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

// First returns the first failure, which is what HTTP handlers report.
func (ve *RequestValidationError) First() *FieldError {
	if len(ve.errors) == 0 {
		return &FieldError{Field: "request", Message: "validation failed"}
	}
	fe := ve.errors[0]
	return &fe
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator instance.
//
// Field names are taken from the query, then json, struct tags so messages
// use the names clients actually send.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"query", "json"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
	return validate
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes.
//
//	params := PlatformQueryParams{Limit: 100, Page: 1}
//	if verr := validation.ValidateStruct(&params); verr != nil {
//	    respondFieldError(w, verr.First())
//	}
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []FieldError{{Field: "request", Message: err.Error()}},
		}
	}

	out := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		out[i] = FieldError{Field: fe.Field(), Message: translateError(fe.Field(), fe)}
	}
	return &RequestValidationError{errors: out}
}

// checkVar runs a single tag against a value and translates the failure
// against the given field path.
func checkVar(field string, value any, tag string) *FieldError {
	err := GetValidator().Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return &FieldError{Field: field, Message: translateError(field, validationErrs[0])}
	}
	return fieldErr(field, "%s is invalid", field)
}

var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"datetime": "%s must be a valid ISO-8601 date",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translateError(field string, fe validator.FieldError) string {
	tag := fe.Tag()
	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		param := fe.Param()
		if tag == "oneof" {
			param = strings.Join(strings.Fields(param), ", ")
		}
		return fmt.Sprintf(template, field, param)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
