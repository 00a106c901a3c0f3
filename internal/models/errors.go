// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package models

import "errors"

// ErrSchemaViolation is matched by every SchemaError.
var ErrSchemaViolation = errors.New("schema violation")

// SchemaError reports a malformed field when constructing an Event.
type SchemaError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	return e.Field + ": " + e.Message
}

// Is lets errors.Is(err, ErrSchemaViolation) match.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaViolation
}

func schemaErr(field, msg string) error {
	return &SchemaError{Field: field, Message: msg}
}
