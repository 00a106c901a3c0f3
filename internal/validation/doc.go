// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Package validation is the validation engine for candidate events and request
parameters.

ValidateDraft runs a fixed sequence of checks against a models.Draft and stops
at the first failure, so the same bad input always yields the same message:

	draft, err := validation.ValidateDraft(in, time.Now())
	if err != nil {
	    var fe *validation.FieldError
	    errors.As(err, &fe) // fe.Field == "timestamp", fe.Message == "timestamp cannot be in the future"
	}

Batches are screened with ValidateBatchSize and PrefilterDraft before any item
is ingested.

Presence and enum checks go through a go-playground/validator singleton
(GetValidator). The same instance validates query parameter structs via
ValidateStruct, with field names taken from query and json tags.
*/
package validation
