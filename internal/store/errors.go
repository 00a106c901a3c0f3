// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get for unknown ids.
	ErrNotFound = errors.New("event not found")

	// ErrImmutabilityViolation is returned by every update or delete attempt.
	ErrImmutabilityViolation = errors.New("events are immutable")

	// ErrStorageFailure is matched by every persistence fault.
	ErrStorageFailure = errors.New("storage failure")

	// ErrDuplicateEvent means an id collided. Ids are minted fresh, so this is
	// a fault rather than a client error.
	ErrDuplicateEvent = fmt.Errorf("%w: duplicate event id", ErrStorageFailure)

	// ErrDuplicateRawEvent means (platform, raw_event_id) was already stored,
	// typically a redelivered webhook.
	ErrDuplicateRawEvent = errors.New("duplicate raw event")
)

// StorageError wraps a backend fault with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStorageFailure) match.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// isUniqueViolation recognizes unique constraint failures by message, which
// is the only signal database/sql drivers such as DuckDB expose.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "primary key constraint")
}

var errClosed = errors.New("store is closed")
