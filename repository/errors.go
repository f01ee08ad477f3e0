/*
 * Copyright 2026 havenmind.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"errors"
	"fmt"

	"github.com/havenmind/keel/database"
)

// RepositoryError is the base of the error surface the core exposes. Every
// failure leaving the core is one of RepositoryError, ValidationError,
// NotFoundError, or DuplicateError. The underlying store error, when there is
// one, stays reachable through errors.Unwrap for diagnostics.
type RepositoryError struct {
	Message string
	Code    string
	Details map[string]any
	cause   error
}

func (e *RepositoryError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *RepositoryError) Unwrap() error { return e.cause }

// NewRepositoryError wraps a store failure the taxonomy has no narrower kind
// for. The original error is preserved as the cause.
func NewRepositoryError(message string, cause error) *RepositoryError {
	return &RepositoryError{Message: message, cause: cause}
}

// ValidationError reports an entity that fails its own contract. It is a
// caller error and is never retried.
type ValidationError struct {
	RepositoryError
}

// NewValidationError builds a validation failure with optional field details.
func NewValidationError(message string, details map[string]any) *ValidationError {
	return &ValidationError{RepositoryError{
		Message: message,
		Code:    "validation_failed",
		Details: details,
	}}
}

// NotFoundError reports that a required identifier or filter combination
// matched no row.
type NotFoundError struct {
	RepositoryError
}

// NewNotFoundError builds a not-found failure for the given table and key.
func NewNotFoundError(table string, key any) *NotFoundError {
	return &NotFoundError{RepositoryError{
		Message: fmt.Sprintf("%s: no row matching %v", table, key),
		Code:    "not_found",
		Details: map[string]any{"table": table, "key": fmt.Sprint(key)},
	}}
}

// DuplicateError reports a store-enforced uniqueness violation.
type DuplicateError struct {
	RepositoryError
}

// NewDuplicateError builds a conflict failure preserving the store cause.
func NewDuplicateError(table string, cause error) *DuplicateError {
	return &DuplicateError{RepositoryError{
		Message: fmt.Sprintf("%s: duplicate key", table),
		Code:    "duplicate_key",
		Details: map[string]any{"table": table},
		cause:   cause,
	}}
}

func isTaxonomyError(err error) bool {
	var base *RepositoryError
	return IsValidation(err) || IsNotFound(err) || IsDuplicate(err) || errors.As(err, &base)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsDuplicate reports whether err is a DuplicateError.
func IsDuplicate(err error) bool {
	var target *DuplicateError
	return errors.As(err, &target)
}

// mapStoreError classifies a store failure into the taxonomy. Errors that are
// already part of the taxonomy pass through untouched so nested core calls do
// not double-wrap.
func mapStoreError(table string, err error) error {
	if err == nil {
		return nil
	}
	if isTaxonomyError(err) {
		return err
	}
	switch database.ClassifyError(err) {
	case database.ErrKindDuplicateKey:
		return NewDuplicateError(table, err)
	case database.ErrKindNotNull, database.ErrKindCheckViolation, database.ErrKindDataTruncated:
		verr := NewValidationError(fmt.Sprintf("%s: constraint violation", table), map[string]any{"table": table})
		verr.cause = err
		return verr
	default:
		return NewRepositoryError(fmt.Sprintf("%s: store operation failed", table), err)
	}
}
