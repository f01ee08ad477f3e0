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
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapStoreErrorDuplicate(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"mysql", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alpha'"}},
		{"postgres", &pq.Error{Code: "23505"}},
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: widgets.name")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapStoreError("widgets", tt.err)
			assert.True(t, IsDuplicate(mapped))
			assert.ErrorIs(t, mapped, tt.err)
		})
	}
}

func TestMapStoreErrorConstraintViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"mysql not null", &mysql.MySQLError{Number: 1048, Message: "Column 'name' cannot be null"}},
		{"postgres check", &pq.Error{Code: "23514"}},
		{"sqlite not null", errors.New("NOT NULL constraint failed: widgets.name")},
		{"mysql truncated", &mysql.MySQLError{Number: 1265, Message: "Data truncated"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsValidation(mapStoreError("widgets", tt.err)))
		})
	}
}

func TestMapStoreErrorUnknownFallsBack(t *testing.T) {
	mapped := mapStoreError("widgets", errors.New("disk I/O error"))
	require.Error(t, mapped)
	assert.False(t, IsValidation(mapped))
	assert.False(t, IsNotFound(mapped))
	assert.False(t, IsDuplicate(mapped))

	var base *RepositoryError
	assert.True(t, errors.As(mapped, &base))
}

// Errors already in the taxonomy pass through untouched so nested core calls
// do not double-wrap.
func TestMapStoreErrorPassThrough(t *testing.T) {
	original := NewNotFoundError("widgets", 7)
	assert.Same(t, original, mapStoreError("widgets", original))

	verr := NewValidationError("bad", nil)
	assert.Same(t, verr, mapStoreError("widgets", verr))
}

func TestMapStoreErrorUnwrapsThroughWrapping(t *testing.T) {
	cause := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	wrapped := fmt.Errorf("insert widgets: %w", cause)
	assert.True(t, IsDuplicate(mapStoreError("widgets", wrapped)))
}

func TestTaxonomyPredicates(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("bad", nil)))
	assert.True(t, IsNotFound(NewNotFoundError("widgets", 1)))
	assert.True(t, IsDuplicate(NewDuplicateError("widgets", nil)))

	plain := errors.New("plain")
	assert.False(t, IsValidation(plain))
	assert.False(t, IsNotFound(plain))
	assert.False(t, IsDuplicate(plain))
}

func TestErrorCodesAndDetails(t *testing.T) {
	verr := NewValidationError("bad value", map[string]any{"field": "name"})
	assert.Equal(t, "validation_failed", verr.Code)
	assert.Equal(t, "name", verr.Details["field"])

	nferr := NewNotFoundError("widgets", 42)
	assert.Equal(t, "not_found", nferr.Code)
	assert.Equal(t, "widgets", nferr.Details["table"])
	assert.Contains(t, nferr.Error(), "widgets")

	cause := errors.New("driver says no")
	derr := NewDuplicateError("widgets", cause)
	assert.Equal(t, "duplicate_key", derr.Code)
	assert.ErrorIs(t, derr, cause)
}

func TestFieldErrors(t *testing.T) {
	var errs FieldErrors
	assert.True(t, errs.Empty())
	assert.NoError(t, errs.Err())

	errs.Add("name", "must not be empty")
	errs.Add("rating", "must be at least %d", 1)
	require.False(t, errs.Empty())

	err := errs.Err()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must not be empty", verr.Details["name"])
	assert.Equal(t, "must be at least 1", verr.Details["rating"])
}
