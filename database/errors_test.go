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

package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyErrorMySQL(t *testing.T) {
	tests := []struct {
		number uint16
		kind   ErrorKind
	}{
		{1062, ErrKindDuplicateKey},
		{1048, ErrKindNotNull},
		{1216, ErrKindForeignKey},
		{1217, ErrKindForeignKey},
		{3819, ErrKindCheckViolation},
		{1265, ErrKindDataTruncated},
		{1064, ErrKindUnknown},
	}
	for _, tt := range tests {
		err := &mysql.MySQLError{Number: tt.number, Message: "server says no"}
		assert.Equal(t, tt.kind, ClassifyError(err), "error %d", tt.number)
	}
}

func TestClassifyErrorPostgres(t *testing.T) {
	tests := []struct {
		code pq.ErrorCode
		kind ErrorKind
	}{
		{"23505", ErrKindDuplicateKey},
		{"23502", ErrKindNotNull},
		{"23503", ErrKindForeignKey},
		{"23514", ErrKindCheckViolation},
		{"22001", ErrKindDataTruncated},
		{"42601", ErrKindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, ClassifyError(&pq.Error{Code: tt.code}), "code %s", tt.code)
	}
}

// sqliteshim errors carry no structured code, only text.
func TestClassifyErrorByMessage(t *testing.T) {
	tests := []struct {
		message string
		kind    ErrorKind
	}{
		{"constraint failed: UNIQUE constraint failed: widgets.name (2067)", ErrKindDuplicateKey},
		{"constraint failed: NOT NULL constraint failed: widgets.name (1299)", ErrKindNotNull},
		{"constraint failed: FOREIGN KEY constraint failed (787)", ErrKindForeignKey},
		{"constraint failed: CHECK constraint failed: rating_range (275)", ErrKindCheckViolation},
		{"pq: value too long for type character varying(10), SQLSTATE 22001", ErrKindDataTruncated},
		{"disk I/O error", ErrKindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, ClassifyError(errors.New(tt.message)), tt.message)
	}
}

func TestClassifyErrorUnwrapsWrappedErrors(t *testing.T) {
	cause := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	wrapped := fmt.Errorf("insert widgets: %w", cause)
	assert.Equal(t, ErrKindDuplicateKey, ClassifyError(wrapped))
}

func TestClassifyErrorNil(t *testing.T) {
	assert.Equal(t, ErrKindUnknown, ClassifyError(nil))
}
