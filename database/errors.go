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
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// ErrorKind is the driver-independent classification of a store failure.
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindDuplicateKey
	ErrKindNotNull
	ErrKindForeignKey
	ErrKindCheckViolation
	ErrKindDataTruncated
)

// MySQL server error numbers for constraint violations.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrNotNull         = 1048
	mysqlErrNoReferencedRow = 1216
	mysqlErrRowIsReferenced = 1217
	mysqlErrCheckViolated   = 3819
	mysqlErrDataTruncated   = 1265
)

// ClassifyError maps a driver error onto an ErrorKind. MySQL and PostgreSQL
// report structured codes (error number, SQLSTATE); those are inspected
// first. SQLite errors from sqliteshim surface as plain strings, so a message
// fallback remains for that dialect.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrKindUnknown
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDuplicateEntry:
			return ErrKindDuplicateKey
		case mysqlErrNotNull:
			return ErrKindNotNull
		case mysqlErrNoReferencedRow, mysqlErrRowIsReferenced:
			return ErrKindForeignKey
		case mysqlErrCheckViolated:
			return ErrKindCheckViolation
		case mysqlErrDataTruncated:
			return ErrKindDataTruncated
		default:
			return ErrKindUnknown
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrKindDuplicateKey
		case "23502":
			return ErrKindNotNull
		case "23503":
			return ErrKindForeignKey
		case "23514":
			return ErrKindCheckViolation
		case "22001":
			return ErrKindDataTruncated
		}
		return ErrKindUnknown
	}

	return classifyByMessage(err)
}

func classifyByMessage(err error) ErrorKind {
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "unique constraint failed"),
		strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "sqlstate 23505"):
		return ErrKindDuplicateKey
	case strings.Contains(s, "not null constraint failed"),
		strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "sqlstate 23502"):
		return ErrKindNotNull
	case strings.Contains(s, "foreign key constraint failed"),
		strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "sqlstate 23503"):
		return ErrKindForeignKey
	case strings.Contains(s, "check constraint"),
		strings.Contains(s, "sqlstate 23514"):
		return ErrKindCheckViolation
	case strings.Contains(s, "string data right truncation"),
		strings.Contains(s, "data truncated"),
		strings.Contains(s, "sqlstate 22001"):
		return ErrKindDataTruncated
	default:
		return ErrKindUnknown
	}
}
