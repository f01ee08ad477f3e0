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
	"fmt"

	"github.com/google/uuid"
)

// GenerateID returns a random identifier for string-keyed tables. Intended
// for validation hooks that assign keys on create.
func GenerateID() string {
	return uuid.NewString()
}

// FieldErrors accumulates per-field validation failures and folds them into
// one ValidationError.
type FieldErrors struct {
	fields map[string]any
}

// Add records a failure for one field. The last message per field wins.
func (f *FieldErrors) Add(field, format string, args ...any) {
	if f.fields == nil {
		f.fields = map[string]any{}
	}
	f.fields[field] = fmt.Sprintf(format, args...)
}

// Empty reports whether no failures were recorded.
func (f *FieldErrors) Empty() bool { return len(f.fields) == 0 }

// Err returns nil when empty, otherwise a ValidationError carrying every
// recorded field in its details map.
func (f *FieldErrors) Err() error {
	if f.Empty() {
		return nil
	}
	return NewValidationError("entity failed validation", f.fields)
}
