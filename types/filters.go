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

package types

// Filters maps a column name to a constraint on that column. A value is
// interpreted as follows:
//
//   - scalar        -> equality
//   - slice         -> membership (IN)
//   - nil           -> IS NULL
//   - Condition     -> one clause per comparison operator
//
// All constraints are AND-joined by the query translator.
type Filters map[string]any

// Condition is an operator map on a single column, e.g. {"gte": 10, "lt": 20}.
// Use the typed constructors below instead of building the map by hand.
type Condition map[string]any

// Comparison operator keys accepted inside a Condition.
const (
	OpEq    = "eq"
	OpNe    = "ne"
	OpGt    = "gt"
	OpGte   = "gte"
	OpLt    = "lt"
	OpLte   = "lte"
	OpLike  = "like"
	OpILike = "ilike"
)

// Eq constrains a column to equal v. Equivalent to using the scalar directly
// but composes with the other constructors.
func Eq(v any) Condition { return Condition{OpEq: v} }

// Ne constrains a column to differ from v.
func Ne(v any) Condition { return Condition{OpNe: v} }

// Gt constrains a column to be strictly greater than v.
func Gt(v any) Condition { return Condition{OpGt: v} }

// Gte constrains a column to be greater than or equal to v.
func Gte(v any) Condition { return Condition{OpGte: v} }

// Lt constrains a column to be strictly less than v.
func Lt(v any) Condition { return Condition{OpLt: v} }

// Lte constrains a column to be less than or equal to v.
func Lte(v any) Condition { return Condition{OpLte: v} }

// Like constrains a column with a case-sensitive LIKE pattern.
func Like(pattern string) Condition { return Condition{OpLike: pattern} }

// ILike constrains a column with a case-insensitive LIKE pattern.
func ILike(pattern string) Condition { return Condition{OpILike: pattern} }

// In constrains a column to the given set of values.
func In(values ...any) []any { return values }

// IsNull constrains a column to be NULL.
func IsNull() any { return nil }

func (c Condition) merge(other Condition) Condition {
	out := make(Condition, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Ne adds a not-equal bound to an existing condition.
func (c Condition) Ne(v any) Condition { return c.merge(Ne(v)) }

// Gt adds a lower exclusive bound to an existing condition.
func (c Condition) Gt(v any) Condition { return c.merge(Gt(v)) }

// Gte adds a lower inclusive bound to an existing condition.
func (c Condition) Gte(v any) Condition { return c.merge(Gte(v)) }

// Lt adds an upper exclusive bound to an existing condition.
func (c Condition) Lt(v any) Condition { return c.merge(Lt(v)) }

// Lte adds an upper inclusive bound to an existing condition.
func (c Condition) Lte(v any) Condition { return c.merge(Lte(v)) }
