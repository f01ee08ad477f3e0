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
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/havenmind/keel/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Translator compiles declarative filter, order, and pagination specifications
// into parameterized SQL fragments. It is pure and performs no I/O; the only
// state is the target dialect, which decides how ILIKE is rendered.
type Translator struct {
	dialect dialect.Name
}

// NewTranslator returns a translator for the given dialect.
func NewTranslator(name dialect.Name) *Translator {
	return &Translator{dialect: name}
}

// operator keys in the order clauses are emitted for a single column.
var operatorOrder = []string{
	types.OpEq, types.OpNe, types.OpGt, types.OpGte,
	types.OpLt, types.OpLte, types.OpLike, types.OpILike,
}

var sqlOperators = map[string]string{
	types.OpEq:    "=",
	types.OpNe:    "!=",
	types.OpGt:    ">",
	types.OpGte:   ">=",
	types.OpLt:    "<",
	types.OpLte:   "<=",
	types.OpLike:  "LIKE",
	types.OpILike: "ILIKE",
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// BuildWhere compiles filters into an AND-joined WHERE clause using bun's
// placeholder convention, plus the matching argument slice. Filter keys are
// processed in sorted order so the output is deterministic. An empty slice
// value compiles to a match-nothing clause. Unknown operator keys, empty
// condition maps, and invalid column names are rejected with a
// ValidationError.
func (t *Translator) BuildWhere(filters types.Filters) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		if !identPattern.MatchString(key) {
			return "", nil, NewValidationError(
				fmt.Sprintf("invalid filter column %q", key),
				map[string]any{"column": key},
			)
		}

		switch value := filters[key].(type) {
		case nil:
			clauses = append(clauses, key+" IS NULL")
		case types.Condition:
			compiled, condArgs, err := t.buildCondition(key, value)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, compiled...)
			args = append(args, condArgs...)
		case []any:
			clause, inArgs := buildIn(key, value)
			clauses = append(clauses, clause)
			args = append(args, inArgs...)
		default:
			if members, ok := sliceMembers(value); ok {
				clause, inArgs := buildIn(key, members)
				clauses = append(clauses, clause)
				args = append(args, inArgs...)
				continue
			}
			clauses = append(clauses, key+" = ?")
			args = append(args, value)
		}
	}
	return strings.Join(clauses, " AND "), args, nil
}

func (t *Translator) buildCondition(key string, cond types.Condition) ([]string, []any, error) {
	// An operator map with no operators constrains nothing; compiling it to
	// no clause would silently widen the match set, same as an empty IN.
	if len(cond) == 0 {
		return nil, nil, NewValidationError(
			fmt.Sprintf("empty condition for column %q", key),
			map[string]any{"column": key},
		)
	}
	for op := range cond {
		if _, ok := sqlOperators[op]; !ok {
			return nil, nil, NewValidationError(
				fmt.Sprintf("unknown filter operator %q for column %q", op, key),
				map[string]any{"column": key, "operator": op},
			)
		}
	}

	var clauses []string
	var args []any
	for _, op := range operatorOrder {
		value, ok := cond[op]
		if !ok {
			continue
		}
		if op == types.OpILike && t.dialect != dialect.PG {
			// Only PostgreSQL has a native ILIKE.
			clauses = append(clauses, "LOWER("+key+") LIKE LOWER(?)")
			args = append(args, value)
			continue
		}
		clauses = append(clauses, key+" "+sqlOperators[op]+" ?")
		args = append(args, value)
	}
	return clauses, args, nil
}

// sliceMembers normalizes typed slices ([]string, []int64, ...) into []any so
// membership filters do not depend on the caller's element type. []byte stays
// a scalar.
func sliceMembers(value any) ([]any, bool) {
	if _, isBytes := value.([]byte); isBytes {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	members := make([]any, rv.Len())
	for i := range members {
		members[i] = rv.Index(i).Interface()
	}
	return members, true
}

// buildIn compiles a membership constraint. An empty value set matches no
// rows: filtering on "one of nothing" must not degrade into "no constraint".
func buildIn(key string, values []any) (string, []any) {
	if len(values) == 0 {
		return "1 = 0", nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return key + " IN (" + placeholders + ")", values
}

// BuildOrderBy compiles ordering columns into an ORDER BY body. A leading "-"
// selects descending order. Caller-given precedence is preserved as the
// tie-break. Blank entries are skipped; invalid column names are rejected.
func (t *Translator) BuildOrderBy(columns []string) (string, error) {
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		direction := "ASC"
		name := column
		if strings.HasPrefix(column, "-") {
			direction = "DESC"
			name = column[1:]
		}
		if name == "" {
			continue
		}
		if !identPattern.MatchString(name) {
			return "", NewValidationError(
				fmt.Sprintf("invalid order column %q", column),
				map[string]any{"column": column},
			)
		}
		parts = append(parts, name+" "+direction)
	}
	return strings.Join(parts, ", "), nil
}

// BuildPagination renders the pagination clause. LIMIT is emitted only when a
// limit is set; OFFSET only when a limit is also set. An offset without a
// limit is a no-op, not an error.
func (t *Translator) BuildPagination(limit, offset *int) string {
	if limit == nil {
		return ""
	}
	clause := fmt.Sprintf("LIMIT %d", *limit)
	if offset != nil {
		clause += fmt.Sprintf(" OFFSET %d", *offset)
	}
	return clause
}

// ApplyPagination applies the same limit/offset rule onto a bun select.
func (t *Translator) ApplyPagination(q *bun.SelectQuery, limit, offset *int) *bun.SelectQuery {
	if limit == nil {
		return q
	}
	q = q.Limit(*limit)
	if offset != nil {
		q = q.Offset(*offset)
	}
	return q
}
