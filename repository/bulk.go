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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun/dialect/feature"
)

// BulkCreate runs every entity through the single-entity create path inside
// one transaction. Callers never observe partial application: the first
// failure rolls back everything already inserted.
func (r *Core[T, ID]) BulkCreate(ctx context.Context, entities []*T) ([]*T, error) {
	created := make([]*T, 0, len(entities))
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		for i, entity := range entities {
			result, err := r.Create(ctx, entity)
			if err != nil {
				return bulkElementError(err, i)
			}
			created = append(created, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// BulkUpdate runs every entity through the single-entity update path inside
// one transaction, all-or-nothing.
func (r *Core[T, ID]) BulkUpdate(ctx context.Context, entities []*T) ([]*T, error) {
	updated := make([]*T, 0, len(entities))
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		for i, entity := range entities {
			result, err := r.Update(ctx, entity)
			if err != nil {
				return bulkElementError(err, i)
			}
			updated = append(updated, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// bulkElementError records which element failed without changing the error's
// taxonomy kind.
func bulkElementError(err error, index int) error {
	switch e := err.(type) {
	case *ValidationError:
		e.withIndex(index)
	case *NotFoundError:
		e.withIndex(index)
	case *DuplicateError:
		e.withIndex(index)
	case *RepositoryError:
		e.withIndex(index)
	}
	return err
}

func (e *RepositoryError) withIndex(index int) {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details["index"] = index
}

// Upsert inserts entities, updating updateColumns when the store reports a
// key collision on conflictColumns (the primary key when empty). The dialect
// picks the statement shape: ON CONFLICT for PostgreSQL and SQLite,
// ON DUPLICATE KEY UPDATE for MySQL, and an insert-then-update fallback
// elsewhere. The whole batch runs in one transaction.
func (r *Core[T, ID]) Upsert(ctx context.Context, conflictColumns []string, updateColumns []string, entities ...*T) error {
	if len(updateColumns) == 0 {
		return NewValidationError("upsert requires at least one update column", nil)
	}
	for _, column := range append(append([]string{}, conflictColumns...), updateColumns...) {
		if !identPattern.MatchString(column) {
			return NewValidationError(
				fmt.Sprintf("invalid upsert column %q", column),
				map[string]any{"column": column},
			)
		}
	}

	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		for i, entity := range entities {
			if err := r.upsertOne(ctx, conflictColumns, updateColumns, entity); err != nil {
				return bulkElementError(err, i)
			}
		}
		return nil
	})
}

func (r *Core[T, ID]) upsertOne(ctx context.Context, conflictColumns, updateColumns []string, entity *T) error {
	if entity == nil {
		return NewValidationError("entity must not be nil", nil)
	}
	if err := r.validate(ctx, entity, false); err != nil {
		return err
	}
	row, err := r.encode(entity)
	if err != nil {
		return err
	}
	pk := r.table.pkColumn()
	if r.table.AutoID && isZeroKey(row[pk]) {
		delete(row, pk)
	}
	now := time.Now().UTC()
	if c := r.table.CreatedAt; c != "" {
		if _, ok := row[c]; !ok || isZeroKey(row[c]) {
			row[c] = now
		}
	}
	if u := r.table.UpdatedAt; u != "" {
		row[u] = now
	}

	q := r.conn(ctx).NewInsert().Model(&row).TableExpr(r.table.Name)
	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		keys := conflictColumns
		if len(keys) == 0 {
			keys = []string{r.table.pkColumn()}
		}
		sets := make([]string, len(updateColumns))
		for i, column := range updateColumns {
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", column, column)
		}
		q = q.On("CONFLICT (" + strings.Join(keys, ", ") + ") DO UPDATE").
			Set(strings.Join(sets, ", "))
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		sets := make([]string, len(updateColumns))
		for i, column := range updateColumns {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", column, column)
		}
		q = q.On("DUPLICATE KEY UPDATE " + strings.Join(sets, ", "))
	default:
		if _, err := q.Exec(ctx); err != nil {
			mapped := mapStoreError(r.table.Name, err)
			if !IsDuplicate(mapped) {
				return mapped
			}
			_, updateErr := r.Update(ctx, entity)
			return updateErr
		}
		return nil
	}

	if _, err := q.Exec(ctx); err != nil {
		return mapStoreError(r.table.Name, err)
	}
	return nil
}
