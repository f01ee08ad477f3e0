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
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/havenmind/keel/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/feature"
)

// Core is the generic CRUD engine. One Core is constructed per entity type at
// startup and injected into whatever needs it; it holds no mutable state
// beyond the handles it is built with, so a single instance is safe for
// concurrent use. All serialization is delegated to the pool and the store's
// transaction isolation.
type Core[T any, ID comparable] struct {
	db         *bun.DB
	table      Table
	codec      Codec[T]
	validator  Validator[T]
	translator *Translator
}

var _ Repository[struct{}, int64] = (*Core[struct{}, int64])(nil)

// NewCore builds a repository core for one table. The validator may be nil
// when the entity has no write-time contract.
func NewCore[T any, ID comparable](db *bun.DB, table Table, codec Codec[T], validator Validator[T]) *Core[T, ID] {
	return &Core[T, ID]{
		db:         db,
		table:      table,
		codec:      codec,
		validator:  validator,
		translator: NewTranslator(db.Dialect().Name()),
	}
}

// Translator exposes the core's filter translator for raw query composition.
func (r *Core[T, ID]) Translator() *Translator { return r.translator }

// conn resolves the executing handle: the transaction carried by ctx when a
// WithTransaction scope is open, the pooled DB otherwise.
func (r *Core[T, ID]) conn(ctx context.Context) bun.IDB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

func (r *Core[T, ID]) validate(ctx context.Context, entity *T, isUpdate bool) error {
	if r.validator == nil {
		return nil
	}
	err := r.validator.Validate(ctx, entity, isUpdate)
	if err == nil {
		return nil
	}
	if IsValidation(err) {
		return err
	}
	verr := NewValidationError(err.Error(), nil)
	verr.cause = err
	return verr
}

func (r *Core[T, ID]) encode(entity *T) (types.Row, error) {
	row, err := r.codec.ToRow(entity)
	if err != nil {
		return nil, NewRepositoryError(fmt.Sprintf("%s: encode entity", r.table.Name), err)
	}
	return row, nil
}

func (r *Core[T, ID]) decode(row types.Row) (*T, error) {
	entity, err := r.codec.FromRow(row)
	if err != nil {
		return nil, NewRepositoryError(fmt.Sprintf("%s: decode row", r.table.Name), err)
	}
	return entity, nil
}

// Create validates the entity, drops a store-assigned key if the caller set
// one, stamps creation and update timestamps, inserts, and returns the
// persisted row decoded through the codec. A store uniqueness violation comes
// back as a DuplicateError.
func (r *Core[T, ID]) Create(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, NewValidationError("entity must not be nil", nil)
	}
	if err := r.validate(ctx, entity, false); err != nil {
		return nil, err
	}

	row, err := r.encode(entity)
	if err != nil {
		return nil, err
	}
	pk := r.table.pkColumn()
	if r.table.AutoID {
		delete(row, pk)
	}
	now := time.Now().UTC()
	if c := r.table.CreatedAt; c != "" {
		row[c] = now
	}
	if u := r.table.UpdatedAt; u != "" {
		row[u] = now
	}

	q := r.conn(ctx).NewInsert().Model(&row).TableExpr(r.table.Name)
	if r.db.HasFeature(feature.InsertReturning) || r.db.HasFeature(feature.Returning) {
		returned := types.Row{}
		if _, err := q.Returning("*").Exec(ctx, &returned); err != nil {
			return nil, mapStoreError(r.table.Name, err)
		}
		return r.decode(returned)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, mapStoreError(r.table.Name, err)
	}
	id, ok := row[pk]
	if !ok || isZeroKey(id) {
		lastID, err := res.LastInsertId()
		if err != nil || lastID == 0 {
			return nil, NewRepositoryError(
				fmt.Sprintf("%s: cannot determine generated identifier", r.table.Name), err)
		}
		id = lastID
	}
	return r.requireRow(ctx, id)
}

// GetByID returns the entity with the given key, or nil when no row matches.
// Absence is not an error.
func (r *Core[T, ID]) GetByID(ctx context.Context, id ID) (*T, error) {
	row, err := r.rowByPK(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return r.decode(row)
}

// RequireByID is GetByID with absence promoted to a NotFoundError.
func (r *Core[T, ID]) RequireByID(ctx context.Context, id ID) (*T, error) {
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, NewNotFoundError(r.table.Name, id)
	}
	return entity, nil
}

// Update validates first, requires an identifier, overwrites every
// non-identifier column, and refreshes updated_at but never created_at.
// A missing row is a NotFoundError.
func (r *Core[T, ID]) Update(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, NewValidationError("entity must not be nil", nil)
	}
	if err := r.validate(ctx, entity, true); err != nil {
		return nil, err
	}

	row, err := r.encode(entity)
	if err != nil {
		return nil, err
	}
	pk := r.table.pkColumn()
	id, ok := row[pk]
	if !ok || isZeroKey(id) {
		return nil, NewValidationError(
			fmt.Sprintf("%s: identifier is required for update", r.table.Name),
			map[string]any{"column": pk},
		)
	}
	delete(row, pk)
	if c := r.table.CreatedAt; c != "" {
		delete(row, c)
	}
	if u := r.table.UpdatedAt; u != "" {
		row[u] = time.Now().UTC()
	}

	res, err := r.conn(ctx).NewUpdate().
		Model(&row).
		TableExpr(r.table.Name).
		Where(pk+" = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, mapStoreError(r.table.Name, err)
	}

	// MySQL reports zero affected rows for value-identical updates, so a
	// zero count alone does not prove absence.
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		exists, err := r.existsPK(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, NewNotFoundError(r.table.Name, id)
		}
	}
	return r.requireRow(ctx, id)
}

// Delete removes the row with the given key and reports whether one was
// actually removed. Deleting a missing row is not an error.
func (r *Core[T, ID]) Delete(ctx context.Context, id ID) (bool, error) {
	res, err := r.conn(ctx).NewDelete().
		TableExpr(r.table.Name).
		Where(r.table.pkColumn()+" = ?", id).
		Exec(ctx)
	if err != nil {
		return false, mapStoreError(r.table.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, mapStoreError(r.table.Name, err)
	}
	return affected > 0, nil
}

// RequireDelete promotes a no-op delete to a NotFoundError.
func (r *Core[T, ID]) RequireDelete(ctx context.Context, id ID) error {
	removed, err := r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return NewNotFoundError(r.table.Name, id)
	}
	return nil
}

// ListAll runs the translated filter/order/pagination query. When a count is
// requested it issues a second COUNT(*) sharing the filter clause but never
// the pagination clause, so the metadata always reflects the full match set.
func (r *Core[T, ID]) ListAll(ctx context.Context, opts types.QueryOptions) (*types.QueryResult[T], error) {
	if opts.Limit != nil && *opts.Limit <= 0 {
		return nil, NewValidationError(
			fmt.Sprintf("%s: limit must be positive", r.table.Name),
			map[string]any{"limit": *opts.Limit},
		)
	}
	where, args, err := r.translator.BuildWhere(opts.Filters)
	if err != nil {
		return nil, err
	}

	q := r.conn(ctx).NewSelect().ColumnExpr("*").TableExpr(r.table.Name)
	if where != "" {
		q = q.Where(where, args...)
	}
	order, err := r.translator.BuildOrderBy(opts.OrderBy)
	if err != nil {
		return nil, err
	}
	if order != "" {
		q = q.OrderExpr(order)
	}
	q = r.translator.ApplyPagination(q, opts.Limit, opts.Offset)
	if opts.ForUpdate && r.db.Dialect().Name() != dialect.SQLite {
		q = q.For("UPDATE")
	}

	var rows []types.Row
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, mapStoreError(r.table.Name, err)
	}
	entities := make([]*T, 0, len(rows))
	for _, row := range rows {
		entity, err := r.decode(row)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	var total *int
	if opts.IncludeCount {
		n, err := r.countWhere(ctx, where, args)
		if err != nil {
			return nil, err
		}
		total = &n
	}
	return types.NewQueryResult(entities, opts, total), nil
}

// Count returns the number of rows matching the filters.
func (r *Core[T, ID]) Count(ctx context.Context, filters types.Filters) (int, error) {
	where, args, err := r.translator.BuildWhere(filters)
	if err != nil {
		return 0, err
	}
	return r.countWhere(ctx, where, args)
}

// Exists reports whether a row with the given key exists.
func (r *Core[T, ID]) Exists(ctx context.Context, id ID) (bool, error) {
	return r.existsPK(ctx, id)
}

// FindBy returns every entity matching the filters.
func (r *Core[T, ID]) FindBy(ctx context.Context, filters types.Filters) ([]*T, error) {
	result, err := r.ListAll(ctx, types.QueryOptions{Filters: filters})
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// FindOneBy returns the first entity matching the filters, or nil.
func (r *Core[T, ID]) FindOneBy(ctx context.Context, filters types.Filters) (*T, error) {
	one := 1
	result, err := r.ListAll(ctx, types.QueryOptions{Filters: filters, Limit: &one})
	if err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, nil
	}
	return result.Data[0], nil
}

// RequireOneBy is FindOneBy with absence promoted to a NotFoundError.
func (r *Core[T, ID]) RequireOneBy(ctx context.Context, filters types.Filters) (*T, error) {
	entity, err := r.FindOneBy(ctx, filters)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, NewNotFoundError(r.table.Name, filters)
	}
	return entity, nil
}

func (r *Core[T, ID]) rowByPK(ctx context.Context, id any) (types.Row, error) {
	row := types.Row{}
	err := r.conn(ctx).NewSelect().
		ColumnExpr("*").
		TableExpr(r.table.Name).
		Where(r.table.pkColumn()+" = ?", id).
		Limit(1).
		Scan(ctx, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapStoreError(r.table.Name, err)
	}
	return row, nil
}

func (r *Core[T, ID]) requireRow(ctx context.Context, id any) (*T, error) {
	row, err := r.rowByPK(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, NewNotFoundError(r.table.Name, id)
	}
	return r.decode(row)
}

func (r *Core[T, ID]) existsPK(ctx context.Context, id any) (bool, error) {
	exists, err := r.conn(ctx).NewSelect().
		ColumnExpr("1").
		TableExpr(r.table.Name).
		Where(r.table.pkColumn()+" = ?", id).
		Exists(ctx)
	if err != nil {
		return false, mapStoreError(r.table.Name, err)
	}
	return exists, nil
}

func (r *Core[T, ID]) countWhere(ctx context.Context, where string, args []any) (int, error) {
	q := r.conn(ctx).NewSelect().TableExpr(r.table.Name)
	if where != "" {
		q = q.Where(where, args...)
	}
	n, err := q.Count(ctx)
	if err != nil {
		return 0, mapStoreError(r.table.Name, err)
	}
	return n, nil
}

// isZeroKey reports whether an identifier value counts as unset.
func isZeroKey(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}
