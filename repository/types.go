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

	"github.com/havenmind/keel/types"
)

// Codec translates between a store row and a typed entity. Both directions
// must be total (no I/O, no partial results) and inverses of each other for
// every column the store persists. Each concrete repository supplies one.
type Codec[T any] interface {
	ToRow(entity *T) (types.Row, error)
	FromRow(row types.Row) (*T, error)
}

// Validator checks an entity before any write reaches the store. It may
// mutate the entity in place (assign a generated identifier, default a
// field); this is the only place side-effecting defaults are permitted.
// A contract failure must be reported as a ValidationError.
type Validator[T any] interface {
	Validate(ctx context.Context, entity *T, isUpdate bool) error
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc[T any] func(ctx context.Context, entity *T, isUpdate bool) error

func (f ValidatorFunc[T]) Validate(ctx context.Context, entity *T, isUpdate bool) error {
	return f(ctx, entity, isUpdate)
}

// Table describes the persistence target of one entity type.
type Table struct {
	// Name is the table name.
	Name string

	// PK is the primary key column. Defaults to "id".
	PK string

	// AutoID marks the key as store-assigned. Create then drops any key
	// present on the incoming entity. App-assigned keys (UUIDs set by a
	// validation hook) are kept as-is.
	AutoID bool

	// CreatedAt and UpdatedAt name the timestamp columns the core stamps
	// on writes. Either may be empty to disable stamping.
	CreatedAt string
	UpdatedAt string
}

func (t Table) pkColumn() string {
	if t.PK == "" {
		return "id"
	}
	return t.PK
}

// CrudRepository is the typed CRUD contract every concrete repository
// exposes. Absence on reads is not an error; the Require variants promote it
// to a NotFoundError.
type CrudRepository[T any, ID comparable] interface {
	Create(ctx context.Context, entity *T) (*T, error)
	GetByID(ctx context.Context, id ID) (*T, error)
	RequireByID(ctx context.Context, id ID) (*T, error)
	Update(ctx context.Context, entity *T) (*T, error)
	Delete(ctx context.Context, id ID) (bool, error)
	RequireDelete(ctx context.Context, id ID) error
}

// QueryRepository lists, counts, and searches entities through the filter
// translation path.
type QueryRepository[T any, ID comparable] interface {
	ListAll(ctx context.Context, opts types.QueryOptions) (*types.QueryResult[T], error)
	Count(ctx context.Context, filters types.Filters) (int, error)
	Exists(ctx context.Context, id ID) (bool, error)
	FindBy(ctx context.Context, filters types.Filters) ([]*T, error)
	FindOneBy(ctx context.Context, filters types.Filters) (*T, error)
	RequireOneBy(ctx context.Context, filters types.Filters) (*T, error)
}

// BulkRepository applies the single-entity write path to many entities inside
// one transaction; callers never observe partial application.
type BulkRepository[T any] interface {
	BulkCreate(ctx context.Context, entities []*T) ([]*T, error)
	BulkUpdate(ctx context.Context, entities []*T) ([]*T, error)
	Upsert(ctx context.Context, conflictColumns []string, updateColumns []string, entities ...*T) error
}

// Repository combines the full generic contract.
type Repository[T any, ID comparable] interface {
	CrudRepository[T, ID]
	QueryRepository[T, ID]
	BulkRepository[T]
}
