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

// Package keel wires the repository core into per-entity services. One
// service is constructed per entity type at startup and passed to whatever
// needs it; there is no process-wide instance to reach for.
package keel

import (
	"context"

	"github.com/havenmind/keel/repository"
	"github.com/havenmind/keel/types"

	"github.com/uptrace/bun"
)

// Service is the entity-facing facade over the generic repository core.
type Service[T any, ID comparable] struct {
	db   *bun.DB
	repo repository.Repository[T, ID]
}

// NewService builds a service for one entity type. codec is the entity's
// row mapping; validator may be nil.
func NewService[T any, ID comparable](
	db *bun.DB,
	table repository.Table,
	codec repository.Codec[T],
	validator repository.Validator[T],
) *Service[T, ID] {
	return &Service[T, ID]{
		db:   db,
		repo: repository.NewCore[T, ID](db, table, codec, validator),
	}
}

// Repository exposes the underlying generic repository for callers that need
// the full contract.
func (s *Service[T, ID]) Repository() repository.Repository[T, ID] { return s.repo }

// Save validates and inserts a new entity, returning the persisted state.
func (s *Service[T, ID]) Save(ctx context.Context, entity *T) (*T, error) {
	return s.repo.Create(ctx, entity)
}

// Get returns an entity by key, or nil when absent.
func (s *Service[T, ID]) Get(ctx context.Context, id ID) (*T, error) {
	return s.repo.GetByID(ctx, id)
}

// Require returns an entity by key, failing with a not-found error when
// absent.
func (s *Service[T, ID]) Require(ctx context.Context, id ID) (*T, error) {
	return s.repo.RequireByID(ctx, id)
}

// All returns every entity of the type.
func (s *Service[T, ID]) All(ctx context.Context) ([]*T, error) {
	result, err := s.repo.ListAll(ctx, types.QueryOptions{})
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// List returns entities matching the filters.
func (s *Service[T, ID]) List(ctx context.Context, filters types.Filters) ([]*T, error) {
	return s.repo.FindBy(ctx, filters)
}

// Page returns one page of entities with the total count populated.
func (s *Service[T, ID]) Page(ctx context.Context, page, pageSize int, filters types.Filters, orders ...string) (*types.QueryResult[T], error) {
	opts := types.NewQueryOptions(filters).
		WithPage(page, pageSize).
		WithOrder(orders...).
		WithCount()
	return s.repo.ListAll(ctx, opts)
}

// Update overwrites an existing entity and returns the persisted state.
func (s *Service[T, ID]) Update(ctx context.Context, entity *T) (*T, error) {
	return s.repo.Update(ctx, entity)
}

// Remove deletes an entity by key, reporting whether a row was removed.
func (s *Service[T, ID]) Remove(ctx context.Context, id ID) (bool, error) {
	return s.repo.Delete(ctx, id)
}

// SaveAll inserts entities atomically.
func (s *Service[T, ID]) SaveAll(ctx context.Context, entities []*T) ([]*T, error) {
	return s.repo.BulkCreate(ctx, entities)
}

// UpdateAll updates entities atomically.
func (s *Service[T, ID]) UpdateAll(ctx context.Context, entities []*T) ([]*T, error) {
	return s.repo.BulkUpdate(ctx, entities)
}

// SaveOrUpdate upserts entities on the given conflict columns.
func (s *Service[T, ID]) SaveOrUpdate(ctx context.Context, conflictColumns, updateColumns []string, entities ...*T) error {
	return s.repo.Upsert(ctx, conflictColumns, updateColumns, entities...)
}

// InTransaction scopes fn into one atomic unit; every service call made with
// the derived context runs on the same transaction.
func (s *Service[T, ID]) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return repository.WithTransaction(ctx, s.db, fn)
}
