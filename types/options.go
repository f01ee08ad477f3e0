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

// QueryOptions describes a declarative list query: filters, ordering,
// pagination, and execution modifiers.
type QueryOptions struct {
	Filters Filters

	// OrderBy holds column names, optionally prefixed with "-" for
	// descending order. Entries keep their caller-given precedence.
	OrderBy []string

	// Limit and Offset are optional. An Offset without a Limit is a no-op.
	Limit  *int
	Offset *int

	// IncludeCount requests a second COUNT(*) query sharing the filter
	// clause (never the pagination clause).
	IncludeCount bool

	// ForUpdate requests a row lock where the dialect supports it.
	ForUpdate bool
}

// NewQueryOptions returns options constrained by the given filters.
func NewQueryOptions(filters Filters) QueryOptions {
	return QueryOptions{Filters: filters}
}

// WithPage sets limit and offset from a 1-based page number and page size.
func (o QueryOptions) WithPage(page, pageSize int) QueryOptions {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	limit := pageSize
	offset := (page - 1) * pageSize
	o.Limit = &limit
	o.Offset = &offset
	return o
}

// WithOrder appends ordering columns ("-name" for descending).
func (o QueryOptions) WithOrder(columns ...string) QueryOptions {
	o.OrderBy = append(o.OrderBy, columns...)
	return o
}

// WithCount requests the total row count alongside the page.
func (o QueryOptions) WithCount() QueryOptions {
	o.IncludeCount = true
	return o
}

const defaultPageSize = 10

// QueryResult is a page of decoded entities plus pagination metadata.
// Page and PageSize are populated only when a positive Limit and an Offset
// were both set.
type QueryResult[T any] struct {
	Data        []*T
	TotalCount  *int
	Page        *int
	PageSize    *int
	HasNext     bool
	HasPrevious bool
}

// NewQueryResult computes pagination metadata for a fetched page.
// totalCount may be nil when the caller did not request a count; HasNext is
// then derived from the returned page length instead. A non-positive limit
// carries no page geometry, so the metadata stays at its zero values.
func NewQueryResult[T any](data []*T, opts QueryOptions, totalCount *int) *QueryResult[T] {
	if data == nil {
		data = make([]*T, 0)
	}
	r := &QueryResult[T]{Data: data, TotalCount: totalCount}

	if opts.Limit == nil || *opts.Limit <= 0 {
		return r
	}

	offset := 0
	if opts.Offset != nil {
		offset = *opts.Offset
		page := offset / *opts.Limit
		page++
		size := *opts.Limit
		r.Page = &page
		r.PageSize = &size
	}

	r.HasPrevious = offset > 0
	if totalCount != nil {
		r.HasNext = offset+*opts.Limit < *totalCount
	} else {
		r.HasNext = len(data) == *opts.Limit
	}
	return r
}
