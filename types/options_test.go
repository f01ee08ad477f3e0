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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPage(t *testing.T) {
	opts := NewQueryOptions(nil).WithPage(3, 20)
	require.NotNil(t, opts.Limit)
	require.NotNil(t, opts.Offset)
	assert.Equal(t, 20, *opts.Limit)
	assert.Equal(t, 40, *opts.Offset)

	// Out-of-range inputs are clamped, not rejected.
	opts = NewQueryOptions(nil).WithPage(0, 0)
	assert.Equal(t, defaultPageSize, *opts.Limit)
	assert.Equal(t, 0, *opts.Offset)
}

func TestWithOrderAndCount(t *testing.T) {
	opts := NewQueryOptions(nil).WithOrder("-created_at").WithOrder("name").WithCount()
	assert.Equal(t, []string{"-created_at", "name"}, opts.OrderBy)
	assert.True(t, opts.IncludeCount)
}

func intPtr(n int) *int { return &n }

func page(n int) []*int {
	out := make([]*int, n)
	for i := range out {
		out[i] = intPtr(i)
	}
	return out
}

func TestNewQueryResultMetadata(t *testing.T) {
	tests := []struct {
		name        string
		rows        int
		limit       *int
		offset      *int
		total       *int
		hasNext     bool
		hasPrevious bool
		page        *int
	}{
		{"first page of three", 2, intPtr(2), intPtr(0), intPtr(3), true, false, intPtr(1)},
		{"last partial page", 1, intPtr(2), intPtr(2), intPtr(3), false, true, intPtr(2)},
		{"exact final page", 2, intPtr(2), intPtr(2), intPtr(4), false, true, intPtr(2)},
		{"middle page", 2, intPtr(2), intPtr(2), intPtr(6), true, true, intPtr(2)},
		{"no pagination", 3, nil, nil, intPtr(3), false, false, nil},
		{"full page without count", 2, intPtr(2), intPtr(0), nil, true, false, intPtr(1)},
		{"short page without count", 1, intPtr(2), intPtr(0), nil, false, false, intPtr(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := QueryOptions{Limit: tt.limit, Offset: tt.offset}
			result := NewQueryResult(page(tt.rows), opts, tt.total)

			assert.Equal(t, tt.hasNext, result.HasNext, "HasNext")
			assert.Equal(t, tt.hasPrevious, result.HasPrevious, "HasPrevious")
			if tt.page == nil {
				assert.Nil(t, result.Page)
			} else {
				require.NotNil(t, result.Page)
				assert.Equal(t, *tt.page, *result.Page)
			}
		})
	}
}

// A degenerate limit must not reach the page arithmetic, whatever the offset.
func TestNewQueryResultNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		result := NewQueryResult(page(0), QueryOptions{Limit: intPtr(limit), Offset: intPtr(5)}, nil)
		assert.Nil(t, result.Page)
		assert.Nil(t, result.PageSize)
		assert.False(t, result.HasNext)
		assert.False(t, result.HasPrevious)
	}
}

func TestNewQueryResultNeverReturnsNilData(t *testing.T) {
	result := NewQueryResult[int](nil, QueryOptions{}, nil)
	require.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
}
