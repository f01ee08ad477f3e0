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

	"github.com/uptrace/bun"
)

type txContextKey struct{}

// TxFromContext returns the transaction carried by ctx, if a WithTransaction
// scope is open.
func TxFromContext(ctx context.Context) (bun.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(bun.Tx)
	return tx, ok
}

// WithTransaction scopes fn into one atomic unit: it begins a transaction,
// threads it through the context so every core call inside fn executes on the
// same connection, commits on normal return, and rolls back when fn returns
// an error or panics. Nested calls join the outer scope instead of opening a
// second transaction, which would deadlock against the same connection.
func WithTransaction(ctx context.Context, db *bun.DB, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return NewRepositoryError("begin transaction", err)
	}

	done := false
	defer func() {
		if !done {
			// Reached only when fn panicked; release the connection
			// before the panic continues up.
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		done = true
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		done = true
		_ = tx.Rollback()
		return NewRepositoryError("commit transaction", err)
	}
	done = true
	return nil
}
