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

package database

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func queryEvent(query string, startedAgo time.Duration, err error) *bun.QueryEvent {
	return &bun.QueryEvent{
		Query:     query,
		StartTime: time.Now().Add(-startedAgo),
		Err:       err,
	}
}

type recordingLogger struct {
	warns []string
}

func (l *recordingLogger) SetLevel(LogLevel)               {}
func (l *recordingLogger) Debug(msg string, fields ...any) {}
func (l *recordingLogger) Info(msg string, fields ...any)  {}
func (l *recordingLogger) Warn(msg string, fields ...any)  { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string, fields ...any) {}

func TestSlowQueryHook(t *testing.T) {
	logger := &recordingLogger{}
	hook := NewSlowQueryHook(10*time.Millisecond, logger)
	ctx := context.Background()

	hook.AfterQuery(ctx, queryEvent("SELECT 1", time.Millisecond, nil))
	assert.Empty(t, logger.warns)

	hook.AfterQuery(ctx, queryEvent("SELECT pg_sleep(1)", time.Second, nil))
	require.Len(t, logger.warns, 1)
	assert.Equal(t, "Slow query detected", logger.warns[0])

	// Failed statements are the error path's concern, not the slow log's.
	hook.AfterQuery(ctx, queryEvent("SELECT broken", time.Second, errors.New("boom")))
	assert.Len(t, logger.warns, 1)
}

func TestConsoleQueryHookVerbose(t *testing.T) {
	var buf bytes.Buffer
	hook := NewConsoleQueryHook(&buf, true)

	hook.AfterQuery(context.Background(), queryEvent("SELECT 1", time.Millisecond, nil))
	assert.Contains(t, buf.String(), "SELECT 1")
}

func TestConsoleQueryHookQuietPrintsOnlyFailures(t *testing.T) {
	var buf bytes.Buffer
	hook := NewConsoleQueryHook(&buf, false)
	ctx := context.Background()

	hook.AfterQuery(ctx, queryEvent("SELECT 1", time.Millisecond, nil))
	hook.AfterQuery(ctx, queryEvent("SELECT absent", time.Millisecond, sql.ErrNoRows))
	hook.AfterQuery(ctx, queryEvent("SELECT late", time.Millisecond, sql.ErrTxDone))
	assert.Empty(t, buf.String())

	hook.AfterQuery(ctx, queryEvent("SELECT broken", time.Millisecond, errors.New("syntax error")))
	assert.Contains(t, buf.String(), "SELECT broken")
	assert.Contains(t, buf.String(), "syntax error")
}
