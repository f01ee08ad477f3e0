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
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

// SlowQueryHook logs statements that run longer than the configured
// threshold. The manager installs it when SlowQueryTime is set.
type SlowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

// NewSlowQueryHook returns a hook reporting queries slower than slowTime.
func NewSlowQueryHook(slowTime time.Duration, logger Logger) *SlowQueryHook {
	return &SlowQueryHook{slowTime: slowTime, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err != nil || h.logger == nil {
		return
	}
	duration := time.Since(event.StartTime)
	if duration > h.slowTime {
		h.logger.Warn("Slow query detected",
			"duration", duration,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
	}
}

// ConsoleQueryHook prints every statement with per-operation coloring.
// Intended for local development; gate it behind EnableQueryLog in shared
// environments.
type ConsoleQueryHook struct {
	writer  io.Writer
	verbose bool
}

var _ bun.QueryHook = (*ConsoleQueryHook)(nil)

// NewConsoleQueryHook returns a colored console hook. A nil writer defaults
// to stderr. When verbose is false only failed statements are printed.
func NewConsoleQueryHook(writer io.Writer, verbose bool) *ConsoleQueryHook {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleQueryHook{writer: writer, verbose: verbose}
}

func (h *ConsoleQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *ConsoleQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if !h.verbose {
		switch {
		case event.Err == nil,
			errors.Is(event.Err, sql.ErrNoRows),
			errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	line := []any{
		now.Format("2006-01-02 15:04:05.000"),
		now.Sub(event.StartTime).Round(time.Microsecond),
		operationColor(event.Operation()).Sprint(event.Query),
	}
	if event.Err != nil {
		line = append(line, color.New(color.BgRed).Sprintf(" %v ", event.Err))
	}
	_, _ = color.New().Fprintln(h.writer, line...)
}

func operationColor(operation string) *color.Color {
	switch operation {
	case "SELECT":
		return color.New(color.FgGreen)
	case "INSERT":
		return color.New(color.FgBlue)
	case "UPDATE":
		return color.New(color.FgYellow)
	case "DELETE":
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgRed)
	}
}
