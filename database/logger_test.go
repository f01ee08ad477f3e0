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
	"os"
	"testing"

	"github.com/havenmind/keel/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "DEBUG", LogLevel(99).String())
}

func TestDefaultLoggerWritesKeyValueFields(t *testing.T) {
	logger := NewDefaultLogger()
	require.NotNil(t, logger)

	var buf bytes.Buffer
	utils.NewLogger("DATABASE").SetOutput(&buf)
	t.Cleanup(func() { utils.NewLogger("DATABASE").SetOutput(os.Stderr) })

	logger.SetLevel(LogLevelInfo)
	logger.Info("Database connected", "type", "sqlite", "host", "localhost")

	out := buf.String()
	assert.Contains(t, out, "[DATABASE] Database connected")
	assert.Contains(t, out, "type=sqlite")
	assert.Contains(t, out, "host=localhost")
}

func TestFormatFields(t *testing.T) {
	assert.Equal(t, "", formatFields())
	assert.Equal(t, " a=1 b=two", formatFields("a", 1, "b", "two"))

	// A trailing key without a value is dropped rather than mis-paired.
	assert.Equal(t, " a=1", formatFields("a", 1, "orphan"))
}
