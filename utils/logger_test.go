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

package utils

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsRegisteredByName(t *testing.T) {
	a := NewLogger("TEST-A")
	b := NewLogger("TEST-A")
	other := NewLogger("TEST-B")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}

func TestNamedTextFormatterPrefixesMessages(t *testing.T) {
	logger := NewLogger("TEST-PREFIX")
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	logger.Info("repository ready")
	assert.Contains(t, buf.String(), "[TEST-PREFIX] repository ready")
}

func TestSetLoggerLevel(t *testing.T) {
	logger := NewLogger("TEST-LEVEL")

	require.True(t, SetLoggerLevel("TEST-LEVEL", "debug"))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	require.True(t, SetLoggerLevel("TEST-LEVEL", "error"))
	assert.Equal(t, logrus.ErrorLevel, logger.GetLevel())

	assert.False(t, SetLoggerLevel("never-registered", "debug"))
}

func TestConfigureLogLevel(t *testing.T) {
	a := NewLogger("TEST-GLOBAL-A")
	b := NewLogger("TEST-GLOBAL-B")

	ConfigureLogLevel("warn")
	t.Cleanup(func() { ConfigureLogLevel("info") })

	assert.Equal(t, logrus.WarnLevel, a.GetLevel())
	assert.Equal(t, logrus.WarnLevel, b.GetLevel())

	// Loggers created after the call inherit the new default.
	c := NewLogger("TEST-GLOBAL-C")
	assert.Equal(t, logrus.WarnLevel, c.GetLevel())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.TraceLevel, ParseLogLevel("trace"))
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel(" warning "))
	assert.Equal(t, logrus.ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("nonsense"))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("KEEL_TEST_STR", "value")
	assert.Equal(t, "value", EnvDefaultString("KEEL_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", EnvDefaultString("KEEL_TEST_STR_UNSET", "fallback"))

	t.Setenv("KEEL_TEST_BOOL", "true")
	assert.True(t, EnvDefaultBool("KEEL_TEST_BOOL", false))
	t.Setenv("KEEL_TEST_BOOL", "garbage")
	assert.False(t, EnvDefaultBool("KEEL_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("KEEL_TEST_BOOL_UNSET", true))
}
