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
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logrus logger type used across the module.
type Logger = logrus.Logger

var (
	defaultLevel   = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	logFormat      = EnvDefaultString("LOG_FORMAT", "text")
	registryMu     sync.RWMutex
	loggerRegistry = map[string]*logrus.Logger{}
)

// NewLogger returns the named logger, creating it on first use. Loggers are
// registered by name so their levels can be adjusted at runtime.
func NewLogger(name string) *logrus.Logger {
	registryMu.RLock()
	l, ok := loggerRegistry[name]
	registryMu.RUnlock()
	if ok {
		return l
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if l, ok := loggerRegistry[name]; ok {
		return l
	}

	l = logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(defaultLevel)
	if strings.EqualFold(logFormat, "json") {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg: "message",
			},
		})
	} else {
		l.SetFormatter(&namedTextFormatter{
			name: name,
			text: logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: "2006-01-02 15:04:05.000",
			},
		})
	}
	loggerRegistry[name] = l
	return l
}

// SetLoggerLevel adjusts one registered logger. Returns false when the name
// is unknown.
func SetLoggerLevel(name string, level string) bool {
	registryMu.RLock()
	l, ok := loggerRegistry[name]
	registryMu.RUnlock()
	if !ok {
		return false
	}
	l.SetLevel(ParseLogLevel(level))
	return true
}

// ConfigureLogLevel sets the level for every registered logger and for
// loggers created afterwards.
func ConfigureLogLevel(level string) {
	parsed := ParseLogLevel(level)
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultLevel = parsed
	for _, l := range loggerRegistry {
		l.SetLevel(parsed)
	}
}

// ParseLogLevel maps a level string onto a logrus level, defaulting to info.
func ParseLogLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

type namedTextFormatter struct {
	name string
	text logrus.TextFormatter
}

func (f *namedTextFormatter) Format(e *logrus.Entry) ([]byte, error) {
	clone := *e
	clone.Message = fmt.Sprintf("[%s] %s", f.name, e.Message)
	return f.text.Format(&clone)
}

// EnvDefaultString returns the environment value for key, or def when unset.
func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvDefaultBool returns the boolean environment value for key, or def when
// unset or unparsable.
func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}
