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
	"fmt"
	"strings"

	"github.com/havenmind/keel/utils"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "DEBUG"
	}
}

// Logger is the key-value logging contract the connection provider accepts.
// Callers inject their own implementation; NewDefaultLogger supplies one
// backed by the module's logrus setup.
type Logger interface {
	SetLevel(LogLevel)
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// NewDefaultLogger returns the logrus-backed logger used when a caller does
// not inject one.
func NewDefaultLogger() Logger {
	return &defaultLogger{logger: utils.NewLogger("DATABASE")}
}

type defaultLogger struct {
	logger *utils.Logger
}

func (l *defaultLogger) Debug(msg string, fields ...any) {
	l.logger.Debug(msg + formatFields(fields...))
}

func (l *defaultLogger) Info(msg string, fields ...any) {
	l.logger.Info(msg + formatFields(fields...))
}

func (l *defaultLogger) Warn(msg string, fields ...any) {
	l.logger.Warn(msg + formatFields(fields...))
}

func (l *defaultLogger) Error(msg string, fields ...any) {
	l.logger.Error(msg + formatFields(fields...))
}

func (l *defaultLogger) SetLevel(level LogLevel) {
	utils.SetLoggerLevel("DATABASE", strings.ToLower(level.String()))
}

func formatFields(fields ...any) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(fields); i += 2 {
		b.WriteString(fmt.Sprintf(" %v=%v", fields[i], fields[i+1]))
	}
	return b.String()
}
