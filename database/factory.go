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
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// Factory constructs and initializes a Manager from configuration. It is
// built once at startup and handed to whatever wires the repositories; there
// is no process-wide instance.
type Factory struct {
	manager Manager
	logger  Logger
}

// NewFactory returns a factory using the given logger; nil selects the
// logrus-backed default.
func NewFactory(logger Logger) *Factory {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Factory{logger: logger}
}

// CreateFromConfig builds a Manager from the connection configuration,
// applying environment overrides first.
func (f *Factory) CreateFromConfig(cfg *ConnectionConfig) (Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	supported := map[string]bool{"mysql": true, "postgres": true, "postgresql": true, "sqlite": true, "sqlite3": true}
	if !supported[cfg.Type] {
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	f.overrideFromEnv(cfg)

	manager := NewManager(cfg)
	manager.SetLogger(f.logger)
	f.manager = manager
	return manager, nil
}

// overrideFromEnv lets deployment environments override connection settings
// without touching the configuration file.
func (f *Factory) overrideFromEnv(cfg *ConnectionConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if username := os.Getenv("DB_USERNAME"); username != "" {
		cfg.Username = username
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		cfg.DBName = dbname
	}
	if sslmode := os.Getenv("DB_SSLMODE"); sslmode != "" {
		cfg.SSLMode = sslmode
	}
	if maxIdle := os.Getenv("DB_MAX_IDLE_CONNS"); maxIdle != "" {
		if v, err := strconv.Atoi(maxIdle); err == nil {
			cfg.MaxIdleConns = v
		}
	}
	if maxOpen := os.Getenv("DB_MAX_OPEN_CONNS"); maxOpen != "" {
		if v, err := strconv.Atoi(maxOpen); err == nil {
			cfg.MaxOpenConns = v
		}
	}
	if maxLifetime := os.Getenv("DB_CONN_MAX_LIFETIME"); maxLifetime != "" {
		if v, err := strconv.Atoi(maxLifetime); err == nil {
			cfg.ConnMaxLifetime = time.Duration(v) * time.Second
		}
	}
	if enableReconnect := os.Getenv("DB_ENABLE_RECONNECT"); enableReconnect != "" {
		cfg.EnableReconnect = enableReconnect == "true"
	}
	if reconnectInterval := os.Getenv("DB_RECONNECT_INTERVAL"); reconnectInterval != "" {
		if v, err := strconv.Atoi(reconnectInterval); err == nil {
			cfg.ReconnectInterval = time.Duration(v) * time.Second
		}
	}
	if enableQueryLog := os.Getenv("DB_ENABLE_QUERY_LOG"); enableQueryLog != "" {
		cfg.EnableQueryLog = enableQueryLog == "true"
	}
}

// Initialize connects the managed database.
func (f *Factory) Initialize(ctx context.Context) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	f.logger.Info("Database initialization completed")
	return nil
}

// GetManager returns the underlying manager.
func (f *Factory) GetManager() Manager { return f.manager }

// GetDB returns the Bun handle, or nil before initialization.
func (f *Factory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

// Close disconnects the managed database.
func (f *Factory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

// Open is the one-call setup: load overrides, connect, and return the ready
// manager.
func Open(ctx context.Context, cfg *ConnectionConfig, logger Logger) (Manager, error) {
	factory := NewFactory(logger)
	if _, err := factory.CreateFromConfig(cfg); err != nil {
		return nil, err
	}
	if err := factory.Initialize(ctx); err != nil {
		return nil, err
	}
	return factory.GetManager(), nil
}
