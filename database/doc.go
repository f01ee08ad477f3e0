// Package database is the connection provider: pooled Bun handles across
// MySQL, PostgreSQL, and SQLite, configuration loading, driver error
// classification, query hooks, health checks, and logging.
package database
