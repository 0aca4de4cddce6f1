package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: sessions and memories",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS sessions (
					id TEXT PRIMARY KEY,
					scope TEXT NOT NULL,
					state TEXT NOT NULL,
					started_at DATETIME NOT NULL,
					completed_at DATETIME,
					error TEXT,
					apps TEXT NOT NULL DEFAULT '[]',
					cleanups TEXT NOT NULL DEFAULT '[]',
					relocations TEXT NOT NULL DEFAULT '[]',
					duplicate_groups TEXT NOT NULL DEFAULT '[]',
					summary TEXT NOT NULL DEFAULT '{}',
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_sessions_scope ON sessions(scope)`,
				`CREATE INDEX idx_sessions_started ON sessions(started_at)`,

				`CREATE TABLE IF NOT EXISTS memories (
					id TEXT PRIMARY KEY,
					type TEXT NOT NULL,
					context TEXT NOT NULL,
					decision TEXT NOT NULL,
					user_agreed INTEGER NOT NULL DEFAULT 0,
					model_confidence REAL NOT NULL DEFAULT 0,
					metadata TEXT NOT NULL DEFAULT '{}',
					timestamp DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_memories_type ON memories(type)`,
				`CREATE INDEX idx_memories_timestamp ON memories(timestamp)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Extracted metadata columns for similarity lookup",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE memories ADD COLUMN publisher TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE memories ADD COLUMN category TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE memories ADD COLUMN cluster_type TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE memories ADD COLUMN session_id TEXT NOT NULL DEFAULT ''`,
				`CREATE INDEX idx_memories_publisher ON memories(publisher)`,
				`CREATE INDEX idx_memories_category ON memories(category)`,
				`CREATE INDEX idx_memories_cluster_type ON memories(cluster_type)`,
				`CREATE INDEX idx_memories_session ON memories(session_id)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`, m.Version, m.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	return nil
}

// schemaVersion returns the highest applied migration version.
func (s *SQLiteStorage) schemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
