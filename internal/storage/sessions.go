package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"diskwise/internal/model"
)

// SaveSession inserts or updates a session and all of its recommendation
// lists in a single transaction.
func (s *SQLiteStorage) SaveSession(ctx context.Context, session *model.Session) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSession(session); err != nil {
		return err
	}

	apps, err := json.Marshal(session.Apps)
	if err != nil {
		return fmt.Errorf("failed to marshal app recommendations: %w", err)
	}
	cleanups, err := json.Marshal(session.Cleanups)
	if err != nil {
		return fmt.Errorf("failed to marshal cleanup recommendations: %w", err)
	}
	relocations, err := json.Marshal(session.Relocations)
	if err != nil {
		return fmt.Errorf("failed to marshal relocation recommendations: %w", err)
	}
	groups, err := json.Marshal(session.DuplicateGroups)
	if err != nil {
		return fmt.Errorf("failed to marshal duplicate groups: %w", err)
	}
	summary, err := json.Marshal(session.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	var completedAt any
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, scope, state, started_at, completed_at, error,
			apps, cleanups, relocations, duplicate_groups, summary, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			completed_at = excluded.completed_at,
			error = excluded.error,
			apps = excluded.apps,
			cleanups = excluded.cleanups,
			relocations = excluded.relocations,
			duplicate_groups = excluded.duplicate_groups,
			summary = excluded.summary,
			updated_at = CURRENT_TIMESTAMP
	`,
		session.ID,
		session.Scope,
		string(session.State),
		session.StartedAt,
		completedAt,
		session.Error,
		string(apps),
		string(cleanups),
		string(relocations),
		string(groups),
		string(summary),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by id.
func (s *SQLiteStorage) GetSession(ctx context.Context, id string) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, scope, state, started_at, completed_at, error,
		       apps, cleanups, relocations, duplicate_groups, summary
		FROM sessions WHERE id = ?
	`, id)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return session, err
}

// GetRecentSessions returns up to limit sessions, most recently started first.
func (s *SQLiteStorage) GetRecentSessions(ctx context.Context, limit int) ([]*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scope, state, started_at, completed_at, error,
		       apps, cleanups, relocations, duplicate_groups, summary
		FROM sessions ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// GetActiveSession returns the non-terminal session for a scope, or
// ErrNotFound when none is active.
func (s *SQLiteStorage) GetActiveSession(ctx context.Context, scope string) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(scope, "scope"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, scope, state, started_at, completed_at, error,
		       apps, cleanups, relocations, duplicate_groups, summary
		FROM sessions
		WHERE scope = ? AND state NOT IN (?, ?, ?)
		ORDER BY started_at DESC LIMIT 1
	`, scope, string(model.StateCompleted), string(model.StateFailed), string(model.StateCancelled))

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active session for scope %s: %w", scope, ErrNotFound)
	}
	return session, err
}

// PruneSessions deletes all but the keep most recent sessions and returns
// how many were removed.
func (s *SQLiteStorage) PruneSessions(ctx context.Context, keep int) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned sessions: %w", err)
	}
	return int(n), nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	var (
		session     model.Session
		state       string
		completedAt sql.NullTime
		errMsg      sql.NullString
		apps        string
		cleanups    string
		relocations string
		groups      string
		summary     string
	)

	err := row.Scan(&session.ID, &session.Scope, &state, &session.StartedAt,
		&completedAt, &errMsg, &apps, &cleanups, &relocations, &groups, &summary)
	if err != nil {
		return nil, err
	}

	session.State = model.SessionState(state)
	if completedAt.Valid {
		t := completedAt.Time
		session.CompletedAt = &t
	}
	if errMsg.Valid {
		session.Error = errMsg.String
	}

	if err := json.Unmarshal([]byte(apps), &session.Apps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal app recommendations: %w", err)
	}
	if err := json.Unmarshal([]byte(cleanups), &session.Cleanups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cleanup recommendations: %w", err)
	}
	if err := json.Unmarshal([]byte(relocations), &session.Relocations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relocation recommendations: %w", err)
	}
	if err := json.Unmarshal([]byte(groups), &session.DuplicateGroups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal duplicate groups: %w", err)
	}
	if err := json.Unmarshal([]byte(summary), &session.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &session, nil
}
