// Package postgres provides PostgreSQL storage for simulation sessions.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/txn2/sim-platform/pkg/session"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// sessionColumns lists columns returned by session SELECT queries.
var sessionColumns = []string{
	"id", "model_name", "state", "created_at", "last_active_at", "expires_at",
}

// Store implements session.Store using PostgreSQL. Expiry is enforced by
// filtering reads on expires_at; expired rows are physically removed by
// Cleanup and the optional background routine.
type Store struct {
	db     *sql.DB
	ttl    time.Duration
	cancel context.CancelFunc
	done   chan struct{}
}

// Config configures the PostgreSQL session store.
type Config struct {
	TTL time.Duration
}

// New creates a new PostgreSQL session store. A non-positive TTL falls back
// to session.DefaultTTL.
func New(db *sql.DB, cfg Config) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &Store{
		db:  db,
		ttl: ttl,
	}
}

// Put unconditionally stores sess, replacing any prior entry. The row's
// created_at survives overwrites; last_active_at and expires_at refresh.
func (s *Store) Put(ctx context.Context, sess *session.Session) error {
	query := `
		INSERT INTO simulation_sessions (id, model_name, state, created_at, last_active_at, expires_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW() + $5::interval)
		ON CONFLICT (id) DO UPDATE
		SET state = EXCLUDED.state, last_active_at = NOW(), expires_at = NOW() + $5::interval
	`
	_, err := s.db.ExecContext(ctx, query,
		sess.ID, sess.ModelName, sess.State, sess.CreatedAt, s.ttlInterval(),
	)
	if err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID. Returns nil, nil if not found or expired.
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	query := `
		SELECT id, model_name, state, created_at, last_active_at, expires_at
		FROM simulation_sessions
		WHERE id = $1 AND expires_at > NOW()
	`
	row := s.db.QueryRowContext(ctx, query, id)
	return scanSession(row)
}

// Touch updates LastActiveAt and extends ExpiresAt by the store's TTL.
func (s *Store) Touch(ctx context.Context, id string) error {
	query := `
		UPDATE simulation_sessions
		SET last_active_at = NOW(), expires_at = NOW() + $2::interval
		WHERE id = $1 AND expires_at > NOW()
	`
	_, err := s.db.ExecContext(ctx, query, id, s.ttlInterval())
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM simulation_sessions WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// List returns non-expired sessions matching f, most recently active first.
func (s *Store) List(ctx context.Context, f session.Filter) ([]*session.Session, error) {
	qb := psq.Select(sessionColumns...).
		From("simulation_sessions").
		Where(sq.Expr("expires_at > NOW()")).
		OrderBy("last_active_at DESC")
	if f.ModelName != "" {
		qb = qb.Where(sq.Eq{"model_name": f.ModelName})
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building session list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*session.Session
	for rows.Next() {
		sess, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session rows: %w", err)
	}
	return sessions, nil
}

// Cleanup removes expired sessions and reports how many rows were deleted.
func (s *Store) Cleanup(ctx context.Context) (int, error) {
	query := `DELETE FROM simulation_sessions WHERE expires_at <= NOW()`
	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("cleaning up sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleaned sessions: %w", err)
	}
	return int(n), nil
}

// Ping reports whether the database is reachable. Used as a readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// StartCleanupRoutine starts a background goroutine that periodically removes
// expired sessions. The goroutine is stopped when Close is called.
func (s *Store) StartCleanupRoutine(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Cleanup(ctx); err != nil {
					slog.Warn("session cleanup failed", "error", err)
				}
			}
		}
	}()
}

// Close stops the cleanup goroutine and waits for it to exit.
// It is safe to call Close even if StartCleanupRoutine was never called.
func (s *Store) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return nil
}

// ttlInterval renders the store TTL as a Postgres interval literal.
func (s *Store) ttlInterval() string {
	return fmt.Sprintf("%d seconds", int(s.ttl.Seconds()))
}

// scanSession scans a single row into a Session.
func scanSession(row *sql.Row) (*session.Session, error) {
	var sess session.Session
	err := row.Scan(&sess.ID, &sess.ModelName, &sess.State, &sess.CreatedAt, &sess.LastActiveAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil //nolint:nilnil // Store contract: nil,nil for not-found
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &sess, nil
}

// scanSessionRow scans a row from sql.Rows into a Session.
func scanSessionRow(rows *sql.Rows) (*session.Session, error) {
	var sess session.Session
	err := rows.Scan(&sess.ID, &sess.ModelName, &sess.State, &sess.CreatedAt, &sess.LastActiveAt, &sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("scanning session row: %w", err)
	}
	return &sess, nil
}

// Verify interface compliance.
var _ session.Store = (*Store)(nil)
