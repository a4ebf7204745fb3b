// Package sqlite is the embedded EventRepository for single-node and development
// deployments. Instants are stored as UTC unix milliseconds.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/osse101/liveops/internal/database"
	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/repository"
)

const eventColumns = `event_id, title, description, event_type, start_time, end_time, timezone, priority,
	is_active, is_recurring, recurrence_pattern, requirements, rewards, metadata,
	window_start, window_key, created_at, updated_at`

// Store implements repository.EventRepository on SQLite.
type Store struct {
	db      *sql.DB
	timeout time.Duration
}

var _ repository.EventRepository = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string, timeout time.Duration) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := database.MigrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, timeout: timeout}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return translateError("ping", s.db.PingContext(ctx))
}

func (s *Store) InsertEvent(ctx context.Context, e *domain.Event) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reqJSON, err := encodeJSON(e.Requirements)
	if err != nil {
		return err
	}
	rewJSON, err := encodeJSON(e.Rewards)
	if err != nil {
		return err
	}
	mdJSON, err := encodeJSON(e.Metadata)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO events (`+eventColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		e.ID, e.Title, e.Description, string(e.EventType),
		toMillis(e.StartTime), toMillis(e.EndTime), e.Timezone, e.Priority,
		e.IsActive, e.IsRecurring, e.RecurrencePattern,
		reqJSON, rewJSON, mdJSON,
		toNullMillis(e.WindowStart), sql.NullString{String: e.WindowKey, Valid: e.WindowKey != ""},
		toMillis(e.CreatedAt), toMillis(e.UpdatedAt),
	)
	return translateError("insert event", err)
}

func (s *Store) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE event_id = ?`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, id)
		}
		return nil, translateError("get event", err)
	}
	return &e, nil
}

func (s *Store) QueryEvents(ctx context.Context, f repository.EventFilter, order repository.EventOrder) ([]domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		where = append(where, clause)
		args = append(args, arg)
	}
	if f.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if f.RecurringOnly {
		where = append(where, "is_recurring = 1")
	}
	if f.ExcludeTemplates {
		where = append(where, "NOT (is_recurring = 1 AND recurrence_pattern <> '')")
	}
	if f.EventType != "" {
		add("event_type = ?", string(f.EventType))
	}
	if f.StartFrom != nil {
		add("start_time >= ?", toMillis(*f.StartFrom))
	}
	if f.StartBefore != nil {
		add("start_time < ?", toMillis(*f.StartBefore))
	}
	if f.StartAfter != nil {
		add("start_time > ?", toMillis(*f.StartAfter))
	}
	if f.StartUntil != nil {
		add("start_time <= ?", toMillis(*f.StartUntil))
	}
	if f.EndFrom != nil {
		add("end_time >= ?", toMillis(*f.EndFrom))
	}
	if f.EndBefore != nil {
		add("end_time < ?", toMillis(*f.EndBefore))
	}

	query := "SELECT " + eventColumns + " FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if order == repository.OrderStart {
		query += " ORDER BY start_time ASC, priority DESC, event_id ASC"
	} else {
		query += " ORDER BY priority DESC, start_time ASC, event_id ASC"
	}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError("query events", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, translateError("query events", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("query events", err)
	}
	return events, nil
}

func (s *Store) DeactivateEvents(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	args := make([]any, 0, len(ids)+1)
	args = append(args, toMillis(time.Now()))
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	res, err := s.db.ExecContext(ctx, `
UPDATE events SET is_active = 0, updated_at = ?
WHERE is_active = 1 AND event_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, translateError("deactivate events", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, translateError("deactivate events", err)
	}
	return n, nil
}

func (s *Store) GetProgress(ctx context.Context, eventID, playerID string) (*domain.EventProgress, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		data      string
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT progress_data, updated_at FROM event_progress WHERE event_id = ? AND player_id = ?`,
		eventID, playerID).Scan(&data, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError("get progress", err)
	}

	p := &domain.EventProgress{EventID: eventID, PlayerID: playerID, UpdatedAt: fromMillis(updatedAt)}
	if err := decodeJSON(data, &p.ProgressData); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) UpsertProgress(ctx context.Context, p *domain.EventProgress) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := encodeJSON(p.ProgressData)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO event_progress (event_id, player_id, progress_data, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (event_id, player_id)
DO UPDATE SET progress_data = excluded.progress_data, updated_at = excluded.updated_at`,
		p.EventID, p.PlayerID, data, toMillis(p.UpdatedAt))
	return translateError("upsert progress", err)
}

func (s *Store) GetCompletion(ctx context.Context, eventID, playerID string) (*domain.EventCompletion, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.getCompletion(ctx, s.db, eventID, playerID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getCompletion(ctx context.Context, q queryer, eventID, playerID string) (*domain.EventCompletion, error) {
	var (
		completedAt int64
		claimed     bool
	)
	err := q.QueryRowContext(ctx, `
SELECT completed_at, rewards_claimed FROM event_completions WHERE event_id = ? AND player_id = ?`,
		eventID, playerID).Scan(&completedAt, &claimed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError("get completion", err)
	}
	return &domain.EventCompletion{
		EventID:        eventID,
		PlayerID:       playerID,
		CompletedAt:    fromMillis(completedAt),
		RewardsClaimed: claimed,
	}, nil
}

// UpsertCompletion inserts inside a transaction and reads back the stored row;
// RowsAffected on the conflict-ignoring insert tells whether this call created it.
func (s *Store) UpsertCompletion(ctx context.Context, c *domain.EventCompletion) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, translateError("upsert completion", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
INSERT INTO event_completions (event_id, player_id, completed_at, rewards_claimed)
VALUES (?, ?, ?, 0)
ON CONFLICT (event_id, player_id) DO NOTHING`,
		c.EventID, c.PlayerID, toMillis(c.CompletedAt))
	if err != nil {
		return false, translateError("upsert completion", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, translateError("upsert completion", err)
	}

	stored, err := s.getCompletion(ctx, tx, c.EventID, c.PlayerID)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, translateError("upsert completion", err)
	}
	if stored != nil {
		c.CompletedAt = stored.CompletedAt
		c.RewardsClaimed = stored.RewardsClaimed
	}
	return n == 1, nil
}

func (s *Store) MarkRewardsClaimed(ctx context.Context, eventID, playerID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
UPDATE event_completions SET rewards_claimed = 1 WHERE event_id = ? AND player_id = ?`,
		eventID, playerID)
	if err != nil {
		return translateError("mark rewards claimed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translateError("mark rewards claimed", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: event %s player %s", domain.ErrCompletionNotFound, eventID, playerID)
	}
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (domain.Event, error) {
	var (
		e                        domain.Event
		eventType                string
		start, end, created, upd int64
		windowStart              sql.NullInt64
		windowKey                sql.NullString
		reqJSON, rewJSON, mdJSON string
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &eventType,
		&start, &end, &e.Timezone, &e.Priority,
		&e.IsActive, &e.IsRecurring, &e.RecurrencePattern,
		&reqJSON, &rewJSON, &mdJSON,
		&windowStart, &windowKey, &created, &upd,
	)
	if err != nil {
		return e, err
	}
	e.EventType = domain.EventType(eventType)
	e.StartTime = fromMillis(start)
	e.EndTime = fromMillis(end)
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(upd)
	if windowStart.Valid {
		ws := fromMillis(windowStart.Int64)
		e.WindowStart = &ws
	}
	e.WindowKey = windowKey.String
	if err := decodeJSON(reqJSON, &e.Requirements); err != nil {
		return e, err
	}
	if err := decodeJSON(rewJSON, &e.Rewards); err != nil {
		return e, err
	}
	if err := decodeJSON(mdJSON, &e.Metadata); err != nil {
		return e, err
	}
	return e, nil
}

func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", domain.ErrEventAlreadyExists, op)
		case sqlite3lib.SQLITE_CONSTRAINT_CHECK:
			return domain.NewValidationError(domain.ErrInvertedInterval, nil)
		}
	}
	return domain.NewStoreError(op, err)
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func toNullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	if string(b) == "null" {
		return "{}", nil
	}
	return string(b), nil
}

func decodeJSON(data string, v any) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}
