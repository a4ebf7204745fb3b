package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/repository"
)

const eventColumns = `event_id, title, description, event_type, start_time, end_time, timezone, priority,
	is_active, is_recurring, recurrence_pattern, requirements, rewards, metadata,
	window_start, window_key, created_at, updated_at`

// EventRepository implements repository.EventRepository for PostgreSQL
type EventRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

var _ repository.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new EventRepository. Every call is bounded by timeout.
func NewEventRepository(db *pgxpool.Pool, timeout time.Duration) *EventRepository {
	return &EventRepository{db: db, timeout: timeout}
}

func (r *EventRepository) InsertEvent(ctx context.Context, e *domain.Event) error {
	ctx, cancel := r.withTimeout(ctx)
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

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = r.db.Exec(ctx, query,
		e.ID, e.Title, e.Description, string(e.EventType),
		e.StartTime.UTC(), e.EndTime.UTC(), e.Timezone, e.Priority,
		e.IsActive, e.IsRecurring, e.RecurrencePattern,
		reqJSON, rewJSON, mdJSON,
		utcPtr(e.WindowStart), nullString(e.WindowKey), e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	return translateError(OpInsertEvent, err)
}

func (r *EventRepository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE event_id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, id)
		}
		return nil, translateError(OpGetEvent, err)
	}
	return &e, nil
}

func (r *EventRepository) QueryEvents(ctx context.Context, f repository.EventFilter, order repository.EventOrder) ([]domain.Event, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.ActiveOnly {
		where = append(where, "is_active")
	}
	if f.RecurringOnly {
		where = append(where, "is_recurring")
	}
	if f.ExcludeTemplates {
		where = append(where, "NOT (is_recurring AND recurrence_pattern <> '')")
	}
	if f.EventType != "" {
		add("event_type = $%d", string(f.EventType))
	}
	if f.StartFrom != nil {
		add("start_time >= $%d", f.StartFrom.UTC())
	}
	if f.StartBefore != nil {
		add("start_time < $%d", f.StartBefore.UTC())
	}
	if f.StartAfter != nil {
		add("start_time > $%d", f.StartAfter.UTC())
	}
	if f.StartUntil != nil {
		add("start_time <= $%d", f.StartUntil.UTC())
	}
	if f.EndFrom != nil {
		add("end_time >= $%d", f.EndFrom.UTC())
	}
	if f.EndBefore != nil {
		add("end_time < $%d", f.EndBefore.UTC())
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + eventColumns + " FROM events")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	switch order {
	case repository.OrderStart:
		sb.WriteString(" ORDER BY start_time ASC, priority DESC, event_id ASC")
	default:
		sb.WriteString(" ORDER BY priority DESC, start_time ASC, event_id ASC")
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, translateError(OpQueryEvents, err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, translateError(OpQueryEvents, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(OpQueryEvents, err)
	}
	return events, nil
}

func (r *EventRepository) DeactivateEvents(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE events
		SET is_active = FALSE, updated_at = NOW()
		WHERE event_id = ANY($1) AND is_active
	`, ids)
	if err != nil {
		return 0, translateError(OpDeactivateEvents, err)
	}
	return tag.RowsAffected(), nil
}

func (r *EventRepository) GetProgress(ctx context.Context, eventID, playerID string) (*domain.EventProgress, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		p    = domain.EventProgress{EventID: eventID, PlayerID: playerID}
		data []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT progress_data, updated_at
		FROM event_progress
		WHERE event_id = $1 AND player_id = $2
	`, eventID, playerID).Scan(&data, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError(OpGetProgress, err)
	}
	if err := decodeJSON(data, &p.ProgressData); err != nil {
		return nil, err
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r *EventRepository) UpsertProgress(ctx context.Context, p *domain.EventProgress) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	data, err := encodeJSON(p.ProgressData)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO event_progress (event_id, player_id, progress_data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, player_id)
		DO UPDATE SET progress_data = EXCLUDED.progress_data, updated_at = EXCLUDED.updated_at
	`, p.EventID, p.PlayerID, data, p.UpdatedAt.UTC())
	return translateError(OpUpsertProgress, err)
}

func (r *EventRepository) GetCompletion(ctx context.Context, eventID, playerID string) (*domain.EventCompletion, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	c := domain.EventCompletion{EventID: eventID, PlayerID: playerID}
	err := r.db.QueryRow(ctx, `
		SELECT completed_at, rewards_claimed
		FROM event_completions
		WHERE event_id = $1 AND player_id = $2
	`, eventID, playerID).Scan(&c.CompletedAt, &c.RewardsClaimed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError(OpGetCompletion, err)
	}
	c.CompletedAt = c.CompletedAt.UTC()
	return &c, nil
}

// UpsertCompletion keeps the original completed_at on conflict. xmax is zero
// only for a freshly inserted tuple, which tells the caller whether to grant.
func (r *EventRepository) UpsertCompletion(ctx context.Context, c *domain.EventCompletion) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var created bool
	err := r.db.QueryRow(ctx, `
		INSERT INTO event_completions (event_id, player_id, completed_at, rewards_claimed)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (event_id, player_id)
		DO UPDATE SET completed_at = event_completions.completed_at
		RETURNING completed_at, rewards_claimed, (xmax = 0) AS inserted
	`, c.EventID, c.PlayerID, c.CompletedAt.UTC()).Scan(&c.CompletedAt, &c.RewardsClaimed, &created)
	if err != nil {
		return false, translateError(OpUpsertCompletion, err)
	}
	c.CompletedAt = c.CompletedAt.UTC()
	return created, nil
}

func (r *EventRepository) MarkRewardsClaimed(ctx context.Context, eventID, playerID string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE event_completions SET rewards_claimed = TRUE
		WHERE event_id = $1 AND player_id = $2
	`, eventID, playerID)
	if err != nil {
		return translateError(OpMarkRewardsClaimed, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: event %s player %s", domain.ErrCompletionNotFound, eventID, playerID)
	}
	return nil
}

func (r *EventRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return translateError(OpPing, r.db.Ping(ctx))
}

// Close releases the pool.
func (r *EventRepository) Close() error {
	r.db.Close()
	return nil
}
