package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/liveops/internal/domain"
)

// translateError maps driver errors onto the domain taxonomy.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case PgErrorCodeUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrEventAlreadyExists, pgErr.ConstraintName)
		case PgErrorCodeCheckViolation:
			return domain.NewValidationError(domain.ErrInvertedInterval, nil)
		}
	}
	return domain.NewStoreError(op, err)
}

func (r *EventRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func encodeJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToEncodeJSON, err)
	}
	if string(b) == "null" {
		return []byte("{}"), nil
	}
	return b, nil
}

func decodeJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToDecodeJSON, err)
	}
	return nil
}

// nullString maps the empty string to NULL so partial unique indexes skip it.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// scanEvent reads one events row in eventColumns order.
func scanEvent(row pgx.Row) (domain.Event, error) {
	var (
		e                        domain.Event
		eventType                string
		windowKey                *string
		reqJSON, rewJSON, mdJSON []byte
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &eventType,
		&e.StartTime, &e.EndTime, &e.Timezone, &e.Priority,
		&e.IsActive, &e.IsRecurring, &e.RecurrencePattern,
		&reqJSON, &rewJSON, &mdJSON,
		&e.WindowStart, &windowKey, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return e, err
	}
	e.EventType = domain.EventType(eventType)
	if windowKey != nil {
		e.WindowKey = *windowKey
	}
	e.StartTime = e.StartTime.UTC()
	e.EndTime = e.EndTime.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	e.WindowStart = utcPtr(e.WindowStart)

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
