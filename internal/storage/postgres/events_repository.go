package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
}

// Dates and times go over the wire as text so that no timezone conversion
// ever touches them.
const eventColumns = `
       id, title, description,
       to_char(date, 'YYYY-MM-DD'),
       COALESCE(to_char(start_time, 'HH24:MI'), ''),
       COALESCE(to_char(end_time, 'HH24:MI'), ''),
       volunteers, created_by::text, created_at, updated_at`

type eventRow struct {
	ID          string
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Volunteers  []string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (row eventRow) toDomain() events.Event {
	volunteers := row.Volunteers
	if volunteers == nil {
		volunteers = []string{}
	}
	return events.Event{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Date:        row.Date,
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		Volunteers:  volunteers,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var r eventRow
	if err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.Date, &r.StartTime, &r.EndTime,
		&r.Volunteers, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e := r.toDomain()
	return &e, nil
}

func (r *EventRepository) List(ctx context.Context, dr events.DateRange) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT`+eventColumns+`
  FROM events
 WHERE ($1::text IS NULL OR date >= $1::text::date)
   AND ($2::text IS NULL OR date <= $2::text::date)
 ORDER BY date ASC, start_time ASC NULLS FIRST, id ASC
`, nullableText(dr.From), nullableText(dr.To))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events rows: %w", err)
	}
	return out, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO events (id, title, description, date, start_time, end_time, created_by)
VALUES ($1, $2, $3, $4::text::date, $5::text::time, $6::text::time, $7::text::uuid)
RETURNING`+eventColumns,
		params.ID, params.Title, params.Description, params.Date,
		nullableText(params.StartTime), nullableText(params.EndTime), params.CreatedBy,
	)
	e, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, params events.UpdateParams) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE events
   SET title = $2,
       description = $3,
       date = $4::text::date,
       start_time = $5::text::time,
       end_time = $6::text::time,
       updated_at = now()
 WHERE id = $1
RETURNING`+eventColumns,
		id, params.Title, params.Description, params.Date,
		nullableText(params.StartTime), nullableText(params.EndTime),
	)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

// UpdateVolunteers locks the event row, applies fn to the stored roster and
// writes the result back in the same transaction.
func (r *EventRepository) UpdateVolunteers(ctx context.Context, id string, fn events.RosterFunc) (*events.Event, error) {
	var updated *events.Event
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var current []string
		err := tx.QueryRow(ctx, `SELECT volunteers FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return events.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}

		next := fn(current)
		if next == nil {
			next = []string{}
		}

		row := tx.QueryRow(ctx, `
UPDATE events
   SET volunteers = $2,
       updated_at = now()
 WHERE id = $1
RETURNING`+eventColumns, id, next)
		updated, err = scanEvent(row)
		if err != nil {
			return fmt.Errorf("write volunteers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func nullableText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
