package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is one row of the append-only transition history for a request.
// Rows are only ever inserted; the status column on quote_requests holds
// the current value, this table holds how it got there.
type Event struct {
	ID         string          `json:"id"`
	RequestID  string          `json:"requestId"`
	EventType  string          `json:"eventType"`
	Summary    string          `json:"summary"`
	Actor      string          `json:"actor"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func Insert(ctx context.Context, tx pgx.Tx, requestID, eventType, summary, actor string, occurredAt time.Time, data any) error {
	var s *string
	if data != nil {
		b, _ := json.Marshal(data)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO request_events (id, request_id, event_type, summary, actor, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, $6, CAST($7 AS jsonb))
`
	_, err := tx.Exec(ctx, q, uuid.NewString(), requestID, eventType, summary, actor, occurredAt, s)
	return err
}

func ListByRequest(ctx context.Context, db *pgxpool.Pool, requestID string) ([]Event, error) {
	const q = `
SELECT id, request_id, event_type, summary, actor, occurred_at, COALESCE(data, '{}'::jsonb), created_at
FROM request_events
WHERE request_id = $1
ORDER BY occurred_at ASC, created_at ASC
`
	rows, err := db.Query(ctx, q, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// All reads the full table in a stable order; backup export uses it.
func All(ctx context.Context, tx pgx.Tx) ([]Event, error) {
	const q = `
SELECT id, request_id, event_type, summary, actor, occurred_at, COALESCE(data, '{}'::jsonb), created_at
FROM request_events
ORDER BY created_at ASC, id ASC
`
	rows, err := tx.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RequestID, &e.EventType, &e.Summary, &e.Actor, &e.OccurredAt, &e.Data, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
