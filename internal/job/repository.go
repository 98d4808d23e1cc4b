package job

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByRequestID(ctx context.Context, requestID string) (*Job, error) {
	const q = `
SELECT id, request_id, status, scheduled_start, scheduled_end, created_at
FROM jobs
WHERE request_id = $1
`
	var j Job
	if err := r.db.QueryRow(ctx, q, requestID).Scan(
		&j.ID, &j.RequestID, &j.Status, &j.ScheduledStart, &j.ScheduledEnd, &j.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repository) List(ctx context.Context, status string) ([]Job, error) {
	q := `
SELECT id, request_id, status, scheduled_start, scheduled_end, created_at
FROM jobs
`
	args := []any{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.RequestID, &j.Status, &j.ScheduledStart, &j.ScheduledEnd, &j.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
