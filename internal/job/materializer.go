package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Materialize creates the job for an approved request. It runs inside the
// same transaction as the customer_accepted -> admin_approved status
// write, so either both land or neither does. The UNIQUE constraint on
// request_id plus ON CONFLICT DO NOTHING makes it idempotent: a retried
// approval re-reads the existing job instead of inserting a second one.
func Materialize(ctx context.Context, tx pgx.Tx, requestID, requestedDate, requestedWindow string) (*Job, error) {
	start, end := scheduleWindow(requestedDate, requestedWindow)

	const ins = `
INSERT INTO jobs (id, request_id, status, scheduled_start, scheduled_end)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (request_id) DO NOTHING
`
	if _, err := tx.Exec(ctx, ins, uuid.NewString(), requestID, string(StatusScheduled), start, end); err != nil {
		return nil, err
	}

	const sel = `
SELECT id, request_id, status, scheduled_start, scheduled_end, created_at
FROM jobs
WHERE request_id = $1
`
	var j Job
	if err := tx.QueryRow(ctx, sel, requestID).Scan(
		&j.ID, &j.RequestID, &j.Status, &j.ScheduledStart, &j.ScheduledEnd, &j.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &j, nil
}

// scheduleWindow derives a concrete window from the customer's requested
// date ("2026-01-05") and time window ("AM"/"PM"). Unparseable or absent
// input leaves the window open for the operator to set later.
func scheduleWindow(date, window string) (*time.Time, *time.Time) {
	if date == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, nil
	}

	var startHour, endHour int
	switch window {
	case "AM":
		startHour, endHour = 8, 12
	case "PM":
		startHour, endHour = 12, 17
	default:
		startHour, endHour = 8, 17
	}

	start := day.Add(time.Duration(startHour) * time.Hour)
	end := day.Add(time.Duration(endHour) * time.Hour)
	return &start, &end
}
