package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"baydelivery/internal/booking"
	"baydelivery/internal/events"
	"baydelivery/internal/job"
	"baydelivery/pkg/db"
)

const (
	tableQuoteRequests = "quote_requests"
	tableJobs          = "jobs"
	tableRequestEvents = "request_events"

	// importLockWait bounds how long an import waits for exclusive access
	// before giving up with a BusyError.
	importLockWait = "5s"
)

type Service struct {
	DB *pgxpool.Pool
}

// Export reads every table under one repeatable-read transaction, so the
// snapshot never observes a partial write from an in-flight transition.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		SchemaVersion: SchemaVersion,
		ExportedAt:    time.Now().UTC(),
	}

	err := db.WithSnapshotTx(ctx, s.DB, func(tx pgx.Tx) error {
		var err error
		if snap.QuoteRequests, err = allQuoteRequests(ctx, tx); err != nil {
			return err
		}
		if snap.Jobs, err = allJobs(ctx, tx); err != nil {
			return err
		}
		if snap.Events, err = events.All(ctx, tx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Import replaces the store's contents with the snapshot inside one
// exclusive transaction: a failure partway through leaves the prior state
// intact. The lock wait is bounded; a timeout surfaces as BusyError with
// the store untouched.
func (s *Service) Import(ctx context.Context, snap *Snapshot) (RestoreReport, error) {
	if snap.SchemaVersion != SchemaVersion {
		return nil, &SchemaMismatchError{Got: snap.SchemaVersion, Want: SchemaVersion}
	}

	report := RestoreReport{}
	err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		// Bounded wait for store-wide exclusivity. SET LOCAL scopes the
		// timeout to this transaction; rollback releases everything on
		// every exit path.
		if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '"+importLockWait+"'"); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			"LOCK TABLE quote_requests, jobs, request_events IN ACCESS EXCLUSIVE MODE"); err != nil {
			return err
		}

		// Children first so the FK never dangles mid-transaction.
		for _, table := range []string{tableRequestEvents, tableJobs, tableQuoteRequests} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}

		n, err := copyQuoteRequests(ctx, tx, snap.QuoteRequests)
		if err != nil {
			return err
		}
		report[tableQuoteRequests] = n

		if n, err = copyJobs(ctx, tx, snap.Jobs); err != nil {
			return err
		}
		report[tableJobs] = n

		if n, err = copyEvents(ctx, tx, snap.Events); err != nil {
			return err
		}
		report[tableRequestEvents] = n

		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		// 55P03 = lock_not_available (lock_timeout expired).
		if errors.As(err, &pgErr) && pgErr.Code == "55P03" {
			return nil, &BusyError{Wait: importLockWait}
		}
		return nil, err
	}
	return report, nil
}

func allQuoteRequests(ctx context.Context, tx pgx.Tx) ([]booking.QuoteRequest, error) {
	const q = `
SELECT id, quote_id, service_type, customer_name, customer_phone, job_address, description,
       COALESCE(pickup_address,''), COALESCE(dropoff_address,''),
       payment_method, cash_total::text, emt_total::text,
       COALESCE(requested_job_date,''), COALESCE(requested_time_window,''), COALESCE(notes,''),
       request_json, status, created_at, customer_decided_at, admin_decided_at, updated_at
FROM quote_requests
ORDER BY created_at ASC, id ASC
`
	rows, err := tx.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.QuoteRequest
	for rows.Next() {
		var r booking.QuoteRequest
		if err := rows.Scan(
			&r.ID, &r.QuoteID, &r.ServiceType, &r.CustomerName, &r.CustomerPhone, &r.JobAddress, &r.Description,
			&r.PickupAddress, &r.DropoffAddress,
			&r.PaymentMethod, &r.CashTotal, &r.EMTTotal,
			&r.RequestedJobDate, &r.RequestedTimeWindow, &r.Notes,
			&r.RequestJSON, &r.Status, &r.CreatedAt, &r.CustomerDecidedAt, &r.AdminDecidedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func allJobs(ctx context.Context, tx pgx.Tx) ([]job.Job, error) {
	const q = `
SELECT id, request_id, status, scheduled_start, scheduled_end, created_at
FROM jobs
ORDER BY created_at ASC, id ASC
`
	rows, err := tx.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []job.Job
	for rows.Next() {
		var j job.Job
		if err := rows.Scan(&j.ID, &j.RequestID, &j.Status, &j.ScheduledStart, &j.ScheduledEnd, &j.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func copyQuoteRequests(ctx context.Context, tx pgx.Tx, rs []booking.QuoteRequest) (int, error) {
	if len(rs) == 0 {
		return 0, nil
	}
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{tableQuoteRequests},
		[]string{
			"id", "quote_id", "service_type", "customer_name", "customer_phone", "job_address", "description",
			"pickup_address", "dropoff_address", "payment_method", "cash_total", "emt_total",
			"requested_job_date", "requested_time_window", "notes", "request_json", "status",
			"created_at", "customer_decided_at", "admin_decided_at", "updated_at",
		},
		pgx.CopyFromSlice(len(rs), func(i int) ([]any, error) {
			r := rs[i]
			// COPY rides the binary protocol; money strings go through
			// pgtype.Numeric so the numeric columns get a binary encoding.
			cash, err := numericFromString(r.CashTotal)
			if err != nil {
				return nil, fmt.Errorf("row %s cash_total: %w", r.ID, err)
			}
			emt, err := numericFromString(r.EMTTotal)
			if err != nil {
				return nil, fmt.Errorf("row %s emt_total: %w", r.ID, err)
			}
			return []any{
				r.ID, r.QuoteID, r.ServiceType, r.CustomerName, r.CustomerPhone, r.JobAddress, r.Description,
				emptyToNil(r.PickupAddress), emptyToNil(r.DropoffAddress), r.PaymentMethod, cash, emt,
				emptyToNil(r.RequestedJobDate), emptyToNil(r.RequestedTimeWindow), emptyToNil(r.Notes),
				[]byte(r.RequestJSON), string(r.Status),
				r.CreatedAt, r.CustomerDecidedAt, r.AdminDecidedAt, r.UpdatedAt,
			}, nil
		}),
	)
	return int(n), err
}

func copyJobs(ctx context.Context, tx pgx.Tx, js []job.Job) (int, error) {
	if len(js) == 0 {
		return 0, nil
	}
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{tableJobs},
		[]string{"id", "request_id", "status", "scheduled_start", "scheduled_end", "created_at"},
		pgx.CopyFromSlice(len(js), func(i int) ([]any, error) {
			j := js[i]
			return []any{j.ID, j.RequestID, string(j.Status), j.ScheduledStart, j.ScheduledEnd, j.CreatedAt}, nil
		}),
	)
	return int(n), err
}

func copyEvents(ctx context.Context, tx pgx.Tx, es []events.Event) (int, error) {
	if len(es) == 0 {
		return 0, nil
	}
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{tableRequestEvents},
		[]string{"id", "request_id", "event_type", "summary", "actor", "occurred_at", "data", "created_at"},
		pgx.CopyFromSlice(len(es), func(i int) ([]any, error) {
			e := es[i]
			return []any{e.ID, e.RequestID, e.EventType, e.Summary, e.Actor, e.OccurredAt, []byte(e.Data), e.CreatedAt}, nil
		}),
	)
	return int(n), err
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func numericFromString(s string) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return n, err
	}
	return n, nil
}
