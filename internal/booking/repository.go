package booking

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `
id, quote_id, service_type, customer_name, customer_phone, job_address, description,
COALESCE(pickup_address,''), COALESCE(dropoff_address,''),
payment_method, cash_total::text, emt_total::text,
COALESCE(requested_job_date,''), COALESCE(requested_time_window,''), COALESCE(notes,''),
request_json, status, created_at, customer_decided_at, admin_decided_at, updated_at`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanRequest(row pgx.Row) (*QuoteRequest, error) {
	var q QuoteRequest
	if err := row.Scan(
		&q.ID, &q.QuoteID, &q.ServiceType, &q.CustomerName, &q.CustomerPhone, &q.JobAddress, &q.Description,
		&q.PickupAddress, &q.DropoffAddress,
		&q.PaymentMethod, &q.CashTotal, &q.EMTTotal,
		&q.RequestedJobDate, &q.RequestedTimeWindow, &q.Notes,
		&q.RequestJSON, &q.Status, &q.CreatedAt, &q.CustomerDecidedAt, &q.AdminDecidedAt, &q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*QuoteRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM quote_requests WHERE id = $1`
	return scanRequest(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) List(ctx context.Context, status string, limit int) ([]QuoteRequest, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	q := `SELECT ` + requestColumns + ` FROM quote_requests`
	args := []any{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC LIMIT ` + itoa(limit)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuoteRequest
	for rows.Next() {
		qr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *qr)
	}
	return out, rows.Err()
}

// Insert creates the row in customer_pending. Idempotent on quote_id: a
// replayed decision call finds the existing row instead of creating a
// second one.
func Insert(ctx context.Context, tx pgx.Tx, q *QuoteRequest) error {
	const sql = `
INSERT INTO quote_requests
  (id, quote_id, service_type, customer_name, customer_phone, job_address, description,
   pickup_address, dropoff_address, payment_method, cash_total, emt_total,
   requested_job_date, requested_time_window, notes, request_json, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::numeric, $12::numeric, $13, $14, $15, CAST($16 AS jsonb), $17)
ON CONFLICT (quote_id) DO NOTHING
`
	_, err := tx.Exec(ctx, sql,
		q.ID, q.QuoteID, q.ServiceType, q.CustomerName, q.CustomerPhone, q.JobAddress, q.Description,
		nullIfEmpty(q.PickupAddress), nullIfEmpty(q.DropoffAddress),
		q.PaymentMethod, q.CashTotal, q.EMTTotal,
		nullIfEmpty(q.RequestedJobDate), nullIfEmpty(q.RequestedTimeWindow), nullIfEmpty(q.Notes),
		string(q.RequestJSON), string(q.Status),
	)
	return err
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*QuoteRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM quote_requests WHERE id = $1 FOR UPDATE`
	return scanRequest(tx.QueryRow(ctx, q, id))
}

func GetForUpdateByQuoteID(ctx context.Context, tx pgx.Tx, quoteID string) (*QuoteRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM quote_requests WHERE quote_id = $1 FOR UPDATE`
	return scanRequest(tx.QueryRow(ctx, q, quoteID))
}

// updateStatus is the only status write in the codebase. The WHERE guard
// on the prior status makes it a compare-and-set: under racing attempts
// exactly one caller observes rowsAffected == 1. Decision timestamps are
// write-once; a later transition never overwrites an earlier one.
func updateStatus(ctx context.Context, tx pgx.Tx, id string, from, to Status) (bool, error) {
	const q = `
UPDATE quote_requests
SET status = $1,
    customer_decided_at = CASE WHEN $2 THEN COALESCE(customer_decided_at, NOW()) ELSE customer_decided_at END,
    admin_decided_at    = CASE WHEN $3 THEN COALESCE(admin_decided_at, NOW()) ELSE admin_decided_at END,
    updated_at = NOW()
WHERE id = $4 AND status = $5
`
	stampCustomer := to == StatusCustomerAccepted || to == StatusCustomerDeclined
	stampAdmin := to == StatusAdminApproved || to == StatusRejected

	tag, err := tx.Exec(ctx, q, string(to), stampCustomer, stampAdmin, id, string(from))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}
