package booking

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"baydelivery/internal/events"
)

// Transition moves a locked request to the target status. It is the one
// authority every mutation path goes through: the lifecycle graph is
// checked first, then the compare-and-set write. A guard miss (another
// transaction won the race between our lock release and theirs) surfaces
// as the same StateConflictError the graph check produces.
func Transition(ctx context.Context, tx pgx.Tx, req *QuoteRequest, to Status, actor string) error {
	if !CanTransition(req.Status, to) {
		return &StateConflictError{RequestID: req.ID, From: req.Status, To: to}
	}

	ok, err := updateStatus(ctx, tx, req.ID, req.Status, to)
	if err != nil {
		return err
	}
	if !ok {
		return &StateConflictError{RequestID: req.ID, From: req.Status, To: to}
	}

	if err := events.Insert(ctx, tx, req.ID, "STATUS_CHANGED", "Status changed", actor, time.Now(),
		map[string]any{"from": req.Status, "to": to}); err != nil {
		return err
	}

	req.Status = to
	return nil
}
