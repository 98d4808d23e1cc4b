package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"baydelivery/internal/booking"
	"baydelivery/internal/events"
	"baydelivery/internal/job"
	"baydelivery/internal/pricing"
	"baydelivery/pkg/config"
	"baydelivery/pkg/db"
)

// Seeds one quote request through the whole flow against a dev database:
// price -> customer_pending -> customer_accepted -> admin_approved + job.
func main() {
	var (
		service = flag.String("service", "haul_away", "service type for the seeded quote")
		hours   = flag.String("hours", "2", "estimated hours")
		crew    = flag.Int("crew", 1, "crew size")
		approve = flag.Bool("approve", true, "run the admin approval step too")
		jobDate = flag.String("job-date", time.Now().AddDate(0, 0, 3).Format("2006-01-02"), "requested job date")
	)
	flag.Parse()

	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.MigrationsPath != "" {
		if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
	}

	hoursDec, err := decimal.NewFromString(*hours)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -hours: %v\n", err)
		os.Exit(2)
	}

	svc, err := pricing.ParseServiceType(*service)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -service: %v\n", err)
		os.Exit(2)
	}

	req := &pricing.Request{
		Service:       svc,
		Payment:       pricing.PaymentCash,
		CustomerName:  "Seed Customer",
		CustomerPhone: "555-0100",
		JobAddress:    "42 Dockside Rd",
		Description:   "Seeded dev quote",
		Hours:         hoursDec,
		CrewSize:      *crew,
	}
	if svc.IsMovement() {
		req.Move = &pricing.MoveDetails{
			PickupAddress:  "42 Dockside Rd",
			DropoffAddress: "7 Harbour Ave",
		}
	}

	bd, err := pricing.Calculate(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "price: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("priced %s: cash %s, emt %s\n", svc, bd.CashTotal.StringFixed(2), bd.EMTTotal.StringFixed(2))

	rawReq, err := json.Marshal(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal request: %v\n", err)
		os.Exit(1)
	}

	quoteID := uuid.NewString()
	record := &booking.QuoteRequest{
		ID:            uuid.NewString(),
		QuoteID:       quoteID,
		ServiceType:   string(svc),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		JobAddress:    req.JobAddress,
		Description:   req.Description,
		PaymentMethod: string(req.Payment),
		CashTotal:     bd.CashTotal.StringFixed(2),
		EMTTotal:      bd.EMTTotal.StringFixed(2),

		RequestedJobDate:    *jobDate,
		RequestedTimeWindow: "AM",
		RequestJSON:         rawReq,
		Status:              booking.StatusCustomerPending,
	}
	if req.Move != nil {
		record.PickupAddress = req.Move.PickupAddress
		record.DropoffAddress = req.Move.DropoffAddress
	}

	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		if err := booking.Insert(ctx, tx, record); err != nil {
			return err
		}
		if err := events.Insert(ctx, tx, record.ID, "REQUEST_CREATED", "Quote request created", "seed",
			time.Now(), map[string]any{"quoteId": quoteID, "serviceType": record.ServiceType}); err != nil {
			return err
		}
		locked, err := booking.GetForUpdate(ctx, tx, record.ID)
		if err != nil {
			return err
		}
		return booking.Transition(ctx, tx, locked, booking.StatusCustomerAccepted, "seed")
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed request: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("request %s accepted (quote %s)\n", record.ID, quoteID)

	if !*approve {
		return
	}

	var seededJob *job.Job
	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		locked, err := booking.GetForUpdate(ctx, tx, record.ID)
		if err != nil {
			return err
		}
		if err := booking.Transition(ctx, tx, locked, booking.StatusAdminApproved, "seed"); err != nil {
			return err
		}
		seededJob, err = job.Materialize(ctx, tx, locked.ID, locked.RequestedJobDate, locked.RequestedTimeWindow)
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "approve: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("approved, job %s scheduled\n", seededJob.ID)
}
