package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"baydelivery/internal/booking"
	"baydelivery/internal/events"
	"baydelivery/internal/job"
)

func sampleSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	decided := now.Add(5 * time.Minute)
	return &Snapshot{
		SchemaVersion: SchemaVersion,
		ExportedAt:    now,
		QuoteRequests: []booking.QuoteRequest{
			{
				ID:                "req-1",
				QuoteID:           "quote-1",
				ServiceType:       "haul_away",
				CustomerName:      "Pat Lee",
				CustomerPhone:     "555-0101",
				JobAddress:        "123 Main St",
				Description:       "Old couch pickup",
				PaymentMethod:     "cash",
				CashTotal:         "80.00",
				EMTTotal:          "90.40",
				RequestJSON:       json.RawMessage(`{"service_type":"haul_away"}`),
				Status:            booking.StatusCustomerAccepted,
				CreatedAt:         now,
				CustomerDecidedAt: &decided,
				UpdatedAt:         decided,
			},
		},
		Jobs: []job.Job{
			{ID: "job-1", RequestID: "req-1", Status: job.StatusScheduled, CreatedAt: now},
		},
		Events: []events.Event{
			{ID: "ev-1", RequestID: "req-1", EventType: "STATUS_CHANGED", Summary: "Status changed",
				Actor: "customer", OccurredAt: decided, Data: json.RawMessage(`{"from":"customer_pending","to":"customer_accepted"}`), CreatedAt: decided},
		},
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	snap := sampleSnapshot(t)

	blob, err := snap.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.SchemaVersion != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, got.SchemaVersion)
	}
	if len(got.QuoteRequests) != 1 || len(got.Jobs) != 1 || len(got.Events) != 1 {
		t.Fatalf("record counts changed in round-trip: %d/%d/%d",
			len(got.QuoteRequests), len(got.Jobs), len(got.Events))
	}

	r := got.QuoteRequests[0]
	if r.ID != "req-1" || r.CashTotal != "80.00" || r.EMTTotal != "90.40" || r.Status != booking.StatusCustomerAccepted {
		t.Fatalf("quote request fields changed in round-trip: %+v", r)
	}
	if r.CustomerDecidedAt == nil || !r.CustomerDecidedAt.Equal(snap.QuoteRequests[0].CustomerDecidedAt.UTC()) {
		t.Fatalf("decision timestamp changed in round-trip")
	}
}

func TestDecode_SchemaMismatch(t *testing.T) {
	for _, version := range []int{0, 2} {
		snap := sampleSnapshot(t)
		snap.SchemaVersion = version

		// Encode bypasses the version check on purpose; Decode must catch it.
		blob, err := snap.Encode()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}

		_, err = Decode(blob)
		var mismatch *SchemaMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("version %d: expected SchemaMismatchError, got %v", version, err)
		}
		if mismatch.Got != version || mismatch.Want != SchemaVersion {
			t.Fatalf("version %d: wrong mismatch detail: %+v", version, mismatch)
		}
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a snapshot")); err == nil {
		t.Fatalf("expected error for non-gzip input")
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte("{...broken json"))
	_ = zw.Close()
	if _, err := Decode(buf.Bytes()); err == nil {
		t.Fatalf("expected error for broken json")
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)
	if got := Filename(at); got != "baydelivery-20260105-103000.json.gz" {
		t.Fatalf("unexpected filename: %s", got)
	}
}
