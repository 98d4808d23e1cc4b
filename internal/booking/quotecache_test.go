package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"baydelivery/internal/pricing"
)

func cachedQuoteFixture() (*pricing.Request, *pricing.Breakdown) {
	req := &pricing.Request{
		Service:       pricing.ServiceHaulAway,
		Payment:       pricing.PaymentCash,
		CustomerName:  "Pat Lee",
		CustomerPhone: "555-0101",
		JobAddress:    "123 Main St",
		Description:   "couch",
		Hours:         decimal.NewFromInt(2),
		CrewSize:      1,
	}
	b, _ := pricing.Calculate(req)
	return req, b
}

func TestQuoteCache_PutGet(t *testing.T) {
	c := NewQuoteCache(time.Minute)
	req, b := cachedQuoteFixture()

	q := c.Put(req, b)
	if q.ID == "" {
		t.Fatalf("expected an id")
	}
	got, ok := c.Get(q.ID)
	if !ok || got.Breakdown != b {
		t.Fatalf("expected cached quote back")
	}
	if _, ok := c.Get("nope"); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestQuoteCache_Expiry(t *testing.T) {
	c := NewQuoteCache(time.Nanosecond)
	req, b := cachedQuoteFixture()
	q := c.Put(req, b)

	time.Sleep(time.Millisecond)
	if _, ok := c.Get(q.ID); ok {
		t.Fatalf("expected expired quote to miss")
	}
}

func TestQuoteCache_Delete(t *testing.T) {
	c := NewQuoteCache(time.Minute)
	req, b := cachedQuoteFixture()
	q := c.Put(req, b)

	c.Delete(q.ID)
	if _, ok := c.Get(q.ID); ok {
		t.Fatalf("expected deleted quote to miss")
	}
}
