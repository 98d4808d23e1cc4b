package booking

import (
	"encoding/json"
	"time"
)

// QuoteRequest is the persisted record tracking a quote through the
// customer and admin decisions. Totals are NUMERIC in the store and
// carried as decimal strings here, scanned via ::text.
type QuoteRequest struct {
	ID      string `json:"id"`
	QuoteID string `json:"quoteId"`

	ServiceType   string `json:"serviceType"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	JobAddress    string `json:"jobAddress"`
	Description   string `json:"description"`

	PickupAddress  string `json:"pickupAddress,omitempty"`
	DropoffAddress string `json:"dropoffAddress,omitempty"`

	PaymentMethod string `json:"paymentMethod"`
	CashTotal     string `json:"cashTotal"`
	EMTTotal      string `json:"emtTotal"`

	RequestedJobDate    string `json:"requestedJobDate,omitempty"`
	RequestedTimeWindow string `json:"requestedTimeWindow,omitempty"`
	Notes               string `json:"notes,omitempty"`

	// RequestJSON is the full pricing request snapshot, kept for admin
	// review and for snapshot round-trips.
	RequestJSON json.RawMessage `json:"requestJson"`

	Status Status `json:"status"`

	CreatedAt         time.Time  `json:"createdAt"`
	CustomerDecidedAt *time.Time `json:"customerDecidedAt,omitempty"`
	AdminDecidedAt    *time.Time `json:"adminDecidedAt,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}
