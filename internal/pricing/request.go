package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Request carries everything the engine needs to price a job. It is a
// tagged union over service kinds: Service selects which detail section
// must be present, and validation rejects a request whose mandatory
// section (or any field inside it) is missing before any price math runs.
type Request struct {
	Service ServiceType   `json:"service_type"`
	Payment PaymentMethod `json:"payment_method"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	JobAddress    string `json:"job_address"`
	Description   string `json:"description"`

	Hours              decimal.Decimal `json:"estimated_hours"`
	CrewSize           int             `json:"crew_size"`
	RequiresTwoWorkers bool            `json:"requires_two_workers"`

	// Exactly one of these is consulted, selected by Service.
	Move     *MoveDetails     `json:"move,omitempty"`
	HaulAway *HaulAwayDetails `json:"haul_away,omitempty"`
	Scrap    *ScrapDetails    `json:"scrap,omitempty"`
}

// MoveDetails is mandatory for small_move and item_delivery.
type MoveDetails struct {
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
}

type HaulAwayDetails struct {
	GarbageBags int `json:"garbage_bag_count"`
	Mattresses  int `json:"mattresses_count"`
	BoxSprings  int `json:"box_springs_count"`
}

type ScrapDetails struct {
	Location ScrapLocation `json:"location"`
}

type ValidationError struct {
	Code          string
	Message       string
	MissingFields []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("%s: %s (missing: %s)", e.Code, e.Message, strings.Join(e.MissingFields, ", "))
	}
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func missing(fields []string) error {
	return &ValidationError{
		Code:          "MISSING_FIELDS",
		Message:       "required fields are missing",
		MissingFields: fields,
	}
}

// Validate enforces the request contract. It runs before any pricing rule;
// a request that fails here is never priced.
func (r *Request) Validate() error {
	var absent []string
	if strings.TrimSpace(r.CustomerName) == "" {
		absent = append(absent, "customer_name")
	}
	if strings.TrimSpace(r.CustomerPhone) == "" {
		absent = append(absent, "customer_phone")
	}
	if strings.TrimSpace(r.JobAddress) == "" {
		absent = append(absent, "job_address")
	}
	if strings.TrimSpace(r.Description) == "" {
		absent = append(absent, "description")
	}

	if r.Service.IsMovement() {
		if r.Move == nil {
			absent = append(absent, "pickup_address", "dropoff_address")
		} else {
			if strings.TrimSpace(r.Move.PickupAddress) == "" {
				absent = append(absent, "pickup_address")
			}
			if strings.TrimSpace(r.Move.DropoffAddress) == "" {
				absent = append(absent, "dropoff_address")
			}
		}
	}

	if len(absent) > 0 {
		return missing(absent)
	}

	switch r.Service {
	case ServiceScrapPickup, ServiceHaulAway, ServiceSmallMove, ServiceItemDelivery, ServiceDemolition:
	default:
		return &ValidationError{Code: "SERVICE_TYPE_INVALID", Message: "unknown service type"}
	}
	switch r.Payment {
	case PaymentCash, PaymentEMT:
	default:
		return &ValidationError{Code: "PAYMENT_METHOD_INVALID", Message: "payment method must be cash or emt"}
	}

	if r.Hours.IsNegative() {
		return &ValidationError{Code: "HOURS_INVALID", Message: "estimated hours must be >= 0"}
	}
	if r.CrewSize < 0 {
		return &ValidationError{Code: "CREW_SIZE_INVALID", Message: "crew size must be >= 0"}
	}
	if r.Service.IsMovement() && r.CrewSize == 0 {
		return &ValidationError{Code: "CREW_SIZE_INVALID", Message: "crew size is mandatory for moves and deliveries"}
	}
	if r.HaulAway != nil {
		if r.HaulAway.GarbageBags < 0 || r.HaulAway.Mattresses < 0 || r.HaulAway.BoxSprings < 0 {
			return &ValidationError{Code: "COUNT_INVALID", Message: "item counts must be >= 0"}
		}
	}
	if r.Scrap != nil {
		switch r.Scrap.Location {
		case ScrapCurbside, ScrapInside, "":
		default:
			return &ValidationError{Code: "SCRAP_LOCATION_INVALID", Message: "scrap location must be curbside or inside"}
		}
	}

	return nil
}
