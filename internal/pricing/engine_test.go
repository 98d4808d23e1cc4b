package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func validRequest(service ServiceType) *Request {
	r := &Request{
		Service:       service,
		Payment:       PaymentCash,
		CustomerName:  "Pat Lee",
		CustomerPhone: "555-0101",
		JobAddress:    "123 Main St",
		Description:   "Old couch pickup",
		Hours:         decimal.NewFromInt(2),
		CrewSize:      1,
	}
	if service.IsMovement() {
		r.CrewSize = 2
		r.Move = &MoveDetails{PickupAddress: "123 Main St", DropoffAddress: "456 King St"}
	}
	return r
}

func TestCalculate_ScrapCurbsideIsFree(t *testing.T) {
	req := validRequest(ServiceScrapPickup)
	req.Scrap = &ScrapDetails{Location: ScrapCurbside}
	// Hours/crew/add-ons must not matter on the scrap branch.
	req.Hours = decimal.NewFromInt(9)
	req.CrewSize = 4
	req.HaulAway = &HaulAwayDetails{GarbageBags: 20}

	b, err := Calculate(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.CashTotal.IsZero() {
		t.Fatalf("expected $0 cash total, got %s", b.CashTotal)
	}
	if !b.EMTTotal.IsZero() {
		t.Fatalf("expected $0 emt total, got %s", b.EMTTotal)
	}
}

func TestCalculate_ScrapInsideIsFlatThirty(t *testing.T) {
	req := validRequest(ServiceScrapPickup)
	req.Scrap = &ScrapDetails{Location: ScrapInside}
	req.Hours = decimal.NewFromInt(6)
	req.CrewSize = 3

	b, err := Calculate(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.CashTotal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected $30 cash total, got %s", b.CashTotal)
	}
	if !b.EMTTotal.Equal(decimal.RequireFromString("33.90")) {
		t.Fatalf("expected $33.90 emt total, got %s", b.EMTTotal)
	}
}

func TestCalculate_JunkRemovalTwoHoursOneWorker(t *testing.T) {
	// 2h * $20 labour + $20 gas + $20 wear = $80, no tax on cash,
	// disposal never itemized.
	req := validRequest(ServiceHaulAway)

	b, err := Calculate(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.CashTotal.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected $80 cash total, got %s", b.CashTotal)
	}
	if !b.Internal.Travel.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected $40 travel baseline, got %s", b.Internal.Travel)
	}
}

func TestCalculate_EMTIsCashPlusThirteenPercent(t *testing.T) {
	cases := []*Request{
		validRequest(ServiceHaulAway),
		validRequest(ServiceSmallMove),
		validRequest(ServiceItemDelivery),
		validRequest(ServiceDemolition),
	}
	onePointThirteen := decimal.RequireFromString("1.13")
	for _, req := range cases {
		b, err := Calculate(req)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", req.Service, err)
		}
		want := b.CashTotal.Mul(onePointThirteen).Round(2)
		if !b.EMTTotal.Equal(want) {
			t.Fatalf("%s: expected emt %s, got %s", req.Service, want, b.EMTTotal)
		}
	}
}

func TestCalculate_SmallMoveMissingPickupRejected(t *testing.T) {
	req := validRequest(ServiceSmallMove)
	req.Move = &MoveDetails{DropoffAddress: "456 King St"}

	_, err := Calculate(req)
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	found := false
	for _, f := range verr.MissingFields {
		if f == "pickup_address" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected pickup_address in missing fields, got %v", verr.MissingFields)
	}
}

func TestCalculate_MovementAliasStillRequiresAddresses(t *testing.T) {
	// "moving" normalizes to small_move but the alias must not smuggle the
	// request past the pickup/dropoff requirement.
	svc, err := ParseServiceType("moving")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc != ServiceSmallMove {
		t.Fatalf("expected small_move, got %s", svc)
	}

	req := validRequest(svc)
	req.Move = nil
	if _, err := Calculate(req); err == nil {
		t.Fatalf("expected validation error for missing addresses")
	}
}

func TestCalculate_SmallMoveFloors(t *testing.T) {
	// 3h requested, 1 crew: floors push it to 4h and 2 workers.
	req := validRequest(ServiceSmallMove)
	req.Hours = decimal.NewFromInt(3)
	req.CrewSize = 1
	req.Move = &MoveDetails{PickupAddress: "a", DropoffAddress: "b"}

	b, err := Calculate(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Internal.BillableHours.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected 4 billable hours, got %s", b.Internal.BillableHours)
	}
	if b.Internal.CrewSize != 2 {
		t.Fatalf("expected crew of 2, got %d", b.Internal.CrewSize)
	}
	// 4h * ($20 + $16) = $144 labour + $40 travel = $184 -> $185 cash.
	if !b.CashTotal.Equal(decimal.NewFromInt(185)) {
		t.Fatalf("expected $185 cash total, got %s", b.CashTotal)
	}
}

func TestCalculate_TwoWorkerLabourFloor(t *testing.T) {
	req := validRequest(ServiceHaulAway)
	req.Hours = decimal.RequireFromString("0.5")
	req.RequiresTwoWorkers = true

	b, err := Calculate(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Internal.Labour.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected $40 labour floor, got %s", b.Internal.Labour)
	}
}

func TestCalculate_DisposalFoldedIntoTotal(t *testing.T) {
	base := validRequest(ServiceHaulAway)
	withBags := validRequest(ServiceHaulAway)
	withBags.HaulAway = &HaulAwayDetails{GarbageBags: 4}

	b0, err := Calculate(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b1, err := Calculate(withBags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b1.CashTotal.Sub(b0.CashTotal).Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected bags to add $50 to the total, got %s vs %s", b0.CashTotal, b1.CashTotal)
	}
}

func TestCalculate_MattressesAreNoteOnly(t *testing.T) {
	plain := validRequest(ServiceHaulAway)
	withMattress := validRequest(ServiceHaulAway)
	withMattress.HaulAway = &HaulAwayDetails{Mattresses: 2, BoxSprings: 1}

	b0, err := Calculate(plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b1, err := Calculate(withMattress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b0.CashTotal.Equal(b1.CashTotal) {
		t.Fatalf("mattresses must not change the price: %s vs %s", b0.CashTotal, b1.CashTotal)
	}
	if len(b1.Notes) == 0 {
		t.Fatalf("expected an informational mattress note")
	}
}

func TestCalculate_NegativeHoursRejected(t *testing.T) {
	req := validRequest(ServiceHaulAway)
	req.Hours = decimal.NewFromInt(-1)
	if _, err := Calculate(req); err == nil {
		t.Fatalf("expected validation error for negative hours")
	}
}

func TestCalculate_ZeroCrewOnMoveRejected(t *testing.T) {
	req := validRequest(ServiceItemDelivery)
	req.CrewSize = 0
	if _, err := Calculate(req); err == nil {
		t.Fatalf("expected validation error for zero crew")
	}
}

func TestParseServiceType_Aliases(t *testing.T) {
	for in, want := range map[string]ServiceType{
		"junk_removal": ServiceHaulAway,
		"dump_run":     ServiceHaulAway,
		"junk":         ServiceHaulAway,
		"haul_away":    ServiceHaulAway,
		"moving":       ServiceSmallMove,
		"small_moving": ServiceSmallMove,
		"delivery":     ServiceItemDelivery,
	} {
		got, err := ParseServiceType(in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("%s: expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseServiceType("piano_tuning"); err == nil {
		t.Fatalf("expected error for unknown service type")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	if p, err := ParsePaymentMethod("e-transfer"); err != nil || p != PaymentEMT {
		t.Fatalf("expected emt, got %v %v", p, err)
	}
	if _, err := ParsePaymentMethod("barter"); err == nil {
		t.Fatalf("expected error for unknown payment method")
	}
}

func TestRoundCashToNearestFive(t *testing.T) {
	cases := map[string]string{
		"80":    "80",
		"81":    "80",
		"82.5":  "85",
		"83":    "85",
		"184":   "185",
		"92.49": "90",
	}
	for in, want := range cases {
		got := roundCashToNearestFive(decimal.RequireFromString(in))
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("round(%s): expected %s, got %s", in, want, got)
		}
	}
}
