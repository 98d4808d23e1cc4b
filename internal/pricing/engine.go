package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Business constants. These mirror the operator's rate card; changing one
// changes customer prices, so they live in one place.
var (
	emtTaxRate = decimal.RequireFromString("0.13")

	scrapCurbsidePrice = decimal.Zero
	scrapInsidePrice   = decimal.NewFromInt(30)

	gasBaseline  = decimal.NewFromInt(20)
	wearBaseline = decimal.NewFromInt(20)

	primaryRate = decimal.NewFromInt(20)
	helperRate  = decimal.NewFromInt(16)

	// Labour cost floor when a job is flagged as needing two workers.
	// This is the operator's minimum acceptable labour cost, not a
	// customer-facing minimum.
	twoWorkerLabourFloor = decimal.NewFromInt(40)

	// Haul-away disposal allowance tiers, folded into the total and never
	// itemized for the customer.
	bagTierSmallMax    = 5
	bagTierMediumMax   = 15
	bagTierSmallPrice  = decimal.NewFromInt(50)
	bagTierMediumPrice = decimal.NewFromInt(80)
	bagTierLargePrice  = decimal.NewFromInt(120)

	minMoveHours = decimal.NewFromInt(4)

	five = decimal.NewFromInt(5)
)

const baseDisclaimer = "This estimate is based on the information provided and may change after an in-person view " +
	"(stairs, heavy items, access, actual load size, multiple trips, etc.). " +
	"Removal & disposal included (if required). " +
	"Cash is tax-free; EMT/e-transfer adds 13% HST."

const scrapDisclaimer = "Scrap pickup is flat-rate: curbside is free (picked up next time we're in the area); " +
	"inside removal is $30. Cash is tax-free; EMT/e-transfer adds 13% HST."

// Breakdown is the engine's output. CashTotal and EMTTotal are both always
// computed; the caller displays whichever matches the chosen payment
// method. Internal is for admin/operator logging only and must never be
// serialized into a customer response.
type Breakdown struct {
	Service    ServiceType
	CashTotal  decimal.Decimal
	EMTTotal   decimal.Decimal
	Disclaimer string
	Notes      []string

	Internal InternalBreakdown
}

type InternalBreakdown struct {
	BillableHours     decimal.Decimal
	CrewSize          int
	Labour            decimal.Decimal
	Travel            decimal.Decimal
	DisposalAllowance decimal.Decimal
}

// Calculate prices a job. It is pure: no I/O, no shared state, safe for
// unlimited parallel calls. The only error kind is *ValidationError.
func Calculate(req *Request) (*Breakdown, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Scrap pickup is a terminal branch: flat price, no labour, no travel
	// baseline, no minimums.
	if req.Service == ServiceScrapPickup {
		cash := scrapCurbsidePrice
		if req.Scrap != nil && req.Scrap.Location == ScrapInside {
			cash = scrapInsidePrice
		}
		return &Breakdown{
			Service:    req.Service,
			CashTotal:  cash.Round(2),
			EMTTotal:   emtTotal(cash),
			Disclaimer: scrapDisclaimer,
			Internal: InternalBreakdown{
				BillableHours: decimal.Zero,
				CrewSize:      1,
			},
		}, nil
	}

	billableHours := req.Hours
	crew := req.CrewSize

	switch req.Service {
	case ServiceSmallMove, ServiceItemDelivery:
		if billableHours.LessThan(minMoveHours) {
			billableHours = minMoveHours
		}
		if crew < 2 {
			crew = 2
		}
	case ServiceDemolition:
		if crew < 2 {
			crew = 2
		}
	default:
		if crew < 1 {
			crew = 1
		}
	}

	labour := labourCost(billableHours, crew)
	if (req.RequiresTwoWorkers || crew >= 2) && labour.LessThan(twoWorkerLabourFloor) {
		labour = twoWorkerLabourFloor
	}

	travel := gasBaseline.Add(wearBaseline)

	disposal := decimal.Zero
	var notes []string
	if req.Service == ServiceHaulAway && req.HaulAway != nil {
		disposal = disposalAllowance(req.HaulAway.GarbageBags)
		if n := req.HaulAway.Mattresses + req.HaulAway.BoxSprings; n > 0 {
			notes = append(notes, fmt.Sprintf(
				"Includes %d mattress/box spring item(s); disposal sites may charge extra for these.", n))
		}
	}

	raw := travel.Add(labour).Add(disposal)
	cash := roundCashToNearestFive(raw)

	return &Breakdown{
		Service:    req.Service,
		CashTotal:  cash.Round(2),
		EMTTotal:   emtTotal(cash),
		Disclaimer: baseDisclaimer,
		Notes:      notes,
		Internal: InternalBreakdown{
			BillableHours:     billableHours,
			CrewSize:          crew,
			Labour:            labour,
			Travel:            travel,
			DisposalAllowance: disposal,
		},
	}, nil
}

// labourCost is hours * (primary rate + helper rate per extra crew member).
func labourCost(hours decimal.Decimal, crew int) decimal.Decimal {
	if hours.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	hourly := primaryRate.Add(helperRate.Mul(decimal.NewFromInt(int64(crew - 1))))
	return hours.Mul(hourly)
}

func disposalAllowance(bags int) decimal.Decimal {
	switch {
	case bags <= 0:
		return decimal.Zero
	case bags <= bagTierSmallMax:
		return bagTierSmallPrice
	case bags <= bagTierMediumMax:
		return bagTierMediumPrice
	default:
		return bagTierLargePrice
	}
}

// roundCashToNearestFive rounds half-up to the nearest $5 increment.
func roundCashToNearestFive(x decimal.Decimal) decimal.Decimal {
	return x.Div(five).Round(0).Mul(five)
}

// emtTotal is cash * 1.13 rounded half-up to cents. Cash never includes
// tax; the 13% applies only to the e-transfer total.
func emtTotal(cash decimal.Decimal) decimal.Decimal {
	return cash.Mul(decimal.NewFromInt(1).Add(emtTaxRate)).Round(2)
}
