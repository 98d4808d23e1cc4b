package pricing

import "fmt"

type ServiceType string

const (
	ServiceScrapPickup  ServiceType = "scrap_pickup"
	ServiceHaulAway     ServiceType = "haul_away"
	ServiceSmallMove    ServiceType = "small_move"
	ServiceItemDelivery ServiceType = "item_delivery"
	ServiceDemolition   ServiceType = "demolition"
)

// serviceAliases maps the names customers and older clients send to the
// canonical service types. Aliasing covers the service NAME only; it never
// stands in for the per-service mandatory fields (a "moving" request still
// has to carry explicit pickup/dropoff addresses to pass validation).
var serviceAliases = map[string]ServiceType{
	"junk_removal": ServiceHaulAway,
	"junk":         ServiceHaulAway,
	"dump_run":     ServiceHaulAway,
	"haulaway":     ServiceHaulAway,
	"moving":       ServiceSmallMove,
	"small_moving": ServiceSmallMove,
	"delivery":     ServiceItemDelivery,
}

func ParseServiceType(s string) (ServiceType, error) {
	switch ServiceType(s) {
	case ServiceScrapPickup, ServiceHaulAway, ServiceSmallMove, ServiceItemDelivery, ServiceDemolition:
		return ServiceType(s), nil
	}
	if t, ok := serviceAliases[s]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown service type: %s", s)
}

// IsMovement reports whether the service moves goods between two addresses
// and therefore requires explicit pickup and dropoff.
func (t ServiceType) IsMovement() bool {
	return t == ServiceSmallMove || t == ServiceItemDelivery
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentEMT  PaymentMethod = "emt"
)

var paymentAliases = map[string]PaymentMethod{
	"e-transfer": PaymentEMT,
	"e_transfer": PaymentEMT,
	"etransfer":  PaymentEMT,
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentEMT:
		return PaymentMethod(s), nil
	}
	if p, ok := paymentAliases[s]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown payment method: %s", s)
}

type ScrapLocation string

const (
	ScrapCurbside ScrapLocation = "curbside"
	ScrapInside   ScrapLocation = "inside"
)
