package booking

import "fmt"

type Status string

const (
	StatusCustomerPending  Status = "customer_pending"
	StatusCustomerAccepted Status = "customer_accepted"
	StatusCustomerDeclined Status = "customer_declined"
	StatusAdminApproved    Status = "admin_approved"
	StatusRejected         Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusCustomerPending, StatusCustomerAccepted, StatusCustomerDeclined, StatusAdminApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// allowedTransitions is the single authority over the request lifecycle.
// Every mutation path consults it; nothing writes a status outside this
// graph. customer_declined, admin_approved and rejected are terminal.
var allowedTransitions = map[Status]map[Status]bool{
	StatusCustomerPending:  {StatusCustomerAccepted: true, StatusCustomerDeclined: true},
	StatusCustomerAccepted: {StatusAdminApproved: true, StatusRejected: true},
	StatusCustomerDeclined: {},
	StatusAdminApproved:    {},
	StatusRejected:         {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

func (s Status) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// StateConflictError reports a transition attempt that the lifecycle graph
// forbids. The request row is left unchanged when it is returned.
type StateConflictError struct {
	RequestID string
	From      Status
	To        Status
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("request %s: cannot transition %s -> %s", e.RequestID, e.From, e.To)
}
