package booking

import "testing"

func TestCanTransition_Graph(t *testing.T) {
	allowed := [][2]Status{
		{StatusCustomerPending, StatusCustomerAccepted},
		{StatusCustomerPending, StatusCustomerDeclined},
		{StatusCustomerAccepted, StatusAdminApproved},
		{StatusCustomerAccepted, StatusRejected},
	}
	for _, p := range allowed {
		if !CanTransition(p[0], p[1]) {
			t.Fatalf("expected %s -> %s to be allowed", p[0], p[1])
		}
	}

	denied := [][2]Status{
		{StatusCustomerDeclined, StatusAdminApproved},
		{StatusCustomerDeclined, StatusCustomerAccepted},
		{StatusAdminApproved, StatusRejected},
		{StatusRejected, StatusAdminApproved},
		{StatusCustomerPending, StatusAdminApproved},
		{StatusCustomerAccepted, StatusCustomerPending},
		{StatusCustomerAccepted, StatusCustomerDeclined},
	}
	for _, p := range denied {
		if CanTransition(p[0], p[1]) {
			t.Fatalf("expected %s -> %s to be denied", p[0], p[1])
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []Status{StatusCustomerDeclined, StatusAdminApproved, StatusRejected} {
		if !s.Terminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []Status{StatusCustomerPending, StatusCustomerAccepted} {
		if s.Terminal() {
			t.Fatalf("expected %s to be non-terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if _, err := ParseStatus("customer_accepted"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseStatus("shipped"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
