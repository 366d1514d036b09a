package domain

import "testing"

func TestContractStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to ContractStatus
		want     bool
	}{
		{ContractAwaitingPayment, ContractAwaitingQuestionnaire, true},
		{ContractAwaitingPayment, ContractCancelled, true},
		{ContractAwaitingPayment, ContractInProgress, false},
		{ContractAwaitingQuestionnaire, ContractReadyForAssignment, true},
		{ContractInProgress, ContractOnHold, true},
		{ContractOnHold, ContractInProgress, true},
		{ContractInProgress, ContractComplete, true},
		{ContractComplete, ContractInProgress, false},
		{ContractCancelled, ContractAwaitingPayment, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestContractStatus_Terminal(t *testing.T) {
	if !ContractComplete.Terminal() || !ContractCancelled.Terminal() {
		t.Error("COMPLETE and CANCELLED must be terminal")
	}
	if ContractOnHold.Terminal() {
		t.Error("ON_HOLD must not be terminal")
	}
}

func TestPaymentStatus_Transitions(t *testing.T) {
	if !PaymentPending.CanTransitionTo(PaymentPaid) {
		t.Error("PENDING -> PAID must be allowed")
	}
	for _, terminal := range []PaymentStatus{PaymentPaid, PaymentFailed, PaymentCancelled} {
		if !terminal.Terminal() {
			t.Errorf("%s must be terminal", terminal)
		}
		if terminal.CanTransitionTo(PaymentPaid) {
			t.Errorf("%s -> PAID must not be allowed", terminal)
		}
	}
}
