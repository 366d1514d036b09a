package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment attempt.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// paymentTransitions defines the allowed payment state machine transitions.
// Every non-pending state is terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed, PaymentCancelled},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the payment has reached a final state.
func (s PaymentStatus) Terminal() bool {
	return len(paymentTransitions[s]) == 0
}

// Payment is one attempt to collect money for a contract. The gateway
// reference is globally unique and serves as the idempotency key for all
// confirmation events. A payment is mutated exactly once, from PENDING to a
// terminal state; ContractID may briefly be empty when the contract row is
// reconstructed from gateway metadata after the fact.
type Payment struct {
	ID         string          `json:"id" bson:"_id,omitempty"`
	ContractID string          `json:"contract_id,omitempty" bson:"contract_id,omitempty"`
	UserID     string          `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Amount     decimal.Decimal `json:"amount" bson:"-"`
	Currency   string          `json:"currency" bson:"currency"`
	Reference  string          `json:"reference" bson:"reference"`
	Status     PaymentStatus   `json:"status" bson:"status"`
	Channel    string          `json:"channel,omitempty" bson:"channel,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	RawPayload []byte          `json:"-" bson:"raw_payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at" bson:"created_at"`
}
