package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle state of a contract.
type ContractStatus string

const (
	ContractAwaitingPayment       ContractStatus = "AWAITING_PAYMENT"
	ContractAwaitingQuestionnaire ContractStatus = "AWAITING_QUESTIONNAIRE"
	ContractReadyForAssignment    ContractStatus = "READY_FOR_ASSIGNMENT"
	ContractInProgress            ContractStatus = "IN_PROGRESS"
	ContractOnHold                ContractStatus = "ON_HOLD"
	ContractComplete              ContractStatus = "COMPLETE"
	ContractCancelled             ContractStatus = "CANCELLED"
)

// contractTransitions defines the allowed contract state machine transitions.
// The payment confirmation engine only ever performs the first edge
// (AWAITING_PAYMENT -> AWAITING_QUESTIONNAIRE); later edges are driven by the
// questionnaire and assignment workflows through the admin status endpoint.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractAwaitingPayment:       {ContractAwaitingQuestionnaire, ContractCancelled},
	ContractAwaitingQuestionnaire: {ContractReadyForAssignment, ContractCancelled},
	ContractReadyForAssignment:    {ContractInProgress, ContractCancelled},
	ContractInProgress:            {ContractOnHold, ContractComplete, ContractCancelled},
	ContractOnHold:                {ContractInProgress, ContractCancelled},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s ContractStatus) CanTransitionTo(next ContractStatus) bool {
	for _, allowed := range contractTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s ContractStatus) Terminal() bool {
	return len(contractTransitions[s]) == 0
}

// KnownContractStatus reports whether s is one of the closed enumeration values.
func KnownContractStatus(s ContractStatus) bool {
	switch s {
	case ContractAwaitingPayment, ContractAwaitingQuestionnaire, ContractReadyForAssignment,
		ContractInProgress, ContractOnHold, ContractComplete, ContractCancelled:
		return true
	}
	return false
}

// PackageCustom marks an a-la-carte service selection instead of a named package.
const PackageCustom = "CUSTOM"

// Contract is one purchase agreement between a client and the agency.
// Rows are never deleted, only superseded in status.
type Contract struct {
	ID            string          `json:"id" bson:"_id,omitempty"`
	ClientID      string          `json:"client_id" bson:"client_id"`
	PackageType   string          `json:"package_type" bson:"package_type"`
	Services      []string        `json:"services" bson:"services"`
	TotalPrice    decimal.Decimal `json:"total_price" bson:"-"`
	Currency      string          `json:"currency" bson:"currency"`
	PaymentStatus PaymentStatus   `json:"payment_status" bson:"payment_status"`
	Status        ContractStatus  `json:"status" bson:"status"`
	Reference     string          `json:"reference" bson:"reference"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
}
