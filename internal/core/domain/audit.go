package domain

import "time"

// Audit action types recorded by the payment pipeline.
const (
	AuditPaymentInitiated      = "PAYMENT_INITIATED"
	AuditPaymentSuccess        = "PAYMENT_SUCCESS"
	AuditUserAutoApprovedByPay = "USER_AUTO_APPROVED_BY_PAYMENT"
	AuditPaymentReconciliation = "PAYMENT_RECONCILIATION_REQUIRED"
	AuditContractStatusChanged = "CONTRACT_STATUS_CHANGED"
)

// AuditActorSystem is recorded when a transition was driven by an external
// event rather than an authenticated user.
const AuditActorSystem = "system"

// AuditEntry is a write-once record of a state transition. Entries are never
// updated or deleted.
type AuditEntry struct {
	ID         string            `json:"id" bson:"_id,omitempty"`
	ActorID    string            `json:"actor_id" bson:"actor_id"`
	Action     string            `json:"action" bson:"action"`
	EntityType string            `json:"entity_type" bson:"entity_type"`
	EntityID   string            `json:"entity_id" bson:"entity_id"`
	Metadata   map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
}
