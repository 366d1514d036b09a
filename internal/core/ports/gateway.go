package ports

import (
	"context"
	"time"
)

// MetadataSchemaVersion tags the checkout metadata layout so the
// reconstruction path can detect incompatible payloads.
const MetadataSchemaVersion = 1

// CheckoutMetadata is the typed, versioned payload attached to a checkout
// session. It is the fallback source of truth when a payment row must be
// reconstructed from a gateway confirmation.
type CheckoutMetadata struct {
	SchemaVersion int      `json:"schema_version"`
	ClientID      string   `json:"client_id"`
	ActorUserID   string   `json:"actor_user_id"`
	PackageType   string   `json:"package_type"`
	Services      []string `json:"services"`
}

// Complete reports whether the metadata carries enough to reconstruct a
// contract.
func (m CheckoutMetadata) Complete() bool {
	return m.ClientID != "" && m.PackageType != ""
}

// InitializeTransactionRequest is the create-checkout call payload. Amounts
// are in the gateway's minor unit (kobo/cents).
type InitializeTransactionRequest struct {
	Email       string
	AmountMinor int64
	Currency    string
	Reference   string
	CallbackURL string
	Metadata    CheckoutMetadata
}

// CheckoutSession is the gateway's answer to a create-checkout call.
type CheckoutSession struct {
	CheckoutURL string
	AccessCode  string
	Reference   string
}

// GatewayTxStatus is the gateway's view of a transaction.
type GatewayTxStatus string

const (
	GatewayTxSuccess GatewayTxStatus = "success"
	GatewayTxFailed  GatewayTxStatus = "failed"
	GatewayTxPending GatewayTxStatus = "pending"
)

// VerifiedTransaction is the authoritative verify-by-reference answer.
type VerifiedTransaction struct {
	Reference   string
	Status      GatewayTxStatus
	AmountMinor int64
	Currency    string
	Channel     string
	PaidAt      time.Time
	Metadata    CheckoutMetadata
	// Raw is the gateway's response body, stored for audit/dispute resolution.
	Raw []byte
}

// PaymentGateway is the collaborator interface to the external payment
// processor. Implementations must bound every call with a timeout.
type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, req InitializeTransactionRequest) (*CheckoutSession, error)
	VerifyTransaction(ctx context.Context, reference string) (*VerifiedTransaction, error)
	// VerifyWebhookSignature checks the HMAC over the exact raw bytes the
	// gateway signed, in constant time.
	VerifyWebhookSignature(rawBody []byte, signature string) bool
}
