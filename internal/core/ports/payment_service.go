package ports

import (
	"context"
	"time"
)

// SelectionInput is the DTO passed from the transport layer when initiating
// a payment. It deliberately carries no price field.
type SelectionInput struct {
	PackageType string
	Services    []string
	Currency    string // optional; catalog currency when empty
}

// InitializeResult is returned after a checkout session was opened and the
// pending contract/payment pair persisted.
type InitializeResult struct {
	CheckoutURL string
	Reference   string
	ContractID  string
	Amount      string
	Currency    string
}

// VerifySummary is the client-pollable status answer for a reference.
type VerifySummary struct {
	Reference     string
	PaymentStatus string
	ContractID    string
	Amount        string
	Currency      string
	// NewlyConfirmed is true when this poll performed the confirmation
	// transition (as opposed to observing an earlier one).
	NewlyConfirmed bool
}

// PaymentService owns payment initiation and the manual verification path.
type PaymentService interface {
	// Initialize computes the price server-side, opens a hosted checkout with
	// the gateway and persists the pending contract/payment pair.
	Initialize(ctx context.Context, actorUserID string, sel SelectionInput) (*InitializeResult, error)
	// Verify asks the gateway for the authoritative status of reference and,
	// on success, feeds the same confirmation engine the webhook path uses.
	Verify(ctx context.Context, actorUserID string, actorRole string, reference string) (*VerifySummary, error)
}

// ConfirmResult distinguishes the outcomes of a confirmation attempt.
type ConfirmResult string

const (
	// ConfirmApplied — this caller won the conditional write and performed
	// the full transition.
	ConfirmApplied ConfirmResult = "confirmed"
	// ConfirmAlreadyProcessed — the payment was already terminal PAID, or a
	// concurrent caller won the race. No new work was done.
	ConfirmAlreadyProcessed ConfirmResult = "already_processed"
	// ConfirmReconciliationRequired — a success event arrived for a payment
	// already FAILED or CANCELLED. Never silently overwritten; flagged for a
	// human decision.
	ConfirmReconciliationRequired ConfirmResult = "reconciliation_required"
)

// ConfirmPaymentInput is an authenticated "payment succeeded" fact.
type ConfirmPaymentInput struct {
	Reference   string
	AmountMinor int64
	Currency    string
	Channel     string
	PaidAt      time.Time
	RawPayload  []byte
	Metadata    CheckoutMetadata
}

// ConfirmOutcome reports what a confirmation attempt did.
type ConfirmOutcome struct {
	Result          ConfirmResult
	ContractID      string
	PromotedUserIDs []string
}

// ConfirmationService is the transition engine: the single authorized path
// from a confirmed payment fact to updated payment, contract, user role,
// notification and audit state. Both the webhook and the manual verification
// path must go through it.
type ConfirmationService interface {
	ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) (*ConfirmOutcome, error)
}

// WebhookService authenticates and processes asynchronous gateway events.
type WebhookService interface {
	// Process authenticates the raw event bytes (signature first, then the
	// gateway's authoritative verify as fallback) and feeds the confirmation
	// engine. Non-success events are acknowledged without state changes.
	Process(ctx context.Context, rawBody []byte, signature string) (*ConfirmOutcome, error)
}
