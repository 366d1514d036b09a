package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

// gatewayEvent mirrors the gateway's webhook envelope. Only the fields the
// pipeline acts on are decoded; the raw bytes are preserved separately for
// signature verification and audit.
type gatewayEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string                 `json:"reference"`
		Status    string                 `json:"status"`
		Amount    int64                  `json:"amount"`
		Currency  string                 `json:"currency"`
		Channel   string                 `json:"channel"`
		PaidAt    time.Time              `json:"paid_at"`
		Metadata  ports.CheckoutMetadata `json:"metadata"`
	} `json:"data"`
}

const eventChargeSuccess = "charge.success"

type webhookService struct {
	gateway ports.PaymentGateway
	confirm ports.ConfirmationService
	replay  ports.ReplayChecker
	log     zerolog.Logger
}

// NewWebhookService returns the inbound event authenticator. It verifies
// events against the exact bytes the gateway signed; re-encoding a parsed
// body would silently break the signature.
func NewWebhookService(
	gateway ports.PaymentGateway,
	confirm ports.ConfirmationService,
	replay ports.ReplayChecker,
	log zerolog.Logger,
) ports.WebhookService {
	return &webhookService{gateway: gateway, confirm: confirm, replay: replay, log: log}
}

// Process authenticates and processes one asynchronous gateway event.
func (s *webhookService) Process(ctx context.Context, rawBody []byte, signature string) (*ports.ConfirmOutcome, error) {
	var event gatewayEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMissingReference, err)
	}
	if event.Data.Reference == "" {
		return nil, domain.ErrMissingReference
	}

	in, isSuccess, err := s.authenticate(ctx, rawBody, signature, event)
	if err != nil {
		return nil, err
	}

	if !isSuccess {
		// Any other authenticated event type: acknowledged, nothing to transition.
		s.log.Debug().Str("event", event.Event).Str("reference", event.Data.Reference).Msg("ignoring non-success event")
		return &ports.ConfirmOutcome{Result: ports.ConfirmAlreadyProcessed}, nil
	}

	// Advisory replay fast-path; the conditional write in the confirmation
	// engine is what actually guarantees exactly-once.
	if seen, err := s.replay.Seen(ctx, in.Reference); err != nil {
		s.log.Warn().Err(err).Str("reference", in.Reference).Msg("replay check failed, processing anyway")
	} else if seen {
		s.log.Debug().Str("reference", in.Reference).Msg("replayed event short-circuited")
		return &ports.ConfirmOutcome{Result: ports.ConfirmAlreadyProcessed}, nil
	}

	outcome, err := s.confirm.ConfirmPayment(ctx, *in)
	if err != nil {
		return nil, err
	}

	if outcome.Result == ports.ConfirmApplied {
		if err := s.replay.Mark(ctx, in.Reference); err != nil {
			s.log.Warn().Err(err).Str("reference", in.Reference).Msg("failed to mark replay key")
		}
	}
	return outcome, nil
}

// authenticate establishes that the event genuinely originates from the
// gateway and reports whether it describes a successful charge. A signature
// mismatch is not an immediate rejection: deployments re-serialize bodies in
// ways that break naive HMAC checks, so the gateway's authoritative
// verify-by-reference answer is consulted before rejecting. The verified
// response then overrides whatever the event claimed.
func (s *webhookService) authenticate(ctx context.Context, rawBody []byte, signature string, event gatewayEvent) (*ports.ConfirmPaymentInput, bool, error) {
	if signature != "" && s.gateway.VerifyWebhookSignature(rawBody, signature) {
		if event.Event != eventChargeSuccess && event.Data.Status != string(ports.GatewayTxSuccess) {
			return nil, false, nil
		}
		return &ports.ConfirmPaymentInput{
			Reference:   event.Data.Reference,
			AmountMinor: event.Data.Amount,
			Currency:    event.Data.Currency,
			Channel:     event.Data.Channel,
			PaidAt:      event.Data.PaidAt,
			RawPayload:  rawBody,
			Metadata:    event.Data.Metadata,
		}, true, nil
	}

	s.log.Warn().Str("reference", event.Data.Reference).Msg("webhook signature mismatch, falling back to gateway verify")

	vt, err := s.gateway.VerifyTransaction(ctx, event.Data.Reference)
	if err != nil || vt.Status != ports.GatewayTxSuccess {
		return nil, false, domain.ErrUnauthenticatedEvent
	}

	return &ports.ConfirmPaymentInput{
		Reference:   vt.Reference,
		AmountMinor: vt.AmountMinor,
		Currency:    vt.Currency,
		Channel:     vt.Channel,
		PaidAt:      vt.PaidAt,
		RawPayload:  vt.Raw,
		Metadata:    vt.Metadata,
	}, true, nil
}
