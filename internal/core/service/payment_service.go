package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Malcolmik/ambo-backend/internal/core/catalog"
	"github.com/Malcolmik/ambo-backend/internal/core/domain"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

// referenceAttempts bounds the retry-with-new-reference loop on collision.
const referenceAttempts = 3

type paymentService struct {
	catalog      *catalog.Catalog
	gateway      ports.PaymentGateway
	paymentRepo  ports.PaymentRepository
	contractRepo ports.ContractRepository
	clientRepo   ports.ClientRepository
	userRepo     ports.UserRepository
	auditRepo    ports.AuditRepository
	confirm      ports.ConfirmationService
	tx           ports.TxRunner
	callbackURL  string
	// newReference produces candidate payment references; a field so the
	// collision-retry loop can be driven with a deterministic generator.
	newReference func() string
	log          zerolog.Logger
}

// NewPaymentService returns the payment initiator and manual verification
// path. The verification path delegates to the same confirmation engine the
// webhook uses; it carries no transition logic of its own.
func NewPaymentService(
	cat *catalog.Catalog,
	gateway ports.PaymentGateway,
	paymentRepo ports.PaymentRepository,
	contractRepo ports.ContractRepository,
	clientRepo ports.ClientRepository,
	userRepo ports.UserRepository,
	auditRepo ports.AuditRepository,
	confirm ports.ConfirmationService,
	tx ports.TxRunner,
	callbackURL string,
	log zerolog.Logger,
) ports.PaymentService {
	return &paymentService{
		catalog:      cat,
		gateway:      gateway,
		paymentRepo:  paymentRepo,
		contractRepo: contractRepo,
		clientRepo:   clientRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		confirm:      confirm,
		tx:           tx,
		callbackURL:  callbackURL,
		newReference: generateReference,
		log:          log,
	}
}

// Initialize computes the price server-side, opens a hosted checkout with the
// gateway and persists the pending contract/payment pair. A pair exists for
// every reference handed to the actor; a gateway failure persists nothing.
func (s *paymentService) Initialize(ctx context.Context, actorUserID string, sel ports.SelectionInput) (*ports.InitializeResult, error) {
	client, err := s.clientRepo.FindByLinkedUser(ctx, actorUserID)
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}

	quote, err := s.catalog.ComputePrice(catalog.Selection{
		PackageType: sel.PackageType,
		Services:    sel.Services,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}
	for _, name := range quote.Unrecognized {
		s.log.Warn().Str("service", name).Str("client_id", client.ID).Msg("unrecognized service name priced at zero")
	}

	currency := sel.Currency
	if currency == "" {
		currency = quote.Currency
	}

	reference, err := s.uniqueReference(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}

	email := client.ContactEmail
	if actor, err := s.userRepo.FindByID(ctx, actorUserID); err == nil && actor.Email != "" {
		email = actor.Email
	}

	session, err := s.gateway.InitializeTransaction(ctx, ports.InitializeTransactionRequest{
		Email:       email,
		AmountMinor: minorUnits(quote.Amount),
		Currency:    currency,
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata: ports.CheckoutMetadata{
			SchemaVersion: ports.MetadataSchemaVersion,
			ClientID:      client.ID,
			ActorUserID:   actorUserID,
			PackageType:   sel.PackageType,
			Services:      quote.Services,
		},
	})
	if err != nil {
		s.log.Error().Err(err).Str("reference", reference).Msg("gateway checkout initialization failed")
		return nil, fmt.Errorf("initialize payment: %w", domain.ErrGatewayInit)
	}

	now := time.Now().UTC()
	contract := &domain.Contract{
		ClientID:      client.ID,
		PackageType:   sel.PackageType,
		Services:      quote.Services,
		TotalPrice:    quote.Amount,
		Currency:      currency,
		PaymentStatus: domain.PaymentPending,
		Status:        domain.ContractAwaitingPayment,
		Reference:     reference,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.contractRepo.Create(ctx, contract); err != nil {
			return err
		}
		payment := &domain.Payment{
			ContractID: contract.ID,
			UserID:     actorUserID,
			Amount:     quote.Amount,
			Currency:   currency,
			Reference:  reference,
			Status:     domain.PaymentPending,
			CreatedAt:  now,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}
		return s.auditRepo.Record(ctx, &domain.AuditEntry{
			ActorID:    actorUserID,
			Action:     domain.AuditPaymentInitiated,
			EntityType: "payment",
			EntityID:   payment.ID,
			Metadata: map[string]string{
				"reference":    reference,
				"package_type": sel.PackageType,
				"amount":       quote.Amount.String(),
				"currency":     currency,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("initialize payment: persist pending pair: %w", err)
	}

	s.log.Info().
		Str("reference", reference).
		Str("client_id", client.ID).
		Str("package_type", sel.PackageType).
		Str("amount", quote.Amount.String()).
		Msg("payment initiated")

	return &ports.InitializeResult{
		CheckoutURL: session.CheckoutURL,
		Reference:   reference,
		ContractID:  contract.ID,
		Amount:      quote.Amount.String(),
		Currency:    currency,
	}, nil
}

// Verify asks the gateway for the authoritative status of reference. Success
// feeds the confirmation engine; an explicit failure flips only the payment
// status; a pending answer changes nothing — the webhook path remains the
// eventual source of truth.
func (s *paymentService) Verify(ctx context.Context, actorUserID string, actorRole string, reference string) (*ports.VerifySummary, error) {
	payment, err := s.paymentRepo.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}

	role := domain.Role(actorRole)
	if role != domain.RoleAdmin && role != domain.RoleSuperAdmin && payment.UserID != actorUserID {
		return nil, domain.ErrForbidden
	}

	summary := &ports.VerifySummary{
		Reference:     reference,
		PaymentStatus: string(payment.Status),
		ContractID:    payment.ContractID,
		Amount:        payment.Amount.String(),
		Currency:      payment.Currency,
	}
	if payment.Status == domain.PaymentPaid {
		return summary, nil
	}

	vt, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify payment %s: %w", reference, err)
	}

	switch vt.Status {
	case ports.GatewayTxSuccess:
		outcome, err := s.confirm.ConfirmPayment(ctx, ports.ConfirmPaymentInput{
			Reference:   reference,
			AmountMinor: vt.AmountMinor,
			Currency:    vt.Currency,
			Channel:     vt.Channel,
			PaidAt:      vt.PaidAt,
			RawPayload:  vt.Raw,
			Metadata:    vt.Metadata,
		})
		if err != nil {
			return nil, err
		}
		if outcome.Result != ports.ConfirmReconciliationRequired {
			summary.PaymentStatus = string(domain.PaymentPaid)
		}
		summary.ContractID = outcome.ContractID
		summary.NewlyConfirmed = outcome.Result == ports.ConfirmApplied
	case ports.GatewayTxFailed:
		if err := s.paymentRepo.MarkFailedIfPending(ctx, reference); err != nil && !errors.Is(err, domain.ErrNoPendingPayment) {
			return nil, fmt.Errorf("verify payment %s: %w", reference, err)
		}
		summary.PaymentStatus = string(domain.PaymentFailed)
	default:
		// Inconclusive: leave PENDING untouched.
	}

	return summary, nil
}

// uniqueReference generates a human-traceable reference and retries on the
// unlikely collision with an existing payment.
func (s *paymentService) uniqueReference(ctx context.Context) (string, error) {
	for i := 0; i < referenceAttempts; i++ {
		ref := s.newReference()
		_, err := s.paymentRepo.FindByReference(ctx, ref)
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return ref, nil
		}
		if err != nil {
			return "", err
		}
		s.log.Warn().Str("reference", ref).Msg("reference collision, regenerating")
	}
	return "", domain.ErrDuplicateReference
}

// minorUnits converts a catalog amount to the gateway's minor unit
// (kobo/cents): multiply by 100 and round.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// generateReference returns a reference in the format AMB-<unix>-<6 hex>.
func generateReference() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("AMB-%d-%06X", time.Now().Unix(), time.Now().UnixNano()&0xFFFFFF)
	}
	return fmt.Sprintf("AMB-%d-%06X", time.Now().Unix(), b)
}
