package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

type confirmationService struct {
	paymentRepo  ports.PaymentRepository
	contractRepo ports.ContractRepository
	clientRepo   ports.ClientRepository
	userRepo     ports.UserRepository
	notifRepo    ports.NotificationRepository
	auditRepo    ports.AuditRepository
	tx           ports.TxRunner
	dispatcher   ports.NotificationDispatcher
	log          zerolog.Logger
}

// NewConfirmationService returns the transition engine. It is the only
// component allowed to write Payment.status and the
// AWAITING_PAYMENT -> AWAITING_QUESTIONNAIRE contract edge.
func NewConfirmationService(
	paymentRepo ports.PaymentRepository,
	contractRepo ports.ContractRepository,
	clientRepo ports.ClientRepository,
	userRepo ports.UserRepository,
	notifRepo ports.NotificationRepository,
	auditRepo ports.AuditRepository,
	tx ports.TxRunner,
	dispatcher ports.NotificationDispatcher,
	log zerolog.Logger,
) ports.ConfirmationService {
	return &confirmationService{
		paymentRepo:  paymentRepo,
		contractRepo: contractRepo,
		clientRepo:   clientRepo,
		userRepo:     userRepo,
		notifRepo:    notifRepo,
		auditRepo:    auditRepo,
		tx:           tx,
		dispatcher:   dispatcher,
		log:          log,
	}
}

// ConfirmPayment applies one idempotent, atomic transition across Payment,
// Contract, User, Notification and AuditLog for an authenticated
// "payment succeeded" fact.
func (s *confirmationService) ConfirmPayment(ctx context.Context, in ports.ConfirmPaymentInput) (*ports.ConfirmOutcome, error) {
	payment, err := s.paymentRepo.FindByReference(ctx, in.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			// Either a lost write or a forged reference; worth alerting on.
			s.log.Error().Str("reference", in.Reference).Msg("confirmation for unknown payment reference")
		}
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	switch payment.Status {
	case domain.PaymentPaid:
		s.log.Debug().Str("reference", in.Reference).Msg("payment already confirmed, no-op")
		return &ports.ConfirmOutcome{Result: ports.ConfirmAlreadyProcessed, ContractID: payment.ContractID}, nil
	case domain.PaymentFailed, domain.PaymentCancelled:
		return s.flagReconciliation(ctx, payment)
	}

	outcome := &ports.ConfirmOutcome{Result: ports.ConfirmApplied}
	var queued []domain.Notification

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// The single conditional write: exactly one concurrent caller
		// observes PENDING and proceeds; everyone else gets no match.
		updated, err := s.paymentRepo.MarkPaidIfPending(ctx, in.Reference, in.PaidAt, in.Channel, in.RawPayload)
		if err != nil {
			return err
		}

		contract, err := s.resolveContract(ctx, updated, in)
		if err != nil {
			return err
		}
		outcome.ContractID = contract.ID

		promoted, err := s.promoteUsers(ctx, updated, contract)
		if err != nil {
			return err
		}
		outcome.PromotedUserIDs = promoted

		queued, err = s.recordNotifications(ctx, updated, contract, in)
		if err != nil {
			return err
		}

		return s.auditRepo.Record(ctx, &domain.AuditEntry{
			ActorID:    domain.AuditActorSystem,
			Action:     domain.AuditPaymentSuccess,
			EntityType: "payment",
			EntityID:   updated.ID,
			Metadata: map[string]string{
				"reference": in.Reference,
				"channel":   in.Channel,
				"amount":    updated.Amount.String(),
				"currency":  updated.Currency,
			},
			CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingPayment) {
			// Lost the race against a concurrent confirmation; identical to
			// the already-PAID case. The pre-transaction read is stale when
			// the winner reconstructed the contract, so re-fetch for the
			// linked contract id.
			s.log.Debug().Str("reference", in.Reference).Msg("lost confirmation race, no-op")
			contractID := payment.ContractID
			if current, ferr := s.paymentRepo.FindByReference(ctx, in.Reference); ferr == nil {
				contractID = current.ContractID
			}
			return &ports.ConfirmOutcome{Result: ports.ConfirmAlreadyProcessed, ContractID: contractID}, nil
		}
		return nil, fmt.Errorf("confirm payment %s: %w", in.Reference, err)
	}

	// Delivery is a secondary effect: asynchronous and fail-open. The
	// financial transition above is already durable.
	for _, n := range queued {
		s.dispatcher.Enqueue(n)
	}

	s.log.Info().
		Str("reference", in.Reference).
		Str("contract_id", outcome.ContractID).
		Int("promoted_users", len(outcome.PromotedUserIDs)).
		Msg("payment confirmed")

	return outcome, nil
}

// resolveContract advances the linked contract, or reconstructs one from the
// event's metadata when the initiation write was lost. Losing the
// money-received signal is worse than a best-effort contract.
func (s *confirmationService) resolveContract(ctx context.Context, payment *domain.Payment, in ports.ConfirmPaymentInput) (*domain.Contract, error) {
	if payment.ContractID != "" {
		contract, err := s.contractRepo.FindByID(ctx, payment.ContractID)
		if err != nil {
			return nil, err
		}
		if err := s.contractRepo.AdvanceStatus(ctx, contract.ID,
			domain.ContractAwaitingPayment, domain.ContractAwaitingQuestionnaire, domain.PaymentPaid); err != nil {
			return nil, err
		}
		contract.Status = domain.ContractAwaitingQuestionnaire
		contract.PaymentStatus = domain.PaymentPaid
		return contract, nil
	}

	if !in.Metadata.Complete() {
		return nil, fmt.Errorf("reconstruct contract for %s: %w", in.Reference, domain.ErrMetadataIncomplete)
	}

	s.log.Warn().
		Str("reference", in.Reference).
		Str("client_id", in.Metadata.ClientID).
		Msg("payment has no linked contract, reconstructing from event metadata")

	now := time.Now().UTC()
	contract := &domain.Contract{
		ClientID:      in.Metadata.ClientID,
		PackageType:   in.Metadata.PackageType,
		Services:      in.Metadata.Services,
		TotalPrice:    decimal.NewFromInt(in.AmountMinor).Div(decimal.NewFromInt(100)),
		Currency:      in.Currency,
		PaymentStatus: domain.PaymentPaid,
		Status:        domain.ContractAwaitingQuestionnaire,
		Reference:     in.Reference,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.LinkContract(ctx, payment.ID, contract.ID); err != nil {
		return nil, err
	}
	payment.ContractID = contract.ID
	return contract, nil
}

// promoteUsers promotes the payer and the client's linked portal account
// independently; the two are not guaranteed to be the same row.
func (s *confirmationService) promoteUsers(ctx context.Context, payment *domain.Payment, contract *domain.Contract) ([]string, error) {
	candidates := make([]string, 0, 2)
	if payment.UserID != "" {
		candidates = append(candidates, payment.UserID)
	}
	if client, err := s.clientRepo.FindByID(ctx, contract.ClientID); err == nil {
		if client.LinkedUserID != "" && client.LinkedUserID != payment.UserID {
			candidates = append(candidates, client.LinkedUserID)
		}
	} else if !errors.Is(err, domain.ErrNoClient) {
		return nil, err
	}

	var promoted []string
	for _, userID := range candidates {
		ok, err := s.userRepo.PromoteRole(ctx, userID, domain.RoleClientViewerPending, domain.RoleClientViewer)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		promoted = append(promoted, userID)
		if err := s.auditRepo.Record(ctx, &domain.AuditEntry{
			ActorID:    domain.AuditActorSystem,
			Action:     domain.AuditUserAutoApprovedByPay,
			EntityType: "user",
			EntityID:   userID,
			Metadata:   map[string]string{"reference": payment.Reference},
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return nil, err
		}
	}
	return promoted, nil
}

// recordNotifications persists the PAYMENT_CONFIRMED fan-out inside the
// transaction and returns the batch for post-commit delivery.
func (s *confirmationService) recordNotifications(ctx context.Context, payment *domain.Payment, contract *domain.Contract, in ports.ConfirmPaymentInput) ([]domain.Notification, error) {
	companyName := contract.ClientID
	if client, err := s.clientRepo.FindByID(ctx, contract.ClientID); err == nil {
		companyName = client.CompanyName
	}
	body := fmt.Sprintf("Payment of %s %s received for %s.", payment.Amount.String(), payment.Currency, companyName)

	recipients := make([]string, 0, 4)
	if payment.UserID != "" {
		recipients = append(recipients, payment.UserID)
	}
	admins, err := s.userRepo.FindActiveByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return nil, err
	}
	for _, admin := range admins {
		recipients = append(recipients, admin.ID)
	}

	now := time.Now().UTC()
	queued := make([]domain.Notification, 0, len(recipients))
	for _, userID := range recipients {
		n := domain.Notification{
			UserID:    userID,
			Type:      domain.NotificationPaymentConfirmed,
			Title:     "Payment confirmed",
			Body:      body,
			CreatedAt: now,
		}
		if err := s.notifRepo.Insert(ctx, &n); err != nil {
			return nil, err
		}
		queued = append(queued, n)
	}
	return queued, nil
}

// flagReconciliation surfaces a success event for an already FAILED or
// CANCELLED payment. The terminal state is never overwritten; a human
// decides what actually happened to the money.
func (s *confirmationService) flagReconciliation(ctx context.Context, payment *domain.Payment) (*ports.ConfirmOutcome, error) {
	s.log.Warn().
		Str("reference", payment.Reference).
		Str("status", string(payment.Status)).
		Msg("success event for terminal payment, flagging for reconciliation")

	if err := s.auditRepo.Record(ctx, &domain.AuditEntry{
		ActorID:    domain.AuditActorSystem,
		Action:     domain.AuditPaymentReconciliation,
		EntityType: "payment",
		EntityID:   payment.ID,
		Metadata: map[string]string{
			"reference":       payment.Reference,
			"recorded_status": string(payment.Status),
		},
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		s.log.Error().Err(err).Str("reference", payment.Reference).Msg("failed to record reconciliation audit entry")
	}
	return &ports.ConfirmOutcome{Result: ports.ConfirmReconciliationRequired, ContractID: payment.ContractID}, nil
}
