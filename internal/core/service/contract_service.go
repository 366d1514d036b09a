package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

const maxContractPageSize = 100

type contractService struct {
	contractRepo ports.ContractRepository
	clientRepo   ports.ClientRepository
	auditRepo    ports.AuditRepository
	log          zerolog.Logger
}

// NewContractService returns the contract read surface and explicit admin
// status edits. The AWAITING_PAYMENT -> AWAITING_QUESTIONNAIRE edge belongs
// to the confirmation engine and is rejected here.
func NewContractService(
	contractRepo ports.ContractRepository,
	clientRepo ports.ClientRepository,
	auditRepo ports.AuditRepository,
	log zerolog.Logger,
) ports.ContractService {
	return &contractService{
		contractRepo: contractRepo,
		clientRepo:   clientRepo,
		auditRepo:    auditRepo,
		log:          log,
	}
}

func (s *contractService) GetContract(ctx context.Context, in ports.GetContractInput) (*domain.Contract, error) {
	contract, err := s.contractRepo.FindByID(ctx, in.ContractID)
	if err != nil {
		return nil, err
	}
	if clientScoped(in.Role) && contract.ClientID != in.ClientID {
		return nil, domain.ErrForbidden
	}
	return contract, nil
}

func (s *contractService) ListContracts(ctx context.Context, in ports.ListContractsInput) (*ports.ListContractsResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > maxContractPageSize {
		limit = maxContractPageSize
	}

	filter := ports.ListContractsFilter{
		Status: in.Status,
		Page:   page,
		Limit:  limit,
	}
	if clientScoped(in.Role) {
		if in.ClientID == "" {
			return nil, domain.ErrForbidden
		}
		filter.ClientID = in.ClientID
	}

	items, total, err := s.contractRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListContractsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus performs an explicit admin status edit, validated against the
// full lifecycle table.
func (s *contractService) UpdateStatus(ctx context.Context, in ports.UpdateContractStatusInput) (*domain.Contract, error) {
	if !domain.KnownContractStatus(in.NextStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, in.NextStatus)
	}

	contract, err := s.contractRepo.FindByID(ctx, in.ContractID)
	if err != nil {
		return nil, err
	}

	// The first edge is reserved for the payment confirmation engine.
	if contract.Status == domain.ContractAwaitingPayment && in.NextStatus == domain.ContractAwaitingQuestionnaire {
		return nil, fmt.Errorf("%w: %s -> %s is driven by payment confirmation", domain.ErrInvalidTransition, contract.Status, in.NextStatus)
	}
	if !contract.Status.CanTransitionTo(in.NextStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, contract.Status, in.NextStatus)
	}

	if err := s.contractRepo.AdvanceStatus(ctx, contract.ID, contract.Status, in.NextStatus, contract.PaymentStatus); err != nil {
		return nil, err
	}

	if err := s.auditRepo.Record(ctx, &domain.AuditEntry{
		ActorID:    in.ActorUserID,
		Action:     domain.AuditContractStatusChanged,
		EntityType: "contract",
		EntityID:   contract.ID,
		Metadata: map[string]string{
			"from": string(contract.Status),
			"to":   string(in.NextStatus),
		},
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		s.log.Error().Err(err).Str("contract_id", contract.ID).Msg("failed to record status change audit entry")
	}

	contract.Status = in.NextStatus
	contract.UpdatedAt = time.Now().UTC()
	return contract, nil
}

// clientScoped reports whether the role may only see its own client's data.
func clientScoped(role domain.Role) bool {
	return role == domain.RoleClientViewer || role == domain.RoleClientViewerPending
}
