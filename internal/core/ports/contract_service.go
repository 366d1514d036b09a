package ports

import (
	"context"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

// GetContractInput carries the parameters to retrieve a single contract.
// Role and ClientID enforce scoping: client roles only see their own.
type GetContractInput struct {
	ContractID string
	Role       domain.Role
	ClientID   string
}

// ListContractsInput carries all parameters for the list endpoint.
type ListContractsInput struct {
	Role     domain.Role
	ClientID string
	Status   string
	Page     int
	Limit    int
}

// ListContractsResult is returned by ListContracts.
type ListContractsResult struct {
	Items      []*domain.Contract
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UpdateContractStatusInput is the admin status edit request.
type UpdateContractStatusInput struct {
	ContractID  string
	NextStatus  domain.ContractStatus
	ActorUserID string
}

// ContractService defines the contract read surface and the explicit admin
// status edits outside the payment confirmation edge.
type ContractService interface {
	GetContract(ctx context.Context, in GetContractInput) (*domain.Contract, error)
	ListContracts(ctx context.Context, in ListContractsInput) (*ListContractsResult, error)
	UpdateStatus(ctx context.Context, in UpdateContractStatusInput) (*domain.Contract, error)
}
