package handler

import (
	"time"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

// --- Request / Response types ---

type updateContractStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type contractResponse struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"client_id"`
	PackageType   string    `json:"package_type"`
	Services      []string  `json:"services"`
	TotalPrice    string    `json:"total_price"`
	Currency      string    `json:"currency"`
	PaymentStatus string    `json:"payment_status"`
	Status        string    `json:"status"`
	Reference     string    `json:"reference"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listContractsResponse struct {
	Data       []contractResponse `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

func toContractResponse(c *domain.Contract) contractResponse {
	return contractResponse{
		ID:            c.ID,
		ClientID:      c.ClientID,
		PackageType:   c.PackageType,
		Services:      c.Services,
		TotalPrice:    c.TotalPrice.String(),
		Currency:      c.Currency,
		PaymentStatus: string(c.PaymentStatus),
		Status:        string(c.Status),
		Reference:     c.Reference,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
