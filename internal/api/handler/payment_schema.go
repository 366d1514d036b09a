package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

// initializePaymentRequest deliberately carries no price field: the amount a
// client is willing to pay is never an input.
type initializePaymentRequest struct {
	PackageType string   `json:"package_type" validate:"required"`
	Services    []string `json:"services"`
	Currency    string   `json:"currency"`
}

type initializePaymentResponse struct {
	CheckoutURL string `json:"checkout_url"`
	Reference   string `json:"reference"`
	ContractID  string `json:"contract_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

type verifyPaymentResponse struct {
	Reference      string `json:"reference"`
	PaymentStatus  string `json:"payment_status"`
	ContractID     string `json:"contract_id,omitempty"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	NewlyConfirmed bool   `json:"newly_confirmed"`
}

type webhookAckResponse struct {
	Status string `json:"status"`
}
