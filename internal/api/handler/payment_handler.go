package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Malcolmik/ambo-backend/internal/api/metrics"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

// PaymentHandler handles HTTP requests for payment initiation and manual
// verification.
type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Initialize handles POST /v1/payments/initialize.
//
// @Summary      Open a hosted checkout for a package selection
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      initializePaymentRequest  true  "Package selection (no price field; amounts are computed server-side)"
// @Success      201   {object}  initializePaymentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/payments/initialize [post]
func (h *PaymentHandler) Initialize(c echo.Context) error {
	var req initializePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	result, err := h.service.Initialize(c.Request().Context(), userID, ports.SelectionInput{
		PackageType: req.PackageType,
		Services:    req.Services,
		Currency:    req.Currency,
	})
	if err != nil {
		return err
	}
	metrics.PaymentsInitiatedTotal.WithLabelValues(req.PackageType).Inc()

	return c.JSON(http.StatusCreated, initializePaymentResponse{
		CheckoutURL: result.CheckoutURL,
		Reference:   result.Reference,
		ContractID:  result.ContractID,
		Amount:      result.Amount,
		Currency:    result.Currency,
	})
}

// Verify handles GET /v1/payments/verify/:reference.
//
// @Summary      Verify a payment against the gateway
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        reference  path      string  true  "Payment reference (e.g. AMB-1700000000-A1B2C3)"
// @Success      200        {object}  verifyPaymentResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Failure      502        {object}  errorResponse
// @Router       /v1/payments/verify/{reference} [get]
func (h *PaymentHandler) Verify(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	summary, err := h.service.Verify(c.Request().Context(), userID, role, c.Param("reference"))
	if err != nil {
		return err
	}
	if summary.NewlyConfirmed {
		metrics.PaymentsConfirmedTotal.WithLabelValues("verify").Inc()
	}

	return c.JSON(http.StatusOK, verifyPaymentResponse{
		Reference:      summary.Reference,
		PaymentStatus:  summary.PaymentStatus,
		ContractID:     summary.ContractID,
		Amount:         summary.Amount,
		Currency:       summary.Currency,
		NewlyConfirmed: summary.NewlyConfirmed,
	})
}
