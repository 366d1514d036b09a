package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Malcolmik/ambo-backend/internal/api/metrics"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

// maxWebhookBody bounds the raw body read; gateway events are small.
const maxWebhookBody = 1 << 20

// WebhookHandler receives asynchronous gateway events. The body is read
// untouched: the signature covers the exact bytes the gateway sent, so no
// middleware may parse or re-encode it first.
type WebhookHandler struct {
	service         ports.WebhookService
	signatureHeader string
}

func NewWebhookHandler(service ports.WebhookService, signatureHeader string) *WebhookHandler {
	return &WebhookHandler{service: service, signatureHeader: signatureHeader}
}

// Receive handles POST /v1/payments/webhook.
//
// @Summary      Ingest a gateway webhook event
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Paystack-Signature  header    string  true  "HMAC-SHA512 of the raw body"
// @Success      200  {object}  webhookAckResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/payments/webhook [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	rawBody, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("error").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	signature := c.Request().Header.Get(h.signatureHeader)

	outcome, err := h.service.Process(c.Request().Context(), rawBody, signature)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	if outcome.Result == ports.ConfirmApplied {
		metrics.PaymentsConfirmedTotal.WithLabelValues("webhook").Inc()
	}
	if outcome.Result == ports.ConfirmReconciliationRequired {
		metrics.PaymentsReconciliationTotal.Inc()
	}
	metrics.WebhookEventsTotal.WithLabelValues(string(outcome.Result)).Inc()

	return c.JSON(http.StatusOK, webhookAckResponse{Status: string(outcome.Result)})
}
