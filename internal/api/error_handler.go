package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidSelection):
		return http.StatusBadRequest, "invalid package or service selection"
	case errors.Is(err, domain.ErrZeroAmount):
		return http.StatusUnprocessableEntity, "selection prices to a non-positive amount"
	case errors.Is(err, domain.ErrNoClient):
		return http.StatusForbidden, "no client profile linked to this account"
	case errors.Is(err, domain.ErrGatewayInit):
		return http.StatusBadGateway, "payment gateway unavailable"
	case errors.Is(err, domain.ErrMissingReference):
		return http.StatusBadRequest, "event carries no payment reference"
	case errors.Is(err, domain.ErrUnauthenticatedEvent):
		return http.StatusUnauthorized, "event could not be authenticated"
	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound, "payment not found"
	case errors.Is(err, domain.ErrContractNotFound):
		return http.StatusNotFound, "contract not found"
	case errors.Is(err, domain.ErrDuplicateReference):
		return http.StatusConflict, "payment reference already exists"
	case errors.Is(err, domain.ErrMetadataIncomplete):
		return http.StatusUnprocessableEntity, "event metadata is insufficient to reconstruct the contract"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
