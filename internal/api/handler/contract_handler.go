package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

// ContractHandler exposes the contract read surface and the admin status
// edit. Client identity is not carried in the JWT; it is resolved per
// request from the client link, so revoking a link takes effect immediately.
type ContractHandler struct {
	service ports.ContractService
	clients ports.ClientRepository
}

func NewContractHandler(service ports.ContractService, clients ports.ClientRepository) *ContractHandler {
	return &ContractHandler{service: service, clients: clients}
}

// Get handles GET /v1/contracts/:id.
//
// @Summary      Get a contract by ID
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  contractResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/contracts/{id} [get]
func (h *ContractHandler) Get(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	clientID, err := h.resolveClientID(c, userID, role)
	if err != nil {
		return err
	}

	contract, err := h.service.GetContract(c.Request().Context(), ports.GetContractInput{
		ContractID: c.Param("id"),
		Role:       domain.Role(role),
		ClientID:   clientID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContractResponse(contract))
}

// List handles GET /v1/contracts.
//
// @Summary      List contracts
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by contract status"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  listContractsResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/contracts [get]
func (h *ContractHandler) List(c echo.Context) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	clientID, err := h.resolveClientID(c, userID, role)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListContracts(c.Request().Context(), ports.ListContractsInput{
		Role:     domain.Role(role),
		ClientID: clientID,
		Status:   c.QueryParam("status"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	items := make([]contractResponse, 0, len(result.Items))
	for _, contract := range result.Items {
		items = append(items, toContractResponse(contract))
	}
	return c.JSON(http.StatusOK, listContractsResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// UpdateStatus handles PATCH /v1/contracts/:id/status.
//
// @Summary      Update a contract's lifecycle status
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                       true  "Contract ID"
// @Param        body  body      updateContractStatusRequest  true  "Target status"
// @Success      200   {object}  contractResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/contracts/{id}/status [patch]
func (h *ContractHandler) UpdateStatus(c echo.Context) error {
	var req updateContractStatusRequest
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

	contract, err := h.service.UpdateStatus(c.Request().Context(), ports.UpdateContractStatusInput{
		ContractID:  c.Param("id"),
		NextStatus:  domain.ContractStatus(req.Status),
		ActorUserID: userID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContractResponse(contract))
}

// resolveClientID looks up the client a scoped user acts for. Staff roles
// need no client identity; a scoped user without a link keeps an empty
// ClientID and the service layer refuses the access.
func (h *ContractHandler) resolveClientID(c echo.Context, userID, role string) (string, error) {
	r := domain.Role(role)
	if r != domain.RoleClientViewer && r != domain.RoleClientViewerPending {
		return "", nil
	}
	client, err := h.clients.FindByLinkedUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoClient) {
			return "", nil
		}
		return "", err
	}
	return client.ID, nil
}
