package handlers

import (
	"github.com/amirphl/radio-contracts/app/dto"
	businessflow "github.com/amirphl/radio-contracts/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ClientHandler handles advertiser client requests
type ClientHandler struct {
	baseHandler
	clientFlow businessflow.ClientFlow
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientFlow businessflow.ClientFlow, v *validator.Validate) *ClientHandler {
	return &ClientHandler{
		baseHandler: newBaseHandler(v),
		clientFlow:  clientFlow,
	}
}

// ListClients lists active clients
// @Summary List Clients
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search by company name, contact name or email"
// @Success 200 {object} dto.APIResponse{data=dto.ListClientsResponse} "Clients retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/clients [get]
func (h *ClientHandler) ListClients(c fiber.Ctx) error {
	page, limit := pageParams(c)
	req := dto.ListClientsRequest{
		Page:   page,
		Limit:  limit,
		Search: optionalQuery(c, "search"),
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/clients")
	defer cancel()

	result, err := h.clientFlow.ListClients(ctx, h.identity(c), &req)
	if err != nil {
		return h.handleFlowError(c, err, "LIST_CLIENTS_FAILED", "Failed to list clients")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Clients retrieved successfully", result)
}

// GetClient returns a client with its visible contracts
// @Summary Get Client
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClientDetailResponse} "Client retrieved"
// @Failure 404 {object} dto.APIResponse "Client not found"
// @Router /api/v1/clients/{id} [get]
func (h *ClientHandler) GetClient(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/clients/:id")
	defer cancel()

	result, err := h.clientFlow.GetClient(ctx, h.identity(c), id)
	if err != nil {
		return h.handleFlowError(c, err, "GET_CLIENT_FAILED", "Failed to retrieve client")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Client retrieved successfully", result)
}

// ClientStats returns contract aggregates for one client
// @Summary Client Statistics
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} dto.APIResponse{data=dto.ContractStatsResponse} "Statistics retrieved"
// @Failure 404 {object} dto.APIResponse "Client not found"
// @Router /api/v1/clients/{id}/stats [get]
func (h *ClientHandler) ClientStats(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/clients/:id/stats")
	defer cancel()

	result, err := h.clientFlow.ClientStats(ctx, h.identity(c), id)
	if err != nil {
		return h.handleFlowError(c, err, "CLIENT_STATS_FAILED", "Failed to retrieve client statistics")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Client statistics retrieved successfully", result)
}

// CreateClient registers an advertiser
// @Summary Create Client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClientRequest true "Client data"
// @Success 201 {object} dto.APIResponse{data=dto.ClientDTO} "Client created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Email or CNPJ already exists"
// @Router /api/v1/clients [post]
func (h *ClientHandler) CreateClient(c fiber.Ctx) error {
	var req dto.CreateClientRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/clients")
	defer cancel()

	client, err := h.clientFlow.CreateClient(ctx, h.identity(c), &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "CREATE_CLIENT_FAILED", "Failed to create client")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Client created successfully", client)
}

// UpdateClient changes client fields
// @Summary Update Client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Param request body dto.UpdateClientRequest true "Client changes"
// @Success 200 {object} dto.APIResponse{data=dto.ClientDTO} "Client updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Client not found"
// @Failure 409 {object} dto.APIResponse "Email or CNPJ already exists"
// @Router /api/v1/clients/{id} [put]
func (h *ClientHandler) UpdateClient(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateClientRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/clients/:id")
	defer cancel()

	client, err := h.clientFlow.UpdateClient(ctx, h.identity(c), id, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "UPDATE_CLIENT_FAILED", "Failed to update client")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Client updated successfully", client)
}

// DeleteClient deactivates a client without open contracts
// @Summary Deactivate Client
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} dto.APIResponse "Client deactivated"
// @Failure 400 {object} dto.APIResponse "Client has open contracts"
// @Failure 404 {object} dto.APIResponse "Client not found"
// @Router /api/v1/clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/clients/:id")
	defer cancel()

	if err := h.clientFlow.DeleteClient(ctx, h.identity(c), id, h.metadata(c)); err != nil {
		return h.handleFlowError(c, err, "DELETE_CLIENT_FAILED", "Failed to deactivate client")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Client deactivated successfully", nil)
}
