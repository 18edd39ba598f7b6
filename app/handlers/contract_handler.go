package handlers

import (
	"fmt"

	"github.com/amirphl/radio-contracts/app/dto"
	businessflow "github.com/amirphl/radio-contracts/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ContractHandler handles advertising contract requests
type ContractHandler struct {
	baseHandler
	contractFlow businessflow.ContractFlow
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractFlow businessflow.ContractFlow, v *validator.Validate) *ContractHandler {
	return &ContractHandler{
		baseHandler:  newBaseHandler(v),
		contractFlow: contractFlow,
	}
}

// listRequest builds the shared filter of the list and export endpoints
func (h *ContractHandler) listRequest(c fiber.Ctx) (*dto.ListContractsRequest, bool, error) {
	page, limit := pageParams(c)
	req := &dto.ListContractsRequest{
		Page:          page,
		Limit:         limit,
		Search:        optionalQuery(c, "search"),
		Status:        optionalQuery(c, "status"),
		PaymentStatus: optionalQuery(c, "payment_status"),
	}

	var err error
	if req.ClientID, err = optionalUintQuery(c, "client_id"); err != nil {
		return nil, false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", []string{err.Error()})
	}
	if req.ProgramID, err = optionalUintQuery(c, "program_id"); err != nil {
		return nil, false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", []string{err.Error()})
	}
	if ok, err := h.validate(c, req); !ok {
		return nil, false, err
	}
	return req, true, nil
}

// ListContracts lists the contracts visible to the caller
// @Summary List Contracts
// @Description Announcers only see contracts of programs they host
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search by contract number or title"
// @Param status query string false "Status filter" Enums(draft, active, completed, cancelled)
// @Param payment_status query string false "Payment status filter" Enums(pending, partial, paid, overdue)
// @Param client_id query int false "Client filter"
// @Param program_id query int false "Program filter"
// @Success 200 {object} dto.APIResponse{data=dto.ListContractsResponse} "Contracts retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/contracts [get]
func (h *ContractHandler) ListContracts(c fiber.Ctx) error {
	req, ok, err := h.listRequest(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts")
	defer cancel()

	result, err := h.contractFlow.ListContracts(ctx, h.identity(c), req)
	if err != nil {
		return h.handleFlowError(c, err, "LIST_CONTRACTS_FAILED", "Failed to list contracts")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contracts retrieved successfully", result)
}

// ContractStats returns aggregate figures over the visible contracts
// @Summary Contract Statistics
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ContractStatsResponse} "Statistics retrieved"
// @Router /api/v1/contracts/stats [get]
func (h *ContractHandler) ContractStats(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/stats")
	defer cancel()

	result, err := h.contractFlow.ContractStats(ctx, h.identity(c))
	if err != nil {
		return h.handleFlowError(c, err, "CONTRACT_STATS_FAILED", "Failed to retrieve contract statistics")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contract statistics retrieved successfully", result)
}

// ExportContracts downloads the filtered contracts as a spreadsheet
// @Summary Export Contracts
// @Tags Contracts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(draft, active, completed, cancelled)
// @Param payment_status query string false "Payment status filter" Enums(pending, partial, paid, overdue)
// @Param client_id query int false "Client filter"
// @Param program_id query int false "Program filter"
// @Success 200 {file} file "Spreadsheet"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Router /api/v1/contracts/export [get]
func (h *ContractHandler) ExportContracts(c fiber.Ctx) error {
	req, ok, err := h.listRequest(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/export")
	defer cancel()

	file, err := h.contractFlow.ExportContracts(ctx, h.identity(c), req)
	if err != nil {
		return h.handleFlowError(c, err, "EXPORT_CONTRACTS_FAILED", "Failed to export contracts")
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.FileName))
	return c.Status(fiber.StatusOK).Send(file.Data)
}

// GetContract returns a contract with spots, payments and files
// @Summary Get Contract
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} dto.APIResponse{data=dto.ContractDetailResponse} "Contract retrieved"
// @Failure 403 {object} dto.APIResponse "Contract not visible to the caller"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Router /api/v1/contracts/{id} [get]
func (h *ContractHandler) GetContract(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/:id")
	defer cancel()

	result, err := h.contractFlow.GetContract(ctx, h.identity(c), id)
	if err != nil {
		return h.handleFlowError(c, err, "GET_CONTRACT_FAILED", "Failed to retrieve contract")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contract retrieved successfully", result)
}

// CreateContract creates a draft contract with a fresh number
// @Summary Create Contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateContractRequest true "Contract data"
// @Success 201 {object} dto.APIResponse{data=dto.ContractDTO} "Contract created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Client, program or ad type not found"
// @Router /api/v1/contracts [post]
func (h *ContractHandler) CreateContract(c fiber.Ctx) error {
	var req dto.CreateContractRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts")
	defer cancel()

	contract, err := h.contractFlow.CreateContract(ctx, h.identity(c), &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "CREATE_CONTRACT_FAILED", "Failed to create contract")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Contract created successfully", contract)
}

// UpdateContract edits a draft or active contract
// @Summary Update Contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Param request body dto.UpdateContractRequest true "Contract changes"
// @Success 200 {object} dto.APIResponse{data=dto.ContractDTO} "Contract updated"
// @Failure 400 {object} dto.APIResponse "Validation error or contract not editable"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Router /api/v1/contracts/{id} [put]
func (h *ContractHandler) UpdateContract(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateContractRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/:id")
	defer cancel()

	contract, err := h.contractFlow.UpdateContract(ctx, h.identity(c), id, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "UPDATE_CONTRACT_FAILED", "Failed to update contract")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contract updated successfully", contract)
}

// ApproveContract moves a draft contract to active
// @Summary Approve Contract
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} dto.APIResponse{data=dto.ContractDTO} "Contract approved"
// @Failure 400 {object} dto.APIResponse "Contract is not a draft"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Router /api/v1/contracts/{id}/approve [put]
func (h *ContractHandler) ApproveContract(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/:id/approve")
	defer cancel()

	contract, err := h.contractFlow.ApproveContract(ctx, h.identity(c), id, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "APPROVE_CONTRACT_FAILED", "Failed to approve contract")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contract approved successfully", contract)
}

// CompleteContract closes an active contract whose end date has passed
// @Summary Complete Contract
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} dto.APIResponse{data=dto.ContractDTO} "Contract completed"
// @Failure 400 {object} dto.APIResponse "Contract is not active or has not ended"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Router /api/v1/contracts/{id}/complete [put]
func (h *ContractHandler) CompleteContract(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/:id/complete")
	defer cancel()

	contract, err := h.contractFlow.CompleteContract(ctx, h.identity(c), id, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "COMPLETE_CONTRACT_FAILED", "Failed to complete contract")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contract completed successfully", contract)
}

// CancelContract cancels a draft or active contract
// @Summary Cancel Contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Param request body dto.CancelContractRequest false "Cancellation reason"
// @Success 200 {object} dto.APIResponse{data=dto.ContractDTO} "Contract cancelled"
// @Failure 400 {object} dto.APIResponse "Contract cannot be cancelled"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Router /api/v1/contracts/{id}/cancel [put]
func (h *ContractHandler) CancelContract(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}
	var req dto.CancelContractRequest
	if len(c.Body()) > 0 {
		if ok, err := h.bindJSON(c, &req); !ok {
			return err
		}
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/:id/cancel")
	defer cancel()

	contract, err := h.contractFlow.CancelContract(ctx, h.identity(c), id, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "CANCEL_CONTRACT_FAILED", "Failed to cancel contract")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contract cancelled successfully", contract)
}

// DeleteContract removes a draft or cancelled contract with its dependents
// @Summary Delete Contract
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} dto.APIResponse "Contract deleted"
// @Failure 400 {object} dto.APIResponse "Contract cannot be deleted"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Router /api/v1/contracts/{id} [delete]
func (h *ContractHandler) DeleteContract(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/contracts/:id")
	defer cancel()

	if err := h.contractFlow.DeleteContract(ctx, h.identity(c), id, h.metadata(c)); err != nil {
		return h.handleFlowError(c, err, "DELETE_CONTRACT_FAILED", "Failed to delete contract")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contract deleted successfully", nil)
}
