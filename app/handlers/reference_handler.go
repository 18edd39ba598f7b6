package handlers

import (
	businessflow "github.com/amirphl/radio-contracts/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ReferenceHandler serves the program grid and ad formats
type ReferenceHandler struct {
	baseHandler
	referenceFlow businessflow.ReferenceFlow
}

// NewReferenceHandler creates a new reference data handler
func NewReferenceHandler(referenceFlow businessflow.ReferenceFlow, v *validator.Validate) *ReferenceHandler {
	return &ReferenceHandler{
		baseHandler:   newBaseHandler(v),
		referenceFlow: referenceFlow,
	}
}

// ListPrograms lists active radio programs
// @Summary List Radio Programs
// @Tags Reference
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.RadioProgramDTO} "Programs retrieved"
// @Router /api/v1/programs [get]
func (h *ReferenceHandler) ListPrograms(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/programs")
	defer cancel()

	programs, err := h.referenceFlow.ListPrograms(ctx, h.identity(c))
	if err != nil {
		return h.handleFlowError(c, err, "LIST_PROGRAMS_FAILED", "Failed to list programs")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Programs retrieved successfully", programs)
}

// ListAdTypes lists active ad formats
// @Summary List Ad Types
// @Tags Reference
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.AdTypeDTO} "Ad types retrieved"
// @Router /api/v1/ad-types [get]
func (h *ReferenceHandler) ListAdTypes(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/ad-types")
	defer cancel()

	adTypes, err := h.referenceFlow.ListAdTypes(ctx, h.identity(c))
	if err != nil {
		return h.handleFlowError(c, err, "LIST_AD_TYPES_FAILED", "Failed to list ad types")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Ad types retrieved successfully", adTypes)
}
