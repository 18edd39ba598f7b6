package handlers

import (
	"github.com/amirphl/radio-contracts/app/dto"
	businessflow "github.com/amirphl/radio-contracts/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// UserHandler handles user administration requests
type UserHandler struct {
	baseHandler
	userFlow businessflow.UserFlow
}

// NewUserHandler creates a new user handler
func NewUserHandler(userFlow businessflow.UserFlow, v *validator.Validate) *UserHandler {
	return &UserHandler{
		baseHandler: newBaseHandler(v),
		userFlow:    userFlow,
	}
}

// ListUsers lists users with optional search and role filter
// @Summary List Users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search by username, full name or email"
// @Param role query string false "Filter by role" Enums(admin, manager, announcer)
// @Success 200 {object} dto.APIResponse{data=dto.ListUsersResponse} "Users retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Router /api/v1/users [get]
func (h *UserHandler) ListUsers(c fiber.Ctx) error {
	page, limit := pageParams(c)
	req := dto.ListUsersRequest{
		Page:   page,
		Limit:  limit,
		Search: optionalQuery(c, "search"),
		Role:   optionalQuery(c, "role"),
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/users")
	defer cancel()

	result, err := h.userFlow.ListUsers(ctx, h.identity(c), &req)
	if err != nil {
		return h.handleFlowError(c, err, "LIST_USERS_FAILED", "Failed to list users")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Users retrieved successfully", result)
}

// ListLocutors lists the active announcers
// @Summary List Announcers
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.UserDTO} "Announcers retrieved"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Router /api/v1/users/locutors [get]
func (h *UserHandler) ListLocutors(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/users/locutors")
	defer cancel()

	users, err := h.userFlow.ListLocutors(ctx, h.identity(c))
	if err != nil {
		return h.handleFlowError(c, err, "LIST_LOCUTORS_FAILED", "Failed to list announcers")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Announcers retrieved successfully", users)
}

// GetUser returns one user
// @Summary Get User
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "User retrieved"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) GetUser(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/users/:id")
	defer cancel()

	user, err := h.userFlow.GetUser(ctx, h.identity(c), id)
	if err != nil {
		return h.handleFlowError(c, err, "GET_USER_FAILED", "Failed to retrieve user")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "User retrieved successfully", user)
}

// CreateUser creates a user
// @Summary Create User
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "User data"
// @Success 201 {object} dto.APIResponse{data=dto.UserDTO} "User created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Username or email already exists"
// @Router /api/v1/users [post]
func (h *UserHandler) CreateUser(c fiber.Ctx) error {
	var req dto.CreateUserRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/users")
	defer cancel()

	user, err := h.userFlow.CreateUser(ctx, h.identity(c), &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "CREATE_USER_FAILED", "Failed to create user")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "User created successfully", user)
}

// UpdateUser changes user fields
// @Summary Update User
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "User changes"
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "User updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Failure 409 {object} dto.APIResponse "Username or email already exists"
// @Router /api/v1/users/{id} [put]
func (h *UserHandler) UpdateUser(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateUserRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/users/:id")
	defer cancel()

	user, err := h.userFlow.UpdateUser(ctx, h.identity(c), id, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "UPDATE_USER_FAILED", "Failed to update user")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "User updated successfully", user)
}

// DeleteUser deactivates a user
// @Summary Deactivate User
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse "User deactivated"
// @Failure 400 {object} dto.APIResponse "Cannot deactivate yourself"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/users/:id")
	defer cancel()

	if err := h.userFlow.DeleteUser(ctx, h.identity(c), id, h.metadata(c)); err != nil {
		return h.handleFlowError(c, err, "DELETE_USER_FAILED", "Failed to deactivate user")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "User deactivated successfully", nil)
}

// ResetPassword sets another user's password
// @Summary Reset User Password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.ResetUserPasswordRequest true "New password"
// @Success 200 {object} dto.APIResponse "Password reset"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /api/v1/users/{id}/reset-password [put]
func (h *UserHandler) ResetPassword(c fiber.Ctx) error {
	id, ok, err := h.pathID(c, "id")
	if !ok {
		return err
	}
	var req dto.ResetUserPasswordRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/users/:id/reset-password")
	defer cancel()

	if err := h.userFlow.ResetPassword(ctx, h.identity(c), id, &req, h.metadata(c)); err != nil {
		return h.handleFlowError(c, err, "RESET_PASSWORD_FAILED", "Failed to reset password")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Password reset successfully", nil)
}
