package handlers

import (
	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/app/middleware"
	businessflow "github.com/amirphl/radio-contracts/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Login(c fiber.Ctx) error
	Register(c fiber.Ctx) error
	GetProfile(c fiber.Ctx) error
	UpdateProfile(c fiber.Ctx) error
	ChangePassword(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	baseHandler
	authFlow businessflow.AuthFlow
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authFlow businessflow.AuthFlow, v *validator.Validate) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(v),
		authFlow:    authFlow,
	}
}

// Login handles username/password login
// @Summary User Login
// @Description Authenticate with username and password and receive a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/login")
	defer cancel()

	result, err := h.authFlow.Login(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "LOGIN_FAILED", "Login failed")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Register creates a user account; only admins may call it
// @Summary Register User
// @Description Create a new user account (admin only)
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "User data"
// @Success 201 {object} dto.APIResponse{data=dto.UserDTO} "User created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 409 {object} dto.APIResponse "Username or email already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.CreateUserRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/register")
	defer cancel()

	user, err := h.authFlow.Register(ctx, h.identity(c), &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "REGISTRATION_FAILED", "Registration failed")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "User registered successfully", user)
}

// GetProfile returns the caller's own account
// @Summary Get Profile
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "Profile retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/profile")
	defer cancel()

	user, err := h.authFlow.GetProfile(ctx, h.identity(c))
	if err != nil {
		return h.handleFlowError(c, err, "GET_PROFILE_FAILED", "Failed to retrieve profile")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Profile retrieved successfully", user)
}

// UpdateProfile changes the caller's full name or email
// @Summary Update Profile
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile changes"
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "Profile updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 409 {object} dto.APIResponse "Email already exists"
// @Router /api/v1/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/profile")
	defer cancel()

	user, err := h.authFlow.UpdateProfile(ctx, h.identity(c), &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "UPDATE_PROFILE_FAILED", "Failed to update profile")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Profile updated successfully", user)
}

// ChangePassword replaces the caller's password and revokes the current token
// @Summary Change Password
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse "Password changed"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Current password is wrong"
// @Router /api/v1/auth/change-password [put]
func (h *AuthHandler) ChangePassword(c fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/change-password")
	defer cancel()

	claims, _ := middleware.GetTokenClaimsFromContext(c)
	if err := h.authFlow.ChangePassword(ctx, h.identity(c), claims, &req, h.metadata(c)); err != nil {
		return h.handleFlowError(c, err, "CHANGE_PASSWORD_FAILED", "Failed to change password")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Password changed successfully. Please log in again.", nil)
}

// Logout revokes the presented token
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/auth/logout")
	defer cancel()

	claims, _ := middleware.GetTokenClaimsFromContext(c)
	if err := h.authFlow.Logout(ctx, h.identity(c), claims, h.metadata(c)); err != nil {
		return h.handleFlowError(c, err, "LOGOUT_FAILED", "Logout failed")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Logged out successfully", nil)
}
