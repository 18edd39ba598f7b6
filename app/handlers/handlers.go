// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/app/middleware"
	businessflow "github.com/amirphl/radio-contracts/business_flow"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/rs/zerolog/log"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	cnpjPattern     = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)
)

type validationRule struct {
	tag string
	fn  validator.Func
}

var customRules = []validationRule{
	{"username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}},
	{"cnpj", func(fl validator.FieldLevel) bool {
		return cnpjPattern.MatchString(fl.Field().String())
	}},
	{"date", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseDate(fl.Field().String())
		return err == nil
	}},
}

// NewValidator returns a validator with the custom rules used by request DTOs.
// It panics when a rule cannot be registered, since requests would otherwise
// fail validation at runtime with an unknown tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := registerRules(v, customRules); err != nil {
		panic(err)
	}
	return v
}

func registerRules(v *validator.Validate, rules []validationRule) error {
	for _, rule := range rules {
		if err := v.RegisterValidation(rule.tag, rule.fn); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", rule.tag, err)
		}
	}
	return nil
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "username":
		return err.Field() + " may contain only letters, digits and underscores"
	case "cnpj":
		return err.Field() + " must use the format 00.000.000/0000-00"
	case "date":
		return err.Field() + " must use the format YYYY-MM-DD"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// baseHandler carries the response helpers shared by every handler
type baseHandler struct {
	validator *validator.Validate
}

func newBaseHandler(v *validator.Validate) baseHandler {
	if v == nil {
		v = NewValidator()
	}
	return baseHandler{validator: v}
}

// ErrorResponse standard JSON error
func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// bindJSON parses and validates a JSON body, writing the 400 response itself on failure
func (h *baseHandler) bindJSON(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	return h.validate(c, req)
}

func (h *baseHandler) validate(c fiber.Ctx, req any) (bool, error) {
	if err := h.validator.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		messages := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			messages = append(messages, getValidationErrorMessage(fe))
		}
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", messages)
	}
	return true, nil
}

// pathID parses a positive numeric route parameter
func (h *baseHandler) pathID(c fiber.Ctx, name string) (uint, bool, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid "+name, "VALIDATION_ERROR", nil)
	}
	return uint(id), true, nil
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.RequestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx, cancel
}

func (h *baseHandler) metadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestID(c))
	return metadata
}

func requestID(c fiber.Ctx) string {
	if id := requestid.FromContext(c); id != "" {
		return id
	}
	return c.Get("X-Request-ID")
}

// identity returns the authenticated caller; routes without Authenticate get nil
func (h *baseHandler) identity(c fiber.Ctx) *businessflow.Identity {
	identity, _ := middleware.GetIdentityFromContext(c)
	return identity
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is ordered: the first match wins
var errorMappings = []errorMapping{
	{businessflow.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password"},
	{businessflow.ErrUnauthenticated, fiber.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "Authentication required"},
	{businessflow.ErrInactiveOrUnknownUser, fiber.StatusUnauthorized, "USER_INACTIVE_OR_NOT_FOUND", "User not found or inactive"},
	{businessflow.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "Insufficient permissions"},
	{businessflow.ErrCapabilityNotSupported, fiber.StatusForbidden, "FORBIDDEN", "Insufficient permissions"},
	{businessflow.ErrInvalidReference, fiber.StatusNotFound, "INVALID_REFERENCE", "Referenced client, program or ad type does not exist or is inactive"},
	{businessflow.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{businessflow.ErrClientNotFound, fiber.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found"},
	{businessflow.ErrContractNotFound, fiber.StatusNotFound, "CONTRACT_NOT_FOUND", "Contract not found"},
	{businessflow.ErrUsernameAlreadyExists, fiber.StatusConflict, "USERNAME_EXISTS", "Username already exists"},
	{businessflow.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS", "Email already exists"},
	{businessflow.ErrClientEmailAlreadyExists, fiber.StatusConflict, "CLIENT_EMAIL_EXISTS", "A client with this email already exists"},
	{businessflow.ErrCNPJAlreadyExists, fiber.StatusConflict, "CNPJ_EXISTS", "A client with this CNPJ already exists"},
	{businessflow.ErrContractNotEnded, fiber.StatusBadRequest, "CONTRACT_NOT_ENDED", "Contract end date has not been reached"},
	{businessflow.ErrInvalidContractState, fiber.StatusBadRequest, "INVALID_CONTRACT_STATE", "Operation not allowed in the current contract status"},
	{businessflow.ErrCannotDeleteSelf, fiber.StatusBadRequest, "CANNOT_DELETE_SELF", "You cannot deactivate your own account"},
	{businessflow.ErrClientHasOpenContracts, fiber.StatusBadRequest, "CLIENT_HAS_OPEN_CONTRACTS", "Client has draft or active contracts"},
}

// handleFlowError maps business errors to HTTP responses; anything unknown becomes a generic 500
func (h *baseHandler) handleFlowError(c fiber.Ctx, err error, failureCode, failureMessage string) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return h.ErrorResponse(c, m.status, m.message, m.code, nil)
		}
	}
	if businessflow.IsValidation(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", []string{validationMessage(err)})
	}

	log.Error().Err(err).Str("request_id", requestID(c)).Str("path", c.Path()).Msg(failureMessage)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, failureMessage, failureCode, nil)
}

// validationMessage returns the message of the validation sentinel inside err
func validationMessage(err error) string {
	for _, target := range []error{
		businessflow.ErrInvalidRole,
		businessflow.ErrInvalidDateRange,
		businessflow.ErrInvalidDate,
		businessflow.ErrInvalidTotalSpots,
		businessflow.ErrInvalidPricePerSpot,
		businessflow.ErrDiscountOutOfRange,
		businessflow.ErrInvalidStatus,
		businessflow.ErrInvalidPaymentStatus,
		businessflow.ErrNoFieldsToUpdate,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

// pageParams reads page and limit; malformed values fall back to zero and are clamped by the flows
func pageParams(c fiber.Ctx) (int, int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(utils.DefaultLimit)))
	return page, limit
}

func optionalQuery(c fiber.Ctx, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

func optionalUintQuery(c fiber.Ctx, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a positive integer", key)
	}
	id := uint(v)
	return &id, nil
}
