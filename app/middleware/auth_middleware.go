// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/app/services"
	businessflow "github.com/amirphl/radio-contracts/business_flow"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

const (
	localIdentity    = "identity"
	localUserID      = "user_id"
	localTokenClaims = "token_claims"
	localRequestID   = "request_id"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	sessionFlow businessflow.SessionFlow
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(sessionFlow businessflow.SessionFlow) *AuthMiddleware {
	return &AuthMiddleware{
		sessionFlow: sessionFlow,
	}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}

// Authenticate validates the bearer token and resolves the current user
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required", "MISSING_AUTHORIZATION_HEADER")
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT")
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return unauthorized(c, "Access token is required", "MISSING_ACCESS_TOKEN")
		}

		ctx, cancel := context.WithTimeout(context.Background(), utils.RequestTimeout)
		defer cancel()

		identity, claims, err := m.sessionFlow.Resolve(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				return unauthorized(c, "Access token has expired", "TOKEN_EXPIRED")
			case errors.Is(err, services.ErrTokenRevoked):
				return unauthorized(c, "Access token has been revoked", "TOKEN_REVOKED")
			case errors.Is(err, services.ErrTokenInvalid):
				return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
			case businessflow.IsInactiveOrUnknownUser(err):
				return unauthorized(c, "User not found or inactive", "USER_INACTIVE_OR_NOT_FOUND")
			case businessflow.IsUnauthenticated(err):
				return unauthorized(c, "Access token is required", "MISSING_ACCESS_TOKEN")
			default:
				log.Error().Err(err).Str("path", c.Path()).Msg("session resolution failed")
				return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
					Success: false,
					Message: "Internal server error",
					Error:   dto.ErrorDetail{Code: "INTERNAL_ERROR"},
				})
			}
		}

		c.Locals(localIdentity, identity)
		c.Locals(localUserID, identity.ID)
		c.Locals(localTokenClaims, claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals(localRequestID, requestID)
		}

		return c.Next()
	}
}

// RequireCapability rejects callers whose role is not granted op
func RequireCapability(op businessflow.Capability) fiber.Handler {
	return func(c fiber.Ctx) error {
		identity, _ := GetIdentityFromContext(c)
		if err := businessflow.AuthorizeCapability(identity, op); err != nil {
			if businessflow.IsUnauthenticated(err) {
				return unauthorized(c, "Authentication required", "AUTHENTICATION_REQUIRED")
			}
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Insufficient permissions",
				Error:   dto.ErrorDetail{Code: "FORBIDDEN"},
			})
		}
		return c.Next()
	}
}

// GetIdentityFromContext extracts the resolved user from the request context
func GetIdentityFromContext(c fiber.Ctx) (*businessflow.Identity, bool) {
	identity, ok := c.Locals(localIdentity).(*businessflow.Identity)
	return identity, ok && identity != nil
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(c fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(localUserID).(uint)
	return userID, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals(localTokenClaims).(*services.TokenClaims)
	return claims, ok
}
