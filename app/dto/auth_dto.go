package dto

import (
	"time"
)

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50" example:"maria_silva"`
	Password string `json:"password" validate:"required,min=1,max=100" example:"SecurePass123"`
}

// LoginResponse carries the issued access token and the authenticated user
type LoginResponse struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType string    `json:"token_type" example:"Bearer"`
	ExpiresIn int       `json:"expires_in" example:"86400"`
	ExpiresAt time.Time `json:"expires_at" example:"2026-01-15T16:30:00Z"`
	User      UserDTO   `json:"user"`
}

// ChangePasswordRequest represents a self-service password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required" example:"OldPass123"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=100" example:"NewPass456"`
}

// UpdateProfileRequest represents the fields a user may change on their own profile
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100" example:"Maria Silva"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=100" example:"maria@radio.com"`
}
