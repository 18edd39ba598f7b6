package dto

import (
	"time"
)

// UserDTO is the hash-free view of a user returned by the API
type UserDTO struct {
	ID          uint       `json:"id" example:"1"`
	Username    string     `json:"username" example:"maria_silva"`
	Email       string     `json:"email" example:"maria@radio.com"`
	FullName    string     `json:"full_name" example:"Maria Silva"`
	Role        string     `json:"role" example:"manager"`
	IsActive    bool       `json:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateUserRequest is used both by register and by admin user creation
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username" example:"maria_silva"`
	Email    string `json:"email" validate:"required,email,max=100" example:"maria@radio.com"`
	Password string `json:"password" validate:"required,min=6,max=100" example:"SecurePass123"`
	FullName string `json:"full_name" validate:"required,min=2,max=100" example:"Maria Silva"`
	Role     string `json:"role" validate:"required,oneof=admin manager announcer" example:"announcer"`
}

// UpdateUserRequest carries optional user changes made by an admin
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50,username"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin manager announcer"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ResetUserPasswordRequest sets a new password for another user
type ResetUserPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6,max=100"`
}

// ListUsersRequest represents user listing filters
type ListUsersRequest struct {
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
	Search *string `json:"search,omitempty"`
	Role   *string `json:"role,omitempty" validate:"omitempty,oneof=admin manager announcer"`
}

// ListUsersResponse represents a paginated list of users
type ListUsersResponse struct {
	Users      []UserDTO      `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
}
