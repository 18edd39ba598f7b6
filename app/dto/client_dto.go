package dto

import (
	"time"
)

// ClientDTO represents an advertising client
type ClientDTO struct {
	ID          uint      `json:"id" example:"1"`
	CompanyName string    `json:"company_name" example:"Padaria Central"`
	ContactName string    `json:"contact_name" example:"João Souza"`
	Email       string    `json:"email" example:"contato@padaria.com"`
	Phone       *string   `json:"phone,omitempty" example:"(11) 99999-0000"`
	CNPJ        *string   `json:"cnpj,omitempty" example:"12.345.678/0001-90"`
	Address     *string   `json:"address,omitempty"`
	IsActive    bool      `json:"is_active" example:"true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClientDetailResponse is a client with the contracts visible to the caller
type ClientDetailResponse struct {
	Client    ClientDTO     `json:"client"`
	Contracts []ContractDTO `json:"contracts"`
}

// CreateClientRequest represents the payload to register a client
type CreateClientRequest struct {
	CompanyName string  `json:"company_name" validate:"required,min=2,max=100"`
	ContactName string  `json:"contact_name" validate:"required,min=2,max=100"`
	Email       string  `json:"email" validate:"required,email,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	CNPJ        *string `json:"cnpj,omitempty" validate:"omitempty,cnpj"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// UpdateClientRequest carries optional client changes
type UpdateClientRequest struct {
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,min=2,max=100"`
	ContactName *string `json:"contact_name,omitempty" validate:"omitempty,min=2,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	CNPJ        *string `json:"cnpj,omitempty" validate:"omitempty,cnpj"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// ListClientsRequest represents client listing filters
type ListClientsRequest struct {
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
	Search *string `json:"search,omitempty"`
}

// ListClientsResponse represents a paginated list of clients
type ListClientsResponse struct {
	Clients    []ClientDTO    `json:"clients"`
	Pagination PaginationInfo `json:"pagination"`
}
