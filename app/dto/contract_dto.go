package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractDTO represents a contract with the names of its client, program and ad type
type ContractDTO struct {
	ID                 uint            `json:"id" example:"1"`
	ContractNumber     string          `json:"contract_number" example:"CT20260001"`
	ClientID           uint            `json:"client_id" example:"1"`
	ClientName         string          `json:"client_name,omitempty" example:"Padaria Central"`
	ProgramID          uint            `json:"program_id" example:"1"`
	ProgramName        string          `json:"program_name,omitempty" example:"Manhã Total"`
	AdTypeID           uint            `json:"ad_type_id" example:"1"`
	AdTypeName         string          `json:"ad_type_name,omitempty" example:"Spot 30s"`
	DurationSeconds    int             `json:"duration_seconds,omitempty" example:"30"`
	Title              string          `json:"title" example:"Campanha de Natal"`
	Description        *string         `json:"description,omitempty"`
	StartDate          string          `json:"start_date" example:"2026-01-01"`
	EndDate            string          `json:"end_date" example:"2026-01-31"`
	TotalSpots         int             `json:"total_spots" example:"60"`
	PricePerSpot       decimal.Decimal `json:"price_per_spot" swaggertype:"string" example:"50.00"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" swaggertype:"string" example:"10.00"`
	TotalValue         decimal.Decimal `json:"total_value" swaggertype:"string" example:"3000.00"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" swaggertype:"string" example:"300.00"`
	FinalValue         decimal.Decimal `json:"final_value" swaggertype:"string" example:"2700.00"`
	Status             string          `json:"status" example:"draft"`
	PaymentStatus      string          `json:"payment_status" example:"pending"`
	CreatedBy          uint            `json:"created_by" example:"1"`
	ApprovedBy         *uint           `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// SpotDTO represents a scheduled airing
type SpotDTO struct {
	ID            uint       `json:"id"`
	ScheduledDate string     `json:"scheduled_date" example:"2026-01-02"`
	ScheduledTime string     `json:"scheduled_time" example:"07:30"`
	Status        string     `json:"status" example:"scheduled"`
	AiredAt       *time.Time `json:"aired_at,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// PaymentDTO represents a payment received against a contract
type PaymentDTO struct {
	ID            uint            `json:"id"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"1350.00"`
	PaymentDate   string          `json:"payment_date" example:"2026-01-10"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ContractFileDTO represents an attachment of a contract
type ContractFileDTO struct {
	ID        uint      `json:"id"`
	FileName  string    `json:"file_name"`
	FileSize  int64     `json:"file_size"`
	MimeType  *string   `json:"mime_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ContractDetailResponse is a contract with its dependents
type ContractDetailResponse struct {
	Contract ContractDTO       `json:"contract"`
	Spots    []SpotDTO         `json:"spots"`
	Payments []PaymentDTO      `json:"payments"`
	Files    []ContractFileDTO `json:"files"`
}

// CreateContractRequest represents the payload to create a draft contract
type CreateContractRequest struct {
	ClientID           uint             `json:"client_id" validate:"required"`
	ProgramID          uint             `json:"program_id" validate:"required"`
	AdTypeID           uint             `json:"ad_type_id" validate:"required"`
	Title              string           `json:"title" validate:"required,min=5,max=200"`
	Description        *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	StartDate          string           `json:"start_date" validate:"required,date" example:"2026-01-01"`
	EndDate            string           `json:"end_date" validate:"required,date" example:"2026-01-31"`
	TotalSpots         int              `json:"total_spots" validate:"required,min=1"`
	PricePerSpot       *decimal.Decimal `json:"price_per_spot" validate:"required" swaggertype:"string"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty" swaggertype:"string"`
}

// UpdateContractRequest carries optional contract changes; status is changed only by transitions
type UpdateContractRequest struct {
	ClientID           *uint            `json:"client_id,omitempty"`
	ProgramID          *uint            `json:"program_id,omitempty"`
	AdTypeID           *uint            `json:"ad_type_id,omitempty"`
	Title              *string          `json:"title,omitempty" validate:"omitempty,min=5,max=200"`
	Description        *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	StartDate          *string          `json:"start_date,omitempty" validate:"omitempty,date"`
	EndDate            *string          `json:"end_date,omitempty" validate:"omitempty,date"`
	TotalSpots         *int             `json:"total_spots,omitempty" validate:"omitempty,min=1"`
	PricePerSpot       *decimal.Decimal `json:"price_per_spot,omitempty" swaggertype:"string"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty" swaggertype:"string"`
	PaymentStatus      *string          `json:"payment_status,omitempty" validate:"omitempty,oneof=pending partial paid overdue"`
}

// CancelContractRequest carries an optional cancellation reason
type CancelContractRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ListContractsRequest represents contract listing filters
type ListContractsRequest struct {
	Page          int     `json:"page"`
	Limit         int     `json:"limit"`
	Search        *string `json:"search,omitempty"`
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=draft active completed cancelled"`
	PaymentStatus *string `json:"payment_status,omitempty" validate:"omitempty,oneof=pending partial paid overdue"`
	ClientID      *uint   `json:"client_id,omitempty"`
	ProgramID     *uint   `json:"program_id,omitempty"`
}

// ListContractsResponse represents a paginated list of contracts
type ListContractsResponse struct {
	Contracts  []ContractDTO  `json:"contracts"`
	Pagination PaginationInfo `json:"pagination"`
}

// ContractStatsDTO aggregates counts and values of a set of contracts
type ContractStatsDTO struct {
	TotalContracts     int64           `json:"total_contracts"`
	DraftContracts     int64           `json:"draft_contracts"`
	ActiveContracts    int64           `json:"active_contracts"`
	CompletedContracts int64           `json:"completed_contracts"`
	CancelledContracts int64           `json:"cancelled_contracts"`
	TotalValue         decimal.Decimal `json:"total_value" swaggertype:"string"`
	FinalValue         decimal.Decimal `json:"final_value" swaggertype:"string"`
	PaidValue          decimal.Decimal `json:"paid_value" swaggertype:"string"`
	PendingValue       decimal.Decimal `json:"pending_value" swaggertype:"string"`
}

// MonthlyStatsDTO is one month of the twelve-month breakdown
type MonthlyStatsDTO struct {
	Month          string          `json:"month" example:"2026-01"`
	ContractsCount int64           `json:"contracts_count"`
	TotalValue     decimal.Decimal `json:"total_value" swaggertype:"string"`
}

// ContractStatsResponse is returned by both contract and client statistics
type ContractStatsResponse struct {
	Stats   ContractStatsDTO  `json:"stats"`
	Monthly []MonthlyStatsDTO `json:"monthly"`
}

// ExportFile is a generated spreadsheet ready to be sent
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}
