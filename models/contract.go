package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ContractStatus represents the lifecycle state of a contract
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// String returns the string representation of the status
func (s ContractStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusActive,
		ContractStatusCompleted, ContractStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no transition may leave this status
func (s ContractStatus) Terminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusCancelled
}

// Scan implements the sql.Scanner interface for ContractStatus
func (s *ContractStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ContractStatus(v)
	case []byte:
		*s = ContractStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ContractStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ContractStatus
func (s ContractStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ContractStatus: %s", s)
	}
	return string(s), nil
}

// PaymentStatus tracks how much of a contract has been paid
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// String returns the string representation of the payment status
func (s PaymentStatus) String() string {
	return string(s)
}

// Valid checks if the payment status is valid
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PaymentStatus
func (s *PaymentStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PaymentStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PaymentStatus
func (s PaymentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid PaymentStatus: %s", s)
	}
	return string(s), nil
}

type Contract struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ContractNumber string `gorm:"size:20;not null;uniqueIndex:uk_contracts_contract_number" json:"contract_number"`

	ClientID  uint          `gorm:"not null;index:idx_contracts_client_id" json:"client_id"`
	Client    *Client       `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	ProgramID uint          `gorm:"not null;index:idx_contracts_program_id" json:"program_id"`
	Program   *RadioProgram `gorm:"foreignKey:ProgramID;references:ID" json:"program,omitempty"`
	AdTypeID  uint          `gorm:"not null" json:"ad_type_id"`
	AdType    *AdType       `gorm:"foreignKey:AdTypeID;references:ID" json:"ad_type,omitempty"`

	Title       string         `gorm:"size:200;not null" json:"title"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	StartDate   datatypes.Date `gorm:"type:date;not null" json:"start_date"`
	EndDate     datatypes.Date `gorm:"type:date;not null;index:idx_contracts_end_date" json:"end_date"`

	TotalSpots         int             `gorm:"not null" json:"total_spots"`
	PricePerSpot       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_per_spot"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percentage"`
	TotalValue         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_value"`
	DiscountAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount_amount"`
	FinalValue         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"final_value"`

	Status        ContractStatus `gorm:"type:varchar(20);not null;default:'draft';index:idx_contracts_status" json:"status"`
	PaymentStatus PaymentStatus  `gorm:"type:varchar(20);not null;default:'pending';index:idx_contracts_payment_status" json:"payment_status"`

	CreatedBy          uint       `gorm:"not null" json:"created_by"`
	Creator            *User      `gorm:"foreignKey:CreatedBy;references:ID" json:"-"`
	ApprovedBy         *uint      `json:"approved_by,omitempty"`
	Approver           *User      `gorm:"foreignKey:ApprovedBy;references:ID" json:"-"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason *string    `gorm:"type:text" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_contracts_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}

// ContractFilter represents filter criteria for contract queries
type ContractFilter struct {
	ID            *uint
	ClientID      *uint
	ProgramID     *uint
	Status        *ContractStatus
	Statuses      []ContractStatus
	PaymentStatus *PaymentStatus
	// LocutorID restricts results to contracts whose program belongs to this announcer
	LocutorID     *uint
	Search        *string
	NumberPrefix  *string
	EndDateBefore *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ContractStats aggregates counts and values over a set of contracts
type ContractStats struct {
	TotalContracts     int64           `json:"total_contracts"`
	DraftContracts     int64           `json:"draft_contracts"`
	ActiveContracts    int64           `json:"active_contracts"`
	CompletedContracts int64           `json:"completed_contracts"`
	CancelledContracts int64           `json:"cancelled_contracts"`
	TotalValue         decimal.Decimal `json:"total_value"`
	FinalValue         decimal.Decimal `json:"final_value"`
	PaidValue          decimal.Decimal `json:"paid_value"`
	PendingValue       decimal.Decimal `json:"pending_value"`
}

// MonthlyContractStats is one month of the rolling contract breakdown
type MonthlyContractStats struct {
	Month          string          `json:"month"`
	ContractsCount int64           `json:"contracts_count"`
	TotalValue     decimal.Decimal `json:"total_value"`
}
