package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SpotSchedule is one planned airing of a contract's ad
type SpotSchedule struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ContractID    uint           `gorm:"not null;index:idx_spot_schedule_contract_id" json:"contract_id"`
	ScheduledDate datatypes.Date `gorm:"type:date;not null" json:"scheduled_date"`
	ScheduledTime datatypes.Time `gorm:"type:time;not null" json:"scheduled_time"`
	Status        string         `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	AiredAt       *time.Time     `json:"aired_at,omitempty"`
	Notes         *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (SpotSchedule) TableName() string {
	return "spot_schedule"
}

// Payment is an installment received against a contract
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ContractID    uint            `gorm:"not null;index:idx_payments_contract_id" json:"contract_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentDate   datatypes.Date  `gorm:"type:date;not null" json:"payment_date"`
	PaymentMethod *string         `gorm:"size:50" json:"payment_method,omitempty"`
	Notes         *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy     uint            `gorm:"not null" json:"created_by"`
	Creator       *User           `gorm:"foreignKey:CreatedBy;references:ID" json:"-"`
	CreatedAt     time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// ContractFile is an attachment uploaded to a contract
type ContractFile struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ContractID uint      `gorm:"not null;index:idx_contract_files_contract_id" json:"contract_id"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FilePath   string    `gorm:"size:500;not null" json:"file_path"`
	FileSize   int64     `gorm:"not null" json:"file_size"`
	MimeType   *string   `gorm:"size:100" json:"mime_type,omitempty"`
	UploadedBy uint      `gorm:"not null" json:"uploaded_by"`
	Uploader   *User     `gorm:"foreignKey:UploadedBy;references:ID" json:"-"`
	CreatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (ContractFile) TableName() string {
	return "contract_files"
}
