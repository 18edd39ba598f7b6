// Package models contains domain entities and business models for the contract management system
package models

import "time"

// Client is an advertiser that owns contracts
type Client struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	CompanyName string  `gorm:"size:100;not null;index:idx_clients_company_name" json:"company_name"`
	ContactName string  `gorm:"size:100;not null" json:"contact_name"`
	Email       string  `gorm:"size:255;not null" json:"email"`
	Phone       *string `gorm:"size:20" json:"phone,omitempty"`
	CNPJ        *string `gorm:"column:cnpj;size:18" json:"cnpj,omitempty"`
	Address     *string `gorm:"type:text" json:"address,omitempty"`

	IsActive  *bool     `gorm:"default:true;index:idx_clients_is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// ClientFilter represents filter criteria for client queries
type ClientFilter struct {
	ID        *uint
	Email     *string
	CNPJ      *string
	IsActive  *bool
	Search    *string
	ExcludeID *uint
}
