// Package models contains domain entities and business models for the contract management system
package models

import (
	"time"
)

type AuditLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       *uint     `gorm:"index:idx_audit_user_id" json:"user_id,omitempty"`
	User         *User     `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Action       string    `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	Description  *string   `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string   `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent    *string   `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string   `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Success      *bool     `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionLoginSuccess       = "login_success"
	AuditActionLoginFailed        = "login_failed"
	AuditActionLogout             = "logout"
	AuditActionPasswordChanged    = "password_changed"
	AuditActionPasswordReset      = "password_reset"
	AuditActionProfileUpdated     = "profile_updated"
	AuditActionUserCreated        = "user_created"
	AuditActionUserUpdated        = "user_updated"
	AuditActionAccountDeactivated = "account_deactivated"
	AuditActionClientCreated      = "client_created"
	AuditActionClientUpdated      = "client_updated"
	AuditActionClientDeactivated  = "client_deactivated"
	AuditActionContractCreated    = "contract_created"
	AuditActionContractUpdated    = "contract_updated"
	AuditActionContractApproved   = "contract_approved"
	AuditActionContractCompleted  = "contract_completed"
	AuditActionContractCancelled  = "contract_cancelled"
	AuditActionContractDeleted    = "contract_deleted"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	UserID        *uint
	Action        *string
	Success       *bool
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}

func (a *AuditLog) IsSecurityEvent() bool {
	securityActions := map[string]bool{
		AuditActionLoginSuccess:       true,
		AuditActionLoginFailed:        true,
		AuditActionPasswordChanged:    true,
		AuditActionPasswordReset:      true,
		AuditActionAccountDeactivated: true,
	}
	return securityActions[a.Action]
}
