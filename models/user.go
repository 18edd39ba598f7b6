// Package models contains domain entities and business models for the contract management system
package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// UserRole represents the access role of a user
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleManager   UserRole = "manager"
	RoleAnnouncer UserRole = "announcer"
)

// String returns the string representation of the role
func (r UserRole) String() string {
	return string(r)
}

// Valid checks if the role is valid
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAnnouncer:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for UserRole
func (r *UserRole) Scan(value any) error {
	if value == nil {
		*r = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*r = UserRole(v)
	case []byte:
		*r = UserRole(string(v))
	default:
		return fmt.Errorf("cannot scan %T into UserRole", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for UserRole
func (r UserRole) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid UserRole: %s", r)
	}
	return string(r), nil
}

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"size:50;not null;uniqueIndex:uk_users_username" json:"username"`
	Email        string   `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"` // Never serialize password hash
	FullName     string   `gorm:"size:100;not null" json:"full_name"`
	Role         UserRole `gorm:"type:varchar(20);not null;index:idx_users_role" json:"role"`

	IsActive    *bool      `gorm:"default:true;index:idx_users_is_active" json:"is_active"`
	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID        *uint
	Username  *string
	Email     *string
	Role      *UserRole
	IsActive  *bool
	Search    *string
	ExcludeID *uint
}
