package models

import "time"

// AdType describes an ad format sold in contracts
type AdType struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TypeName        string    `gorm:"size:50;not null" json:"type_name"`
	DurationSeconds int       `gorm:"not null" json:"duration_seconds"`
	IsActive        *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (AdType) TableName() string {
	return "ad_types"
}

// AdTypeFilter represents filter criteria for ad type queries
type AdTypeFilter struct {
	ID       *uint
	IsActive *bool
}
