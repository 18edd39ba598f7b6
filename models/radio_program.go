package models

import (
	"time"

	"gorm.io/datatypes"
)

// Weekdays accepted in RadioProgram.DaysOfWeek
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// RadioProgram is a scheduled on-air slot, optionally owned by an announcer
type RadioProgram struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	ProgramName string                      `gorm:"size:100;not null" json:"program_name"`
	StartTime   datatypes.Time              `gorm:"type:time;not null" json:"start_time"`
	EndTime     datatypes.Time              `gorm:"type:time;not null" json:"end_time"`
	DaysOfWeek  datatypes.JSONSlice[string] `gorm:"type:jsonb;not null" json:"days_of_week"`
	LocutorID   *uint                       `gorm:"index:idx_radio_programs_locutor_id" json:"locutor_id,omitempty"`
	Locutor     *User                       `gorm:"foreignKey:LocutorID;references:ID" json:"-"`

	IsActive  *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (RadioProgram) TableName() string {
	return "radio_programs"
}

// RadioProgramFilter represents filter criteria for radio program queries
type RadioProgramFilter struct {
	ID        *uint
	LocutorID *uint
	IsActive  *bool
}
