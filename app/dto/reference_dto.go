package dto

// RadioProgramDTO represents a programming slot
type RadioProgramDTO struct {
	ID          uint     `json:"id"`
	ProgramName string   `json:"program_name" example:"Manhã Total"`
	StartTime   string   `json:"start_time" example:"06:00"`
	EndTime     string   `json:"end_time" example:"09:00"`
	DaysOfWeek  []string `json:"days_of_week" example:"monday,tuesday"`
	LocutorID   *uint    `json:"locutor_id,omitempty"`
	IsActive    bool     `json:"is_active"`
}

// AdTypeDTO represents an ad format
type AdTypeDTO struct {
	ID              uint   `json:"id"`
	TypeName        string `json:"type_name" example:"Spot 30s"`
	DurationSeconds int    `json:"duration_seconds" example:"30"`
	IsActive        bool   `json:"is_active"`
}
