package models

import "time"

const LostTimeTable = "tt_lost_time_logs"

// Enumerated causes for lost time.
const (
	LostReasonToolMissing = "tool_missing"
	LostReasonToolDamaged = "tool_damaged"
	LostReasonWaiting     = "waiting_for_tool"
	LostReasonOther       = "other"
)

// LostTimeLog records minutes a person lost to a tooling problem.
// Append-only: rows are never updated or deleted.
type LostTimeLog struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	PersonnelID string  `gorm:"type:uuid;index;not null" json:"personnelId"`
	ToolID      *string `gorm:"type:uuid;index" json:"toolId,omitempty"`

	Reason      string `gorm:"size:40;not null" json:"reason"`
	MinutesLost int    `gorm:"not null" json:"minutesLost"`
	Comment     string `gorm:"size:500" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (LostTimeLog) TableName() string { return LostTimeTable }
