// models/tool.go
package models

import "time"

const ToolTable = "tt_tools"
const ToolTypeTable = "tt_tool_types"
const AreaTable = "tt_areas"

// Stored tool statuses. "overdue" is never written to the tools table,
// it is derived at read time from the open transaction (see DeriveStatus).
const (
	ToolAvailable  = "available"
	ToolCheckedOut = "checked_out"
	ToolOverdue    = "overdue"
	ToolMissing    = "missing"
)

type Tool struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Barcode     string `gorm:"size:120;uniqueIndex;not null" json:"barcode"`
	Description string `gorm:"size:200;not null" json:"description"`
	Type        string `gorm:"size:100" json:"type"`

	Status   string  `gorm:"size:20;not null;default:'available'" json:"status"`
	HolderID *string `gorm:"type:uuid;index" json:"holderId,omitempty"` // set iff an open transaction exists
	AreaID   *uint   `gorm:"index" json:"areaId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToolType is a static dictionary row (Hand Tool, Power Tool, ...).
type ToolType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// Area is a static named location on site, referenced by tools and
// transactions.
type Area struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (Tool) TableName() string     { return ToolTable }
func (ToolType) TableName() string { return ToolTypeTable }
func (Area) TableName() string     { return AreaTable }
