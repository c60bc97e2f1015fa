package models

import "time"

const PersonnelTable = "tt_personnel"

const (
	RoleAdmin       = "admin"
	RoleStoreperson = "storeperson"
	RoleWorker      = "worker"
)

// Personnel is anyone who can hold a tool. The barcode is the badge on the
// hardhat sticker and doubles as the login credential.
type Personnel struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	Barcode string `gorm:"size:120;uniqueIndex;not null" json:"barcode"`
	Name    string `gorm:"size:255;not null" json:"name"`
	Role    string `gorm:"size:20;not null;default:'worker'" json:"role"`
	Phone   string `gorm:"size:45" json:"phone,omitempty"`

	Active       bool       `gorm:"not null;default:true" json:"active"`
	LastActiveAt *time.Time `gorm:"index" json:"lastActiveAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Personnel) TableName() string { return PersonnelTable }
