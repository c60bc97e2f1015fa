// models/transaction.go
package models

import "time"

const TransactionTable = "tt_transactions"

// OverdueThreshold is how long a tool may stay out before it counts as
// overdue. Every read path derives overdue status through DeriveStatus so
// the rule lives in exactly one place; nothing ever writes "overdue" back.
const OverdueThreshold = 24 * time.Hour

// Transaction is one custody episode: opened on checkout, closed on checkin.
// A partial unique index on (tool_id) WHERE checkin_time IS NULL guarantees
// at most one open transaction per tool (see db.Migrate).
type Transaction struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	ToolID      string `gorm:"type:uuid;index;not null" json:"toolId"`
	PersonnelID string `gorm:"type:uuid;index;not null" json:"personnelId"`

	CheckoutTime time.Time  `gorm:"index;not null" json:"checkoutTime"`
	CheckinTime  *time.Time `gorm:"index" json:"checkinTime,omitempty"`
	LocationUsed string     `gorm:"size:100;not null" json:"locationUsed"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Transaction) TableName() string { return TransactionTable }

// Open reports whether this transaction still has custody of the tool.
func (t *Transaction) Open() bool { return t.CheckinTime == nil }

// DeriveStatus classifies an open transaction by elapsed time. This is the
// single overdue rule for the whole system.
func DeriveStatus(checkoutTime, now time.Time) string {
	if now.Sub(checkoutTime) >= OverdueThreshold {
		return ToolOverdue
	}
	return ToolCheckedOut
}

// HoursOut is whole hours elapsed since checkout, shown on dashboards as
// "Nh overdue".
func HoursOut(checkoutTime, now time.Time) int {
	h := int(now.Sub(checkoutTime).Hours())
	if h < 0 {
		return 0
	}
	return h
}

// LateReturn reports whether a closed transaction came back past the
// threshold.
func (t *Transaction) LateReturn() bool {
	return t.CheckinTime != nil && t.CheckinTime.Sub(t.CheckoutTime) >= OverdueThreshold
}
