// db/repo_custody.go
package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tooltrack/models"
)

// CheckoutTool hands a tool to a person. The whole unit is atomic: the
// status flip and the new open transaction commit together or not at all.
//
// Concurrency: the status update is a compare-and-set keyed on
// status = 'available', so two racing checkouts on the same barcode resolve
// to exactly one winner; the loser gets ErrAlreadyCheckedOut. The partial
// unique index on open transactions backstops the same invariant at the
// storage layer.
func (r *Repo) CheckoutTool(ctx context.Context, toolBarcode, personnelBarcode, area string) (*models.Transaction, error) {
	var txn *models.Transaction
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tool, err := findToolByBarcode(tx, toolBarcode)
		if err != nil {
			return err
		}
		person, err := findPersonnelByBarcode(tx, personnelBarcode)
		if err != nil {
			return err
		}
		loc, err := findAreaByName(tx, area)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Tool{}).
			Where("id = ? AND status = ?", tool.ID, models.ToolAvailable).
			Updates(map[string]any{
				"status":    models.ToolCheckedOut,
				"holder_id": person.ID,
				"area_id":   loc.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCheckedOut
		}

		t := &models.Transaction{
			ID:           uuid.NewString(),
			ToolID:       tool.ID,
			PersonnelID:  person.ID,
			CheckoutTime: time.Now().UTC(),
			LocationUsed: loc.Name,
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		txn = t
		return nil
	})
	return txn, err
}

// CheckinTool closes the tool's open transaction and makes it available
// again. Only the current holder may return a tool unless override is set
// (storeperson override; role enforcement happens at the API layer).
// A tool marked missing that still has an open transaction is recovered by
// a successful checkin.
func (r *Repo) CheckinTool(ctx context.Context, toolBarcode, personnelBarcode string, override bool) (*models.Transaction, error) {
	var txn *models.Transaction
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tool, err := findToolByBarcode(tx, toolBarcode)
		if err != nil {
			return err
		}
		person, err := findPersonnelByBarcode(tx, personnelBarcode)
		if err != nil {
			return err
		}

		var open models.Transaction
		if err := tx.Where("tool_id = ? AND checkin_time IS NULL", tool.ID).
			First(&open).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotCheckedOut
			}
			return err
		}
		if open.PersonnelID != person.ID && !override {
			return ErrOwnershipMismatch
		}

		now := time.Now().UTC()
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND checkin_time IS NULL", open.ID).
			Update("checkin_time", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotCheckedOut
		}

		if err := tx.Model(&models.Tool{}).
			Where("id = ?", tool.ID).
			Updates(map[string]any{
				"status":    models.ToolAvailable,
				"holder_id": nil,
			}).Error; err != nil {
			return err
		}

		open.CheckinTime = &now
		txn = &open
		return nil
	})
	return txn, err
}

// Ownership is what the checkin page asks before it lets a scan proceed.
type Ownership struct {
	ToolID       string  `json:"toolId"`
	Barcode      string  `json:"barcode"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	OwnerBarcode *string `json:"ownerBarcode"`
	OwnerName    *string `json:"ownerName,omitempty"`
}

// VerifyOwnership reports who currently holds a tool. OwnerBarcode is nil
// when the tool has no open transaction. Status is derived, never the raw
// stored value.
func (r *Repo) VerifyOwnership(ctx context.Context, toolBarcode string) (*Ownership, error) {
	tool, err := r.FindToolByBarcode(ctx, toolBarcode)
	if err != nil {
		return nil, err
	}

	out := &Ownership{
		ToolID:      tool.ID,
		Barcode:     tool.Barcode,
		Description: tool.Description,
		Status:      tool.Status,
	}

	var open models.Transaction
	err = r.DB.WithContext(ctx).
		Where("tool_id = ? AND checkin_time IS NULL", tool.ID).
		First(&open).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	if tool.Status != models.ToolMissing {
		out.Status = models.DeriveStatus(open.CheckoutTime, time.Now().UTC())
	}
	var holder models.Personnel
	if err := r.DB.WithContext(ctx).First(&holder, "id = ?", open.PersonnelID).Error; err != nil {
		return nil, err
	}
	out.OwnerBarcode = &holder.Barcode
	out.OwnerName = &holder.Name
	return out, nil
}

// MarkToolMissing flags a tool as missing. Works both for tools that walked
// off while checked out (open transaction stays open) and for ones that
// vanished from the store.
func (r *Repo) MarkToolMissing(ctx context.Context, toolBarcode string) (*models.Tool, error) {
	var tool *models.Tool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := findToolByBarcode(tx, toolBarcode)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Tool{}).
			Where("id = ?", t.ID).
			Update("status", models.ToolMissing).Error; err != nil {
			return err
		}
		t.Status = models.ToolMissing
		tool = t
		return nil
	})
	return tool, err
}

// ResolveMissingTool puts a found tool back in circulation. Only valid when
// nobody holds it; a missing tool with an open transaction comes back
// through CheckinTool instead.
func (r *Repo) ResolveMissingTool(ctx context.Context, toolBarcode string) (*models.Tool, error) {
	var tool *models.Tool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := findToolByBarcode(tx, toolBarcode)
		if err != nil {
			return err
		}
		if t.Status != models.ToolMissing {
			return ErrToolNotMissing
		}
		var n int64
		if err := tx.Model(&models.Transaction{}).
			Where("tool_id = ? AND checkin_time IS NULL", t.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyCheckedOut
		}
		if err := tx.Model(&models.Tool{}).
			Where("id = ?", t.ID).
			Updates(map[string]any{
				"status":    models.ToolAvailable,
				"holder_id": nil,
			}).Error; err != nil {
			return err
		}
		t.Status = models.ToolAvailable
		t.HolderID = nil
		tool = t
		return nil
	})
	return tool, err
}

// --- tool admin / listings ---

func (r *Repo) CreateTool(ctx context.Context, t *models.Tool) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// ToolView is a tool row with its derived status and, when out, the holder.
type ToolView struct {
	ID           string     `json:"id"`
	Barcode      string     `json:"barcode"`
	Description  string     `json:"description"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	CheckedOutBy *string    `json:"checkedOutBy,omitempty"`
	Area         *string    `json:"area,omitempty"`
	CheckoutTime *time.Time `json:"checkoutTime,omitempty"`
	HoursOut     int        `json:"hoursOut,omitempty"`
}

// ListTools returns every tool with derived status applied.
func (r *Repo) ListTools(ctx context.Context) ([]ToolView, error) {
	return r.listTools(ctx, false)
}

// ListCheckedOutTools returns only tools with an open transaction.
func (r *Repo) ListCheckedOutTools(ctx context.Context) ([]ToolView, error) {
	return r.listTools(ctx, true)
}

func (r *Repo) listTools(ctx context.Context, openOnly bool) ([]ToolView, error) {
	type row struct {
		ID           string
		Barcode      string
		Description  string
		Type         string
		Status       string
		HolderName   *string
		LocationUsed *string
		CheckoutTime *time.Time
	}

	q := r.DB.WithContext(ctx).
		Table(models.ToolTable+" i").
		Select(`i.id, i.barcode, i.description, i.type, i.status,
			p.name AS holder_name, ot.location_used, ot.checkout_time`).
		Joins("LEFT JOIN "+models.TransactionTable+" ot ON ot.tool_id = i.id AND ot.checkin_time IS NULL").
		Joins("LEFT JOIN "+models.PersonnelTable+" p ON p.id = ot.personnel_id").
		Order("i.created_at DESC")
	if openOnly {
		q = q.Where("ot.id IS NOT NULL")
	}

	var rows []row
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]ToolView, 0, len(rows))
	for _, rw := range rows {
		v := ToolView{
			ID:          rw.ID,
			Barcode:     rw.Barcode,
			Description: rw.Description,
			Type:        rw.Type,
			Status:      rw.Status,
		}
		if rw.CheckoutTime != nil {
			v.CheckedOutBy = rw.HolderName
			v.Area = rw.LocationUsed
			v.CheckoutTime = rw.CheckoutTime
			v.HoursOut = models.HoursOut(*rw.CheckoutTime, now)
			if rw.Status != models.ToolMissing {
				v.Status = models.DeriveStatus(*rw.CheckoutTime, now)
			}
		}
		out = append(out, v)
	}
	return out, nil
}
