package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tooltrack/models"
)

// AppendAudit writes one immutable audit row. Callers treat failures as
// fire-and-forget: a failed append is logged upstream but never rolls back
// the operation it describes.
func (r *Repo) AppendAudit(ctx context.Context, personnelID, action, entityType, entityID, detail string) (*models.AuditLog, error) {
	entry := &models.AuditLog{
		ID:          uuid.NewString(),
		PersonnelID: personnelID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Detail:      detail,
	}
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("insert audit log: %w", err)
	}
	return entry, nil
}

// RecordLogin logs the authentication event and touches last_active_at.
func (r *Repo) RecordLogin(ctx context.Context, personnelID string) error {
	if err := r.DB.WithContext(ctx).Model(&models.Personnel{}).
		Where("id = ?", personnelID).
		Update("last_active_at", time.Now().UTC()).Error; err != nil {
		return err
	}
	_, err := r.AppendAudit(ctx, personnelID, models.AuditLogin, "personnel", personnelID, "")
	return err
}

// RecordLostTime appends one lost-time row. Immutable once written.
func (r *Repo) RecordLostTime(ctx context.Context, entry *models.LostTimeLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert lost time log: %w", err)
	}
	return nil
}

func (r *Repo) ListLostTime(ctx context.Context, limit int) ([]models.LostTimeLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var ls []models.LostTimeLog
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&ls).Error
	return ls, err
}

func (r *Repo) ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var as []models.AuditLog
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&as).Error
	return as, err
}
