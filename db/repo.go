package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"tooltrack/models"
)

// Business errors the controllers translate into HTTP responses. Conflict
// errors are expected outcomes, not system failures.
var (
	ErrToolNotFound      = errors.New("tool not found")
	ErrPersonnelNotFound = errors.New("personnel not found")
	ErrPersonnelInactive = errors.New("personnel is not active")
	ErrAreaNotFound      = errors.New("unknown area")
	ErrAlreadyCheckedOut = errors.New("tool already checked out")
	ErrOwnershipMismatch = errors.New("tool is held by someone else")
	ErrNotCheckedOut     = errors.New("tool is not currently checked out")
	ErrToolNotMissing    = errors.New("tool is not marked missing")
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// --- identity resolution (no side effects) ---

func (r *Repo) FindToolByBarcode(ctx context.Context, barcode string) (*models.Tool, error) {
	return findToolByBarcode(r.DB.WithContext(ctx), barcode)
}

func findToolByBarcode(tx *gorm.DB, barcode string) (*models.Tool, error) {
	var t models.Tool
	if err := tx.Where("barcode = ?", strings.TrimSpace(barcode)).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrToolNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindPersonnelByBarcode resolves a badge barcode to an active person.
// Inactive personnel resolve to ErrPersonnelInactive so callers can tell
// "badge unknown" from "badge revoked".
func (r *Repo) FindPersonnelByBarcode(ctx context.Context, barcode string) (*models.Personnel, error) {
	return findPersonnelByBarcode(r.DB.WithContext(ctx), barcode)
}

func findPersonnelByBarcode(tx *gorm.DB, barcode string) (*models.Personnel, error) {
	var p models.Personnel
	if err := tx.Where("barcode = ?", strings.TrimSpace(barcode)).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonnelNotFound
		}
		return nil, err
	}
	if !p.Active {
		return nil, ErrPersonnelInactive
	}
	return &p, nil
}

func findAreaByName(tx *gorm.DB, name string) (*models.Area, error) {
	var a models.Area
	if err := tx.Where("name = ?", strings.TrimSpace(name)).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAreaNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repo) FindPersonnelByID(ctx context.Context, id string) (*models.Personnel, error) {
	var p models.Personnel
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonnelNotFound
		}
		return nil, err
	}
	return &p, nil
}

// --- personnel admin ---

func (r *Repo) CreatePersonnel(ctx context.Context, p *models.Personnel) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repo) ListPersonnel(ctx context.Context) ([]models.Personnel, error) {
	var ps []models.Personnel
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&ps).Error
	return ps, err
}

// SetPersonnelActive flips the active flag. Deactivated badges can no
// longer authenticate or appear on new transactions; history stays intact.
func (r *Repo) SetPersonnelActive(ctx context.Context, personnelID string, active bool) error {
	res := r.DB.WithContext(ctx).Model(&models.Personnel{}).
		Where("id = ?", personnelID).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPersonnelNotFound
	}
	return nil
}

func (r *Repo) TouchPersonnelSeen(ctx context.Context, personnelID string) error {
	return r.DB.WithContext(ctx).Model(&models.Personnel{}).
		Where("id = ?", personnelID).
		Update("last_active_at", r.DB.NowFunc()).Error
}

func (r *Repo) ListAreas(ctx context.Context) ([]models.Area, error) {
	var as []models.Area
	err := r.DB.WithContext(ctx).Order("name").Find(&as).Error
	return as, err
}

func (r *Repo) ListToolTypes(ctx context.Context) ([]models.ToolType, error) {
	var ts []models.ToolType
	err := r.DB.WithContext(ctx).Order("name").Find(&ts).Error
	return ts, err
}
