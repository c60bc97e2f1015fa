// app/bootstrap.go
package app

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tooltrack/models"
)

// The worksite's fixed areas and tool types. Seeded idempotently on boot.
var seedAreas = []string{
	"Site Office",
	"Main Workshop",
	"Electrical Room",
	"Mechanical Room",
	"Storage Area",
	"Construction Zone A",
	"Construction Zone B",
	"Outdoor Work Area",
}

var seedToolTypes = []string{
	"Hand Tool",
	"Power Tool",
	"Measuring Tool",
	"Safety Equipment",
	"Specialty Tool",
}

// Bootstrap seeds the static dictionaries and, when no admin exists yet,
// creates the initial admin badge so a fresh install can log in.
func Bootstrap(ctx context.Context, dbConn *gorm.DB, cfg Config, logger *zap.Logger) error {
	for _, name := range seedAreas {
		if err := dbConn.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Area{Name: name}).Error; err != nil {
			return err
		}
	}
	for _, name := range seedToolTypes {
		if err := dbConn.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ToolType{Name: name}).Error; err != nil {
			return err
		}
	}

	var admins int64
	if err := dbConn.WithContext(ctx).Model(&models.Personnel{}).
		Where("role = ?", models.RoleAdmin).
		Count(&admins).Error; err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	admin := &models.Personnel{
		ID:      uuid.NewString(),
		Barcode: cfg.AdminBarcode,
		Name:    "System Administrator",
		Role:    models.RoleAdmin,
		Active:  true,
	}
	if err := dbConn.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}
	logger.Info("created initial admin",
		zap.String("barcode", admin.Barcode),
		zap.String("id", admin.ID))
	return nil
}
