package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tooltrack/models"
)

// newTestRepo opens an in-memory sqlite DB with the production schema,
// including the partial unique index on open transactions. A single
// connection is enforced: every :memory: connection is its own database,
// and it also serializes writers the way Postgres row locks would.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepo(gdb)
}

func seedArea(t *testing.T, r *Repo, name string) *models.Area {
	t.Helper()
	a := &models.Area{Name: name}
	if err := r.DB.Create(a).Error; err != nil {
		t.Fatalf("seed area %q: %v", name, err)
	}
	return a
}

func seedTool(t *testing.T, r *Repo, barcode, description string) *models.Tool {
	t.Helper()
	tool := &models.Tool{
		ID:          uuid.NewString(),
		Barcode:     barcode,
		Description: description,
		Type:        "Hand Tool",
		Status:      models.ToolAvailable,
	}
	if err := r.DB.Create(tool).Error; err != nil {
		t.Fatalf("seed tool %q: %v", barcode, err)
	}
	return tool
}

func seedPersonnel(t *testing.T, r *Repo, barcode, name, role string) *models.Personnel {
	t.Helper()
	p := &models.Personnel{
		ID:      uuid.NewString(),
		Barcode: barcode,
		Name:    name,
		Role:    role,
		Active:  true,
	}
	if err := r.DB.Create(p).Error; err != nil {
		t.Fatalf("seed personnel %q: %v", barcode, err)
	}
	return p
}

// openTransactionCount is the invariant every custody test gets to assert:
// a tool never has more than one open transaction.
func openTransactionCount(t *testing.T, r *Repo, toolID string) int64 {
	t.Helper()
	var n int64
	if err := r.DB.Model(&models.Transaction{}).
		Where("tool_id = ? AND checkin_time IS NULL", toolID).
		Count(&n).Error; err != nil {
		t.Fatalf("count open transactions: %v", err)
	}
	return n
}
