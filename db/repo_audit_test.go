package db

import (
	"context"
	"testing"

	"tooltrack/models"
)

func TestRecordLoginTouchesLastActive(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedPersonnel(t, r, "ADMIN001", "System Administrator", models.RoleAdmin)

	if err := r.RecordLogin(ctx, p.ID); err != nil {
		t.Fatalf("record login: %v", err)
	}

	var stored models.Personnel
	if err := r.DB.First(&stored, "id = ?", p.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.LastActiveAt == nil {
		t.Fatal("last_active_at not set")
	}

	logs, err := r.ListAuditLogs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(logs))
	}
	if logs[0].Action != models.AuditLogin || logs[0].PersonnelID != p.ID {
		t.Fatalf("audit row = %+v", logs[0])
	}
}

func TestRecordLostTime(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedPersonnel(t, r, "WORKER001", "John Worker", models.RoleWorker)
	tool := seedTool(t, r, "T1", "Tape Measure")

	entry := &models.LostTimeLog{
		PersonnelID: p.ID,
		ToolID:      &tool.ID,
		Reason:      models.LostReasonToolMissing,
		MinutesLost: 15,
		Comment:     "could not find tape measure",
	}
	if err := r.RecordLostTime(ctx, entry); err != nil {
		t.Fatalf("record lost time: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("id not assigned")
	}

	ls, err := r.ListLostTime(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ls) != 1 || ls[0].MinutesLost != 15 || ls[0].Reason != models.LostReasonToolMissing {
		t.Fatalf("lost time rows = %+v", ls)
	}
}

func TestAuditAppendIsIndependentOfCustody(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedArea(t, r, "Main Workshop")
	tool := seedTool(t, r, "T1", "Hammer")
	p := seedPersonnel(t, r, "WORKER001", "John Worker", models.RoleWorker)

	txn, err := r.CheckoutTool(ctx, "T1", "WORKER001", "Main Workshop")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.AppendAudit(ctx, p.ID, models.AuditCheckout, "tool", tool.ID, "checked out"); err != nil {
		t.Fatal(err)
	}

	// The custody transition stands on its own: it committed before the
	// audit append and stays committed regardless of it.
	if got := openTransactionCount(t, r, txn.ToolID); got != 1 {
		t.Fatalf("open transactions = %d, want 1", got)
	}
}
