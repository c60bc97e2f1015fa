package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"tooltrack/models"
)

func TestDashboardSummary(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedArea(t, r, "Main Workshop")
	seedArea(t, r, "Site Office")
	seedPersonnel(t, r, "WORKER001", "John Worker", models.RoleWorker)
	w2 := seedPersonnel(t, r, "WORKER002", "Jane Worker", models.RoleWorker)

	_ = seedTool(t, r, "T1", "Hammer")
	t2 := seedTool(t, r, "T2", "Cordless Drill")
	t3 := seedTool(t, r, "T3", "Tape Measure")
	t4 := seedTool(t, r, "T4", "Safety Helmet")

	// T1: checked out right now.
	if _, err := r.CheckoutTool(ctx, "T1", "WORKER001", "Main Workshop"); err != nil {
		t.Fatal(err)
	}

	// T2: checked out a bit over 25 hours ago, so overdue by the 24h rule.
	txn2, err := r.CheckoutTool(ctx, "T2", "WORKER002", "Main Workshop")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.DB.Model(&models.Transaction{}).
		Where("id = ?", txn2.ID).
		Update("checkout_time", now.Add(-25*time.Hour-time.Minute)).Error; err != nil {
		t.Fatal(err)
	}

	// T3: two late returns by Jane inside the 30-day window, one checked
	// in today from each area.
	for _, loc := range []string{"Site Office", "Main Workshop"} {
		checkin := now
		closed := &models.Transaction{
			ID:           uuid.NewString(),
			ToolID:       t3.ID,
			PersonnelID:  w2.ID,
			CheckoutTime: now.Add(-30 * time.Hour),
			CheckinTime:  &checkin,
			LocationUsed: loc,
		}
		if err := r.DB.Create(closed).Error; err != nil {
			t.Fatal(err)
		}
	}

	// T4: missing from the store.
	if _, err := r.MarkToolMissing(ctx, "T4"); err != nil {
		t.Fatal(err)
	}

	// Lost time: 15 + 30 minutes.
	for i, minutes := range []int{15, 30} {
		entry := &models.LostTimeLog{
			PersonnelID: w2.ID,
			ToolID:      &t3.ID,
			Reason:      models.LostReasonToolMissing,
			MinutesLost: minutes,
			Comment:     "could not find tape measure",
		}
		if err := r.RecordLostTime(ctx, entry); err != nil {
			t.Fatalf("lost time %d: %v", i, err)
		}
	}

	s, err := r.GetDashboardSummary(ctx, now)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if len(s.CheckedOutTools) != 2 {
		t.Fatalf("checkedOutTools = %d, want 2 (T1, T2)", len(s.CheckedOutTools))
	}
	if len(s.OverdueTools) != 1 {
		t.Fatalf("overdueTools = %d, want 1", len(s.OverdueTools))
	}
	od := s.OverdueTools[0]
	if od.ID != t2.ID || od.Name != "Cordless Drill" || od.User != "Jane Worker" {
		t.Fatalf("overdue entry = %+v", od)
	}
	if od.HoursOverdue != 25 {
		t.Fatalf("hoursOverdue = %d, want 25", od.HoursOverdue)
	}

	if len(s.TopOffenders) != 1 {
		t.Fatalf("topOffenders = %d, want 1", len(s.TopOffenders))
	}
	off := s.TopOffenders[0]
	if off.User != "Jane Worker" || len(off.Tools) != 1 || off.Tools[0].Name != "Cordless Drill" {
		t.Fatalf("top offender = %+v", off)
	}

	if len(s.LateReturnOffenders) != 1 {
		t.Fatalf("lateReturnOffenders = %d, want 1", len(s.LateReturnOffenders))
	}
	lr := s.LateReturnOffenders[0]
	if lr.ID != w2.ID || lr.LateReturns != 2 {
		t.Fatalf("late return offender = %+v", lr)
	}

	if s.ToolsLoggedToday != 1 {
		t.Fatalf("toolsLoggedToday = %d, want 1", s.ToolsLoggedToday)
	}
	if s.ToolReturnsCount != 2 {
		t.Fatalf("toolReturnsCount = %d, want 2", s.ToolReturnsCount)
	}
	if s.MostUsedArea != "Main Workshop" {
		t.Fatalf("mostUsedArea = %q, want Main Workshop", s.MostUsedArea)
	}

	if len(s.MissingTools) != 1 || s.MissingTools[0].ID != t4.ID {
		t.Fatalf("missingTools = %+v", s.MissingTools)
	}

	if s.LostTime != 45 {
		t.Fatalf("lostTime = %d, want 45", s.LostTime)
	}
	if len(s.LostTimeLogs) != 2 {
		t.Fatalf("lostTimeLogs = %d, want 2", len(s.LostTimeLogs))
	}
	if s.LostTimeLogs[0].User != "Jane Worker" || s.LostTimeLogs[0].Tool != "Tape Measure" {
		t.Fatalf("lost time entry = %+v", s.LostTimeLogs[0])
	}

	// Re-running the read path must not create or lose ledger rows.
	var total int64
	if err := r.DB.Model(&models.Transaction{}).Count(&total).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetDashboardSummary(ctx, now); err != nil {
		t.Fatal(err)
	}
	var after int64
	if err := r.DB.Model(&models.Transaction{}).Count(&after).Error; err != nil {
		t.Fatal(err)
	}
	if total != after {
		t.Fatalf("transaction rows changed across reads: %d -> %d", total, after)
	}
}

func TestDashboardSummaryEmpty(t *testing.T) {
	r := newTestRepo(t)

	s, err := r.GetDashboardSummary(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(s.CheckedOutTools) != 0 || len(s.OverdueTools) != 0 {
		t.Fatal("expected no open transactions")
	}
	if s.LostTime != 0 {
		t.Fatalf("lostTime = %d, want 0", s.LostTime)
	}
	if s.MostUsedArea != "" {
		t.Fatalf("mostUsedArea = %q, want empty", s.MostUsedArea)
	}
}
