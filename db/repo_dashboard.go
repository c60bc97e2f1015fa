// db/repo_dashboard.go
package db

import (
	"context"
	"sort"
	"time"

	"tooltrack/models"
)

const recentLostTimeLimit = 20

// offenderWindow is the trailing window for late-return and area stats.
const offenderWindow = 30 * 24 * time.Hour

type DashboardTool struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	User         string `json:"user"`
	Area         string `json:"area,omitempty"`
	HoursOverdue int    `json:"hoursOverdue,omitempty"`
}

type LateReturnOffender struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LateReturns int    `json:"lateReturns"`
}

type MissingTool struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	HoursMissing int    `json:"hoursMissing"`
}

type OffenderTool struct {
	Name         string `json:"name"`
	HoursOverdue int    `json:"hoursOverdue"`
}

type TopOffender struct {
	User  string         `json:"user"`
	Tools []OffenderTool `json:"tools"`
}

type LostTimeEntry struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Tool      string    `json:"tool,omitempty"`
	Reason    string    `json:"reason"`
	Minutes   int       `json:"minutes"`
	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type DashboardSummary struct {
	CheckedOutTools     []DashboardTool      `json:"checkedOutTools"`
	OverdueTools        []DashboardTool      `json:"overdueTools"`
	LateReturnOffenders []LateReturnOffender `json:"lateReturnOffenders"`
	ToolsLoggedToday    int64                `json:"toolsLoggedToday"`
	MostUsedArea        string               `json:"mostUsedArea"`
	ToolReturnsCount    int64                `json:"toolReturnsCount"`
	MissingTools        []MissingTool        `json:"missingTools"`
	LostTime            int64                `json:"lostTime"`
	LostTimeLogs        []LostTimeEntry      `json:"lostTimeLogs"`
	TopOffenders        []TopOffender        `json:"topOffenders"`
}

// GetDashboardSummary computes every dashboard metric from the ledger.
// Read-only: takes no locks and is safe to run concurrently with custody
// transitions. All time windows are computed in Go from the caller's now so
// the overdue rule stays the single one in models.DeriveStatus.
func (r *Repo) GetDashboardSummary(ctx context.Context, now time.Time) (*DashboardSummary, error) {
	s := &DashboardSummary{
		CheckedOutTools:     []DashboardTool{},
		OverdueTools:        []DashboardTool{},
		LateReturnOffenders: []LateReturnOffender{},
		MissingTools:        []MissingTool{},
		LostTimeLogs:        []LostTimeEntry{},
		TopOffenders:        []TopOffender{},
	}

	if err := r.fillOpenTransactionStats(ctx, s, now); err != nil {
		return nil, err
	}
	if err := r.fillLateReturnOffenders(ctx, s, now); err != nil {
		return nil, err
	}
	if err := r.fillTodayCounts(ctx, s, now); err != nil {
		return nil, err
	}
	if err := r.fillMostUsedArea(ctx, s, now); err != nil {
		return nil, err
	}
	if err := r.fillMissingTools(ctx, s, now); err != nil {
		return nil, err
	}
	if err := r.fillLostTime(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

type openTxnRow struct {
	ToolID       string
	ToolName     string
	ToolStatus   string
	UserName     string
	LocationUsed string
	CheckoutTime time.Time
}

// fillOpenTransactionStats walks the open transactions once and derives the
// checked-out list, the overdue list and the per-person top offenders.
func (r *Repo) fillOpenTransactionStats(ctx context.Context, s *DashboardSummary, now time.Time) error {
	var rows []openTxnRow
	if err := r.DB.WithContext(ctx).
		Table(models.TransactionTable+" t").
		Select(`t.tool_id, i.description AS tool_name, i.status AS tool_status,
			p.name AS user_name, t.location_used, t.checkout_time`).
		Joins("JOIN "+models.ToolTable+" i ON i.id = t.tool_id").
		Joins("JOIN "+models.PersonnelTable+" p ON p.id = t.personnel_id").
		Where("t.checkin_time IS NULL").
		Order("t.checkout_time").
		Scan(&rows).Error; err != nil {
		return err
	}

	offenders := map[string][]OffenderTool{}
	var offenderOrder []string
	for _, rw := range rows {
		if rw.ToolStatus == models.ToolMissing {
			continue // counted under missingTools instead
		}
		entry := DashboardTool{
			ID:   rw.ToolID,
			Name: rw.ToolName,
			User: rw.UserName,
			Area: rw.LocationUsed,
		}
		s.CheckedOutTools = append(s.CheckedOutTools, entry)

		if models.DeriveStatus(rw.CheckoutTime, now) == models.ToolOverdue {
			entry.HoursOverdue = models.HoursOut(rw.CheckoutTime, now)
			s.OverdueTools = append(s.OverdueTools, entry)
			if _, seen := offenders[rw.UserName]; !seen {
				offenderOrder = append(offenderOrder, rw.UserName)
			}
			offenders[rw.UserName] = append(offenders[rw.UserName], OffenderTool{
				Name:         rw.ToolName,
				HoursOverdue: entry.HoursOverdue,
			})
		}
	}

	for _, user := range offenderOrder {
		s.TopOffenders = append(s.TopOffenders, TopOffender{User: user, Tools: offenders[user]})
	}
	// Worst offender first: most overdue tools held.
	sort.SliceStable(s.TopOffenders, func(i, j int) bool {
		return len(s.TopOffenders[i].Tools) > len(s.TopOffenders[j].Tools)
	})
	return nil
}

func (r *Repo) fillLateReturnOffenders(ctx context.Context, s *DashboardSummary, now time.Time) error {
	type closedRow struct {
		PersonnelID  string
		Name         string
		CheckoutTime time.Time
		CheckinTime  time.Time
	}
	var rows []closedRow
	if err := r.DB.WithContext(ctx).
		Table(models.TransactionTable+" t").
		Select("t.personnel_id, p.name, t.checkout_time, t.checkin_time").
		Joins("JOIN "+models.PersonnelTable+" p ON p.id = t.personnel_id").
		Where("t.checkin_time IS NOT NULL AND t.checkin_time >= ?", now.Add(-offenderWindow)).
		Scan(&rows).Error; err != nil {
		return err
	}

	type tally struct {
		name string
		late int
	}
	counts := map[string]*tally{}
	var order []string
	for _, rw := range rows {
		if rw.CheckinTime.Sub(rw.CheckoutTime) < models.OverdueThreshold {
			continue
		}
		if _, ok := counts[rw.PersonnelID]; !ok {
			counts[rw.PersonnelID] = &tally{name: rw.Name}
			order = append(order, rw.PersonnelID)
		}
		counts[rw.PersonnelID].late++
	}
	for _, id := range order {
		if c := counts[id]; c.late > 1 {
			s.LateReturnOffenders = append(s.LateReturnOffenders, LateReturnOffender{
				ID:          id,
				Name:        c.name,
				LateReturns: c.late,
			})
		}
	}
	sort.SliceStable(s.LateReturnOffenders, func(i, j int) bool {
		return s.LateReturnOffenders[i].LateReturns > s.LateReturnOffenders[j].LateReturns
	})
	return nil
}

func (r *Repo) fillTodayCounts(ctx context.Context, s *DashboardSummary, now time.Time) error {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if err := r.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("checkout_time >= ?", dayStart).
		Count(&s.ToolsLoggedToday).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("checkin_time IS NOT NULL AND checkin_time >= ?", dayStart).
		Count(&s.ToolReturnsCount).Error
}

func (r *Repo) fillMostUsedArea(ctx context.Context, s *DashboardSummary, now time.Time) error {
	type areaRow struct {
		LocationUsed string
		N            int64
	}
	var top areaRow
	err := r.DB.WithContext(ctx).
		Table(models.TransactionTable).
		Select("location_used, COUNT(*) AS n").
		Where("checkout_time >= ?", now.Add(-offenderWindow)).
		Group("location_used").
		Order("n DESC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return err
	}
	s.MostUsedArea = top.LocationUsed
	return nil
}

func (r *Repo) fillMissingTools(ctx context.Context, s *DashboardSummary, now time.Time) error {
	type missingRow struct {
		ID           string
		Description  string
		UpdatedAt    time.Time
		CheckoutTime *time.Time
	}
	var rows []missingRow
	if err := r.DB.WithContext(ctx).
		Table(models.ToolTable+" i").
		Select("i.id, i.description, i.updated_at, ot.checkout_time").
		Joins("LEFT JOIN "+models.TransactionTable+" ot ON ot.tool_id = i.id AND ot.checkin_time IS NULL").
		Where("i.status = ?", models.ToolMissing).
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, rw := range rows {
		since := rw.UpdatedAt
		if rw.CheckoutTime != nil {
			since = *rw.CheckoutTime
		}
		s.MissingTools = append(s.MissingTools, MissingTool{
			ID:           rw.ID,
			Name:         rw.Description,
			HoursMissing: models.HoursOut(since, now),
		})
	}
	return nil
}

func (r *Repo) fillLostTime(ctx context.Context, s *DashboardSummary) error {
	if err := r.DB.WithContext(ctx).Model(&models.LostTimeLog{}).
		Select("COALESCE(SUM(minutes_lost), 0)").
		Scan(&s.LostTime).Error; err != nil {
		return err
	}

	type lostRow struct {
		ID          string
		UserName    string
		ToolName    *string
		Reason      string
		MinutesLost int
		Comment     string
		CreatedAt   time.Time
	}
	var rows []lostRow
	if err := r.DB.WithContext(ctx).
		Table(models.LostTimeTable+" l").
		Select(`l.id, p.name AS user_name, i.description AS tool_name,
			l.reason, l.minutes_lost, l.comment, l.created_at`).
		Joins("JOIN "+models.PersonnelTable+" p ON p.id = l.personnel_id").
		Joins("LEFT JOIN "+models.ToolTable+" i ON i.id = l.tool_id").
		Order("l.created_at DESC").
		Limit(recentLostTimeLimit).
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, rw := range rows {
		e := LostTimeEntry{
			ID:        rw.ID,
			User:      rw.UserName,
			Reason:    rw.Reason,
			Minutes:   rw.MinutesLost,
			Comment:   rw.Comment,
			Timestamp: rw.CreatedAt,
		}
		if rw.ToolName != nil {
			e.Tool = *rw.ToolName
		}
		s.LostTimeLogs = append(s.LostTimeLogs, e)
	}
	return nil
}
