package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
)

func newTestAnalyticsService(t *testing.T, loc *time.Location) (*analyticsService, *mockAnalyticsRepo) {
	t.Helper()
	repo, _, _ := newTestRepository()
	svc := NewAnalyticsService(repo, loc, zap.NewNop()).(*analyticsService)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC) }
	return svc, repo.Analytics.(*mockAnalyticsRepo)
}

func TestAnalyticsService_DashboardUsesLocalDate(t *testing.T) {
	karachi := time.FixedZone("PKT", 5*3600)
	svc, data := newTestAnalyticsService(t, karachi)
	data.totals = repository.Totals{Students: 12, Faculty: 4, PendingLeaves: 2}

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard 失败: %v", err)
	}
	// UTC 20:00 在 +05:00 已是次日
	if data.today != "2026-10-19" {
		t.Errorf("期望按本地时区取今天 2026-10-19，实际 %s", data.today)
	}
	if stats.Students != 12 || stats.Faculty != 4 || stats.PendingLeaves != 2 {
		t.Errorf("汇总数据不符: %+v", stats)
	}
}

func TestAnalyticsService_Revenue(t *testing.T) {
	svc, data := newTestAnalyticsService(t, time.UTC)
	data.issued = []repository.IssuedAmount{
		{CreatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Amount: 1000, Paid: true},
		{CreatedAt: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), Amount: 500},
		{CreatedAt: time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC), Amount: 300, Paid: true},
	}

	rev, err := svc.Revenue(context.Background(), 0)
	if err != nil {
		t.Fatalf("Revenue 失败: %v", err)
	}
	if rev.Year != 2026 || len(rev.Labels) != 12 || rev.Labels[0] != "Jan" {
		t.Errorf("年份或标签不符: %+v", rev)
	}
	if rev.Billed[0] != 1500 || rev.Collected[0] != 1000 || rev.Billed[11] != 300 || rev.Collected[11] != 300 {
		t.Errorf("按月汇总不符: billed=%v collected=%v", rev.Billed, rev.Collected)
	}
	if !data.from.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) || !data.to.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("查询区间不符: [%v, %v)", data.from, data.to)
	}

	if _, err := svc.Revenue(context.Background(), 2025); err != nil || data.from.Year() != 2025 {
		t.Errorf("指定年份期望查询 2025，实际 %v (err=%v)", data.from, err)
	}
}

func TestAnalyticsService_AttendanceBreakdown(t *testing.T) {
	svc, data := newTestAnalyticsService(t, time.UTC)
	data.byMonth = []repository.StatusCount{
		{Label: "2026-09", Status: model.AttendancePresent, Count: 8},
		{Label: "2026-09", Status: model.AttendanceLate, Count: 1},
		{Label: "2026-10", Status: model.AttendanceAbsent, Count: 3},
	}
	data.byDept = []repository.StatusCount{
		{Label: "CS", Status: model.AttendancePresent, Count: 5},
	}

	got, err := svc.Attendance(context.Background())
	if err != nil {
		t.Fatalf("Attendance 失败: %v", err)
	}
	if !reflect.DeepEqual(got.Overall.Labels, []string{"2026-09", "2026-10"}) {
		t.Errorf("月份标签不符: %v", got.Overall.Labels)
	}
	if !reflect.DeepEqual(got.Overall.Present, []int64{8, 0}) ||
		!reflect.DeepEqual(got.Overall.Absent, []int64{0, 3}) ||
		!reflect.DeepEqual(got.Overall.Late, []int64{1, 0}) {
		t.Errorf("按月分布不符: %+v", got.Overall)
	}
	if len(got.DepartmentWise.Labels) != 1 || got.DepartmentWise.Present[0] != 5 {
		t.Errorf("按院系分布不符: %+v", got.DepartmentWise)
	}
}

func TestAnalyticsService_All(t *testing.T) {
	svc, data := newTestAnalyticsService(t, time.UTC)
	data.perDept = []repository.LabelCount{{Label: "CS", Count: 3}, {Label: "MATH", Count: 0}}

	all, err := svc.All(context.Background(), 2026)
	if err != nil {
		t.Fatalf("All 失败: %v", err)
	}
	if !reflect.DeepEqual(all.DepartmentDistribution.Labels, []string{"CS", "MATH"}) ||
		!reflect.DeepEqual(all.DepartmentDistribution.Data, []int64{3, 0}) {
		t.Errorf("院系分布不符: %+v", all.DepartmentDistribution)
	}
	// 无考勤数据时返回空序列而非 nil
	if all.Attendance.Overall.Labels == nil || len(all.Attendance.Overall.Labels) != 0 {
		t.Errorf("期望空序列，实际 %+v", all.Attendance.Overall)
	}

	data.err = errors.New("db down")
	if _, err := svc.All(context.Background(), 2026); err == nil {
		t.Error("底层查询失败时期望返回错误")
	}
}
