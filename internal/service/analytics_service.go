package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
)

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// AnalyticsService 仪表盘与统计图表数据，全部由业务表实时聚合
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*dto.DashboardStats, error)
	// DepartmentDistribution 各院系学生数
	DepartmentDistribution(ctx context.Context) (*dto.ChartSeries, error)
	// Revenue year 为 0 时取当年
	Revenue(ctx context.Context, year int) (*dto.RevenueAnalytics, error)
	Attendance(ctx context.Context) (*dto.AttendanceAnalytics, error)
	All(ctx context.Context, year int) (*dto.AnalyticsResponse, error)
}

type analyticsService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewAnalyticsService 创建 AnalyticsService 实例；loc 决定“今天”与月份归属
func NewAnalyticsService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	return &analyticsService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

func (s *analyticsService) Dashboard(ctx context.Context) (*dto.DashboardStats, error) {
	today := s.now().In(s.loc).Format(leaveDateLayout)
	t, err := s.repo.Analytics.Totals(ctx, today)
	if err != nil {
		s.logger.Error("统计汇总数据失败", zap.Error(err))
		return nil, err
	}
	return &dto.DashboardStats{
		Students:        t.Students,
		Faculty:         t.Faculty,
		Courses:         t.Courses,
		UpcomingEvents:  t.UpcomingEvents,
		PendingLeaves:   t.PendingLeaves,
		UnpaidInvoices:  t.UnpaidInvoices,
		ScheduleEntries: t.ScheduleEntries,
	}, nil
}

func (s *analyticsService) DepartmentDistribution(ctx context.Context) (*dto.ChartSeries, error) {
	rows, err := s.repo.Analytics.StudentsPerDepartment(ctx)
	if err != nil {
		s.logger.Error("统计院系学生分布失败", zap.Error(err))
		return nil, err
	}
	series := &dto.ChartSeries{Labels: make([]string, 0, len(rows)), Data: make([]int64, 0, len(rows))}
	for _, r := range rows {
		series.Labels = append(series.Labels, r.Label)
		series.Data = append(series.Data, r.Count)
	}
	return series, nil
}

func (s *analyticsService) Revenue(ctx context.Context, year int) (*dto.RevenueAnalytics, error) {
	if year == 0 {
		year = s.now().In(s.loc).Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(1, 0, 0)

	rows, err := s.repo.Analytics.InvoicesIssued(ctx, from, to)
	if err != nil {
		s.logger.Error("统计收入失败", zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	result := &dto.RevenueAnalytics{
		Year:      year,
		Labels:    monthLabels,
		Billed:    make([]int64, 12),
		Collected: make([]int64, 12),
	}
	for _, r := range rows {
		m := r.CreatedAt.In(s.loc).Month() - 1
		result.Billed[m] += r.Amount
		if r.Paid {
			result.Collected[m] += r.Amount
		}
	}
	return result, nil
}

func (s *analyticsService) Attendance(ctx context.Context) (*dto.AttendanceAnalytics, error) {
	byMonth, err := s.repo.Analytics.AttendanceByMonth(ctx)
	if err != nil {
		s.logger.Error("按月统计考勤失败", zap.Error(err))
		return nil, err
	}
	byDept, err := s.repo.Analytics.AttendanceByDepartment(ctx)
	if err != nil {
		s.logger.Error("按院系统计考勤失败", zap.Error(err))
		return nil, err
	}
	return &dto.AttendanceAnalytics{
		Overall:        breakdown(byMonth),
		DepartmentWise: breakdown(byDept),
	}, nil
}

func (s *analyticsService) All(ctx context.Context, year int) (*dto.AnalyticsResponse, error) {
	dashboard, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	dist, err := s.DepartmentDistribution(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.Revenue(ctx, year)
	if err != nil {
		return nil, err
	}
	attendance, err := s.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.AnalyticsResponse{
		Dashboard:              *dashboard,
		DepartmentDistribution: *dist,
		Revenue:                *revenue,
		Attendance:             *attendance,
	}, nil
}

// breakdown 把已按标签排序的 (标签, 状态, 数量) 行转为三条并列序列
func breakdown(rows []repository.StatusCount) dto.StatusBreakdown {
	b := dto.StatusBreakdown{Labels: []string{}, Present: []int64{}, Absent: []int64{}, Late: []int64{}}
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.Label]
		if !ok {
			i = len(b.Labels)
			index[r.Label] = i
			b.Labels = append(b.Labels, r.Label)
			b.Present = append(b.Present, 0)
			b.Absent = append(b.Absent, 0)
			b.Late = append(b.Late, 0)
		}
		switch r.Status {
		case model.AttendancePresent:
			b.Present[i] += r.Count
		case model.AttendanceAbsent:
			b.Absent[i] += r.Count
		case model.AttendanceLate:
			b.Late[i] += r.Count
		}
	}
	return b
}
