package job

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"edusync/backend/config"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
	"edusync/backend/internal/scheduling"
	"edusync/backend/pkg/database"
)

func newSeededScheduleRepo(t *testing.T) repository.ClassScheduleRepository {
	t.Helper()
	cfg := &config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file:" + t.Name() + "?mode=memory&cache=shared"}
	db, err := database.NewDB(cfg, "error", zap.NewNop())
	if err != nil {
		t.Fatalf("NewDB 失败: %v", err)
	}
	if err := database.Migrate(db, "sqlite", zap.NewNop()); err != nil {
		t.Fatalf("Migrate 失败: %v", err)
	}
	if err := database.Seed(db, "sqlite", zap.NewNop()); err != nil {
		t.Fatalf("Seed 失败: %v", err)
	}
	return repository.NewClassScheduleRepo(db)
}

func TestAuditor_Run_Clean(t *testing.T) {
	repo := newSeededScheduleRepo(t)
	a := NewAuditor(repo, zap.NewNop())

	report, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("巡检失败: %v", err)
	}
	if report.Checked != 9 {
		t.Errorf("期望检查 9 条，实际 %d", report.Checked)
	}
	if len(report.Conflicts) != 0 {
		t.Errorf("演示数据不应有冲突，实际 %d 对", len(report.Conflicts))
	}
}

func TestAuditor_Run_DetectsDirectWrite(t *testing.T) {
	repo := newSeededScheduleRepo(t)

	// 绕过服务层直接写入：与排课 1 同一教师、周一时间重叠
	bad := &model.ClassSchedule{
		CourseID: 2, FacultyID: 1, ClassID: 2, SectionID: 3,
		DayOfWeek: scheduling.Monday, StartTime: "10:00:00", EndTime: "11:00:00",
	}
	if err := repo.Create(context.Background(), bad); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	report, err := NewAuditor(repo, zap.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("巡检失败: %v", err)
	}
	if len(report.Conflicts) != 1 {
		t.Fatalf("期望 1 对冲突，实际 %d", len(report.Conflicts))
	}
	p := report.Conflicts[0]
	ids := map[uint]bool{p.A.ID: true, p.B.ID: true}
	if !ids[1] || !ids[bad.ClassScheduleID] {
		t.Errorf("期望冲突对为 1 与 %d，实际 %d 与 %d", bad.ClassScheduleID, p.A.ID, p.B.ID)
	}
	if p.Reason() != "faculty" {
		t.Errorf("期望 reason=faculty，实际 %s", p.Reason())
	}
}

func TestAuditor_Start_InvalidSpec(t *testing.T) {
	a := NewAuditor(newSeededScheduleRepo(t), zap.NewNop())

	if err := a.Start("not a cron spec"); err == nil {
		t.Error("无效的 cron 表达式应返回错误")
	}
	a.Stop()
}
