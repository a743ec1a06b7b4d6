//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
	"edusync/backend/internal/scheduling"
	"edusync/backend/pkg/database"
	pkgerrors "edusync/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=edusync password=edusync_password dbname=edusync_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 使用正式迁移建表，包含排他约束
	if err := database.Migrate(testDB, "postgres", zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.Seed(testDB, "postgres", zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "写入演示数据失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func createTemp(t *testing.T, s *model.ClassSchedule) {
	t.Helper()
	if err := repository.NewRepository(testDB).ClassSchedule.Create(context.Background(), s); err != nil {
		t.Fatalf("创建排课失败: %v", err)
	}
	t.Cleanup(func() {
		testDB.Where("id = ?", s.ClassScheduleID).Delete(&model.ClassSchedule{})
	})
}

// ═══════════════════════════════════════════════════════════
// Test: 排他约束兜底
// ═══════════════════════════════════════════════════════════

func TestExclusionConstraint_RejectsOverlap(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 教师 7 周六 09:00-10:30
	createTemp(t, &model.ClassSchedule{
		CourseID: 3, FacultyID: 7, ClassID: 6, SectionID: 7,
		DayOfWeek: scheduling.Saturday, StartTime: "09:00:00", EndTime: "10:30:00",
	})

	overlap := &model.ClassSchedule{
		CourseID: 4, FacultyID: 7, ClassID: 1, SectionID: 2,
		DayOfWeek: scheduling.Saturday, StartTime: "09:30:00", EndTime: "11:00:00",
	}
	err := repo.ClassSchedule.Create(ctx, overlap)
	if !pkgerrors.IsExclusionViolation(err) {
		t.Fatalf("期望排他约束冲突，实际: %v", err)
	}
	if pkgerrors.ConstraintName(err) != "class_schedules_faculty_no_overlap" {
		t.Errorf("期望教师约束，实际 %s", pkgerrors.ConstraintName(err))
	}
}

func TestExclusionConstraint_AllowsTouchingBoundary(t *testing.T) {
	createTemp(t, &model.ClassSchedule{
		CourseID: 3, FacultyID: 7, ClassID: 6, SectionID: 7,
		DayOfWeek: scheduling.Sunday, StartTime: "09:00:00", EndTime: "10:30:00",
	})
	// 首尾相接不算重叠
	createTemp(t, &model.ClassSchedule{
		CourseID: 4, FacultyID: 7, ClassID: 6, SectionID: 7,
		DayOfWeek: scheduling.Sunday, StartTime: "10:30:00", EndTime: "12:00:00",
	})
}

// ═══════════════════════════════════════════════════════════
// Test: 乐观锁
// ═══════════════════════════════════════════════════════════

func TestClassSchedule_OptimisticLock(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := &model.ClassSchedule{
		CourseID: 3, FacultyID: 8, ClassID: 7, SectionID: 8,
		DayOfWeek: scheduling.Saturday, StartTime: "14:00:00", EndTime: "15:00:00",
	}
	createTemp(t, s)
	stale := *s

	s.EndTime = "15:30:00"
	if err := repo.ClassSchedule.Update(ctx, s); err != nil {
		t.Fatalf("第一次更新失败: %v", err)
	}
	if err := repo.ClassSchedule.Update(ctx, &stale); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}

	got, err := repo.ClassSchedule.GetByID(ctx, s.ClassScheduleID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("期望 version=2，得到: %d", got.Version)
	}
	if c, _ := scheduling.ParseClock(got.EndTime); c != scheduling.MustClock("15:30") {
		t.Errorf("期望 end_time=15:30:00，得到: %s", got.EndTime)
	}
}
