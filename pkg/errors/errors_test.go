package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassification(t *testing.T) {
	excl := fmt.Errorf("写入排课失败: %w", &pgconn.PgError{Code: "23P01", ConstraintName: "class_schedules_faculty_no_overlap"})
	if !IsExclusionViolation(excl) {
		t.Error("期望识别 23P01 为排他约束冲突")
	}
	if IsUniqueViolation(excl) || IsForeignKeyViolation(excl) {
		t.Error("23P01 不应被识别为唯一或外键冲突")
	}
	if got := ConstraintName(excl); got != "class_schedules_faculty_no_overlap" {
		t.Errorf("期望约束名 class_schedules_faculty_no_overlap，实际 %s", got)
	}

	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("期望识别 23505 为唯一约束冲突")
	}
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("期望识别 23503 为外键冲突")
	}

	plain := errors.New("boom")
	if IsExclusionViolation(plain) || ConstraintName(plain) != "" {
		t.Error("普通错误不应被识别为约束冲突")
	}
}
