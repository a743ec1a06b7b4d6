package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
	"edusync/backend/internal/scheduling"
	pkgerrors "edusync/backend/pkg/errors"
	"edusync/backend/pkg/metrics"
)

// ── 排课模块业务错误 ──

var (
	ErrScheduleNotFound    = errors.New("排课记录不存在")
	ErrScheduleConflict    = errors.New("排课冲突：该教师或分组在此时段已有课程")
	ErrScheduleInvalidRef  = errors.New("课程、教师、班级或分组不存在，或分组不属于该班级")
	ErrScheduleValidation  = errors.New("排课参数无效")
	ErrScheduleLockTimeout = errors.New("排课操作繁忙，请稍后重试")
)

// ConflictError 携带冲突对象的排课冲突错误，errors.Is(err, ErrScheduleConflict) 成立
type ConflictError struct {
	Reason      string                // faculty | section | faculty+section | constraint
	Conflicting *dto.ScheduleResponse // 存储层约束兜底时可能为空
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s（%s）", ErrScheduleConflict.Error(), e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrScheduleConflict }

// ScheduleService 排课业务接口
//
// 写入流程：参数校验 → 引用校验 → 获取时段锁 → 同日候选集冲突检测 → 写入。
// 同一教师 / 分组同一天的写入在锁内串行执行；PostgreSQL 排他约束作为兜底。
type ScheduleService interface {
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error)
	GetByID(ctx context.Context, id uint) (*dto.ScheduleResponse, error)
	Create(ctx context.Context, req *dto.ScheduleRequest, callerID uint) (*dto.ScheduleResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateScheduleRequest, callerID uint) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, id uint) error
	// Check 只做冲突预检不写入；excludeID 非 0 时视为更新该记录
	Check(ctx context.Context, req *dto.ScheduleRequest, excludeID uint) (*dto.ConflictCheckResponse, error)
}

type scheduleService struct {
	repo        *repository.Repository
	locker      scheduling.Locker
	lockTimeout time.Duration
	logger      *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, locker scheduling.Locker, lockTimeout time.Duration, logger *zap.Logger) ScheduleService {
	if locker == nil {
		locker = scheduling.NewLocalLocker()
	}
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &scheduleService{repo: repo, locker: locker, lockTimeout: lockTimeout, logger: logger}
}

// ────────────────────── List / Get ──────────────────────

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	f, err := buildScheduleFilter(req.ViewType, req.DepartmentID, req.ClassID, req.SectionID, req.FacultyID, req.Day)
	if err != nil {
		return nil, 0, err
	}

	list, total, err := s.repo.ClassSchedule.List(ctx, f, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询排课列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ScheduleResponse, 0, len(list))
	for i := range list {
		result = append(result, toScheduleResponse(&list[i]))
	}
	return result, total, nil
}

func (s *scheduleService) GetByID(ctx context.Context, id uint) (*dto.ScheduleResponse, error) {
	m, err := s.repo.ClassSchedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排课失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	resp := toScheduleResponse(m)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(ctx context.Context, req *dto.ScheduleRequest, callerID uint) (*dto.ScheduleResponse, error) {
	candidate, entry, err := parseScheduleRequest(req)
	if err != nil {
		metrics.ScheduleWrites.WithLabelValues("create", "invalid").Inc()
		return nil, err
	}
	if err := s.verifyReferences(ctx, candidate); err != nil {
		metrics.ScheduleWrites.WithLabelValues("create", "invalid").Inc()
		return nil, err
	}
	candidate.CreatedBy = &callerID
	candidate.UpdatedBy = &callerID

	err = s.withSlotLock(ctx, entry, func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			if err := s.ensureNoConflict(ctx, tx, entry, 0); err != nil {
				return err
			}
			if err := tx.ClassSchedule.Create(ctx, candidate); err != nil {
				return s.translateWriteError(err)
			}
			return nil
		})
	})
	if err != nil {
		s.countWriteFailure("create", err)
		return nil, err
	}

	metrics.ScheduleWrites.WithLabelValues("create", "ok").Inc()
	s.logger.Info("排课已创建",
		zap.Uint("id", candidate.ClassScheduleID),
		zap.Uint("faculty_id", candidate.FacultyID),
		zap.Uint("section_id", candidate.SectionID),
		zap.String("day", candidate.DayOfWeek.String()),
		zap.String("start", candidate.StartTime),
		zap.String("end", candidate.EndTime),
	)
	return s.GetByID(ctx, candidate.ClassScheduleID)
}

// ────────────────────── Update ──────────────────────

func (s *scheduleService) Update(ctx context.Context, id uint, req *dto.UpdateScheduleRequest, callerID uint) (*dto.ScheduleResponse, error) {
	existing, err := s.repo.ClassSchedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排课失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	if req.Version != 0 && req.Version != existing.Version {
		metrics.ScheduleWrites.WithLabelValues("update", "conflict").Inc()
		return nil, pkgerrors.ErrOptimisticLock
	}

	candidate, entry, err := parseScheduleRequest(&req.ScheduleRequest)
	if err != nil {
		metrics.ScheduleWrites.WithLabelValues("update", "invalid").Inc()
		return nil, err
	}
	if err := s.verifyReferences(ctx, candidate); err != nil {
		metrics.ScheduleWrites.WithLabelValues("update", "invalid").Inc()
		return nil, err
	}
	candidate.ClassScheduleID = id
	candidate.Version = existing.Version
	candidate.UpdatedBy = &callerID
	entry.ID = id

	err = s.withSlotLock(ctx, entry, func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			if err := s.ensureNoConflict(ctx, tx, entry, id); err != nil {
				return err
			}
			if err := tx.ClassSchedule.Update(ctx, candidate); err != nil {
				return s.translateWriteError(err)
			}
			return nil
		})
	})
	if err != nil {
		s.countWriteFailure("update", err)
		return nil, err
	}

	metrics.ScheduleWrites.WithLabelValues("update", "ok").Inc()
	s.logger.Info("排课已更新", zap.Uint("id", id), zap.Int("version", candidate.Version))
	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.ClassSchedule.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		metrics.ScheduleWrites.WithLabelValues("delete", "error").Inc()
		s.logger.Error("删除排课失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	metrics.ScheduleWrites.WithLabelValues("delete", "ok").Inc()
	s.logger.Info("排课已删除", zap.Uint("id", id))
	return nil
}

// ────────────────────── Check ──────────────────────

func (s *scheduleService) Check(ctx context.Context, req *dto.ScheduleRequest, excludeID uint) (*dto.ConflictCheckResponse, error) {
	_, entry, err := parseScheduleRequest(req)
	if err != nil {
		return nil, err
	}
	entry.ID = excludeID

	conflict, err := s.findConflict(ctx, s.repo, entry, excludeID)
	if err != nil {
		return nil, err
	}
	if conflict == nil {
		return &dto.ConflictCheckResponse{Conflict: false}, nil
	}
	return &dto.ConflictCheckResponse{
		Conflict:    true,
		Reason:      conflict.Reason,
		Conflicting: conflict.Conflicting,
	}, nil
}

// ── 内部流程 ──

// withSlotLock 在 lockTimeout 内获取候选记录的教师 / 分组时段锁后执行 fn
func (s *scheduleService) withSlotLock(ctx context.Context, entry scheduling.Entry, fn func() error) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	start := time.Now()
	unlock, err := s.locker.Lock(lockCtx, scheduling.SlotKeys(entry)...)
	metrics.LockWait.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn("获取排课时段锁失败",
			zap.Strings("keys", scheduling.SlotKeys(entry)),
			zap.Error(err),
		)
		return ErrScheduleLockTimeout
	}
	defer unlock()

	return fn()
}

// ensureNoConflict 冲突时返回 *ConflictError
func (s *scheduleService) ensureNoConflict(ctx context.Context, repo *repository.Repository, entry scheduling.Entry, excludeID uint) error {
	conflict, err := s.findConflict(ctx, repo, entry, excludeID)
	if err != nil {
		return err
	}
	if conflict != nil {
		return conflict
	}
	return nil
}

// findConflict 读取同日同教师或同分组的排课并检测重叠；无冲突返回 nil
func (s *scheduleService) findConflict(ctx context.Context, repo *repository.Repository, entry scheduling.Entry, excludeID uint) (*ConflictError, error) {
	rows, err := repo.ClassSchedule.ListForSlot(ctx, entry.Day, entry.FacultyID, entry.SectionID)
	if err != nil {
		s.logger.Error("查询同日排课失败", zap.Error(err))
		return nil, err
	}

	existing := make([]scheduling.Entry, 0, len(rows))
	byID := make(map[uint]*model.ClassSchedule, len(rows))
	for i := range rows {
		e, err := rows[i].Entry()
		if err != nil {
			// 历史脏数据：跳过并告警，不阻塞正常写入
			s.logger.Warn("排课时间格式无效，已跳过冲突检测",
				zap.Uint("id", rows[i].ClassScheduleID), zap.Error(err))
			continue
		}
		existing = append(existing, e)
		byID[e.ID] = &rows[i]
	}

	hit, ok := scheduling.FindConflict(entry, existing, excludeID)
	if !ok {
		return nil, nil
	}

	resp := toScheduleResponse(byID[hit.ID])
	return &ConflictError{
		Reason:      scheduling.ConflictPair{A: entry, B: *hit}.Reason(),
		Conflicting: &resp,
	}, nil
}

// verifyReferences 课程 / 教师 / 班级 / 分组必须存在，且分组属于该班级
func (s *scheduleService) verifyReferences(ctx context.Context, c *model.ClassSchedule) error {
	checks := []struct {
		name string
		get  func() error
	}{
		{"course", func() error { _, err := s.repo.Course.GetByID(ctx, c.CourseID); return err }},
		{"faculty", func() error { _, err := s.repo.Faculty.GetByID(ctx, c.FacultyID); return err }},
		{"class", func() error { _, err := s.repo.Class.GetByID(ctx, c.ClassID); return err }},
	}
	for _, chk := range checks {
		if err := chk.get(); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s 不存在", ErrScheduleInvalidRef, chk.name)
			}
			s.logger.Error("校验排课引用失败", zap.String("ref", chk.name), zap.Error(err))
			return err
		}
	}

	section, err := s.repo.Section.GetByID(ctx, c.SectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: section 不存在", ErrScheduleInvalidRef)
		}
		s.logger.Error("校验排课引用失败", zap.String("ref", "section"), zap.Error(err))
		return err
	}
	if section.ClassID != c.ClassID {
		return fmt.Errorf("%w: section %d 不属于 class %d", ErrScheduleInvalidRef, c.SectionID, c.ClassID)
	}
	return nil
}

// translateWriteError 将存储层约束错误映射为业务错误
func (s *scheduleService) translateWriteError(err error) error {
	switch {
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		return err
	case pkgerrors.IsExclusionViolation(err):
		s.logger.Warn("排他约束拦截了冲突写入", zap.String("constraint", pkgerrors.ConstraintName(err)))
		return &ConflictError{Reason: "constraint"}
	case pkgerrors.IsForeignKeyViolation(err):
		return ErrScheduleInvalidRef
	default:
		s.logger.Error("写入排课失败", zap.Error(err))
		return err
	}
}

func (s *scheduleService) countWriteFailure(op string, err error) {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		metrics.ScheduleWrites.WithLabelValues(op, "conflict").Inc()
		metrics.ScheduleConflicts.WithLabelValues(conflict.Reason).Inc()
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		metrics.ScheduleWrites.WithLabelValues(op, "conflict").Inc()
	case errors.Is(err, ErrScheduleInvalidRef), errors.Is(err, ErrScheduleValidation):
		metrics.ScheduleWrites.WithLabelValues(op, "invalid").Inc()
	default:
		metrics.ScheduleWrites.WithLabelValues(op, "error").Inc()
	}
}

// ── 转换函数 ──

// parseScheduleRequest 解析星期与时间并校验 start < end
func parseScheduleRequest(req *dto.ScheduleRequest) (*model.ClassSchedule, scheduling.Entry, error) {
	if req.CourseID == 0 || req.FacultyID == 0 || req.ClassID == 0 || req.SectionID == 0 {
		return nil, scheduling.Entry{}, fmt.Errorf("%w: course_id、faculty_id、class_id、section_id 均为必填", ErrScheduleValidation)
	}
	day, err := scheduling.ParseWeekday(req.DayOfWeek)
	if err != nil {
		return nil, scheduling.Entry{}, fmt.Errorf("%w: %v", ErrScheduleValidation, err)
	}
	start, err := scheduling.ParseClock(req.StartTime)
	if err != nil {
		return nil, scheduling.Entry{}, fmt.Errorf("%w: %v", ErrScheduleValidation, err)
	}
	end, err := scheduling.ParseClock(req.EndTime)
	if err != nil {
		return nil, scheduling.Entry{}, fmt.Errorf("%w: %v", ErrScheduleValidation, err)
	}

	entry := scheduling.Entry{
		CourseID:  req.CourseID,
		FacultyID: req.FacultyID,
		ClassID:   req.ClassID,
		SectionID: req.SectionID,
		Day:       day,
		Start:     start,
		End:       end,
	}
	if err := entry.Validate(); err != nil {
		return nil, scheduling.Entry{}, fmt.Errorf("%w: %v", ErrScheduleValidation, err)
	}

	return &model.ClassSchedule{
		CourseID:  req.CourseID,
		FacultyID: req.FacultyID,
		ClassID:   req.ClassID,
		SectionID: req.SectionID,
		DayOfWeek: day,
		StartTime: start.String(),
		EndTime:   end.String(),
	}, entry, nil
}

// buildScheduleFilter 列表与导出共用的筛选条件
func buildScheduleFilter(viewType string, departmentID, classID, sectionID, facultyID uint, day string) (repository.ScheduleFilter, error) {
	f := repository.ScheduleFilter{
		ViewType:     viewType,
		DepartmentID: departmentID,
		ClassID:      classID,
		SectionID:    sectionID,
		FacultyID:    facultyID,
	}
	if day != "" {
		d, err := scheduling.ParseWeekday(day)
		if err != nil {
			return f, fmt.Errorf("%w: %v", ErrScheduleValidation, err)
		}
		f.Day = d
	}
	return f, nil
}

func toScheduleResponse(m *model.ClassSchedule) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ID:        m.ClassScheduleID,
		CourseID:  m.CourseID,
		FacultyID: m.FacultyID,
		ClassID:   m.ClassID,
		SectionID: m.SectionID,
		DayOfWeek: m.DayOfWeek.String(),
		StartTime: normalizeClock(m.StartTime),
		EndTime:   normalizeClock(m.EndTime),
		Version:   m.Version,
	}
	if !m.CreatedAt.IsZero() {
		resp.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	}
	if !m.UpdatedAt.IsZero() {
		resp.UpdatedAt = m.UpdatedAt.Format(time.RFC3339)
	}
	if m.Course != nil {
		c := toCourseResponse(m.Course)
		resp.Course = &c
	}
	if m.Faculty != nil {
		f := toFacultyResponse(m.Faculty)
		resp.Faculty = &f
	}
	if m.Class != nil {
		c := toClassResponse(m.Class)
		resp.Class = &c
	}
	if m.Section != nil {
		sec := toSectionResponse(m.Section)
		resp.Section = &sec
	}
	return resp
}

// normalizeClock 数据库返回的时间统一为 HH:MM:SS，无法解析时原样返回
func normalizeClock(s string) string {
	if v, err := scheduling.NormalizeClock(s); err == nil {
		return v
	}
	return s
}
