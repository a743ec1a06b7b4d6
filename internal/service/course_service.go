package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
	pkgerrors "edusync/backend/pkg/errors"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound   = errors.New("课程不存在")
	ErrCourseCodeExists = errors.New("课程代码已存在")
	ErrCourseInUse      = errors.New("课程已被排课或请假申请引用，无法删除")
)

// CourseService 课程维护业务接口
type CourseService interface {
	// List 支持名称 / 代码搜索、院系与学分过滤，按课程代码升序
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.CourseResponse, error)
	Create(ctx context.Context, req *dto.CourseRequest, callerID uint) (*dto.CourseResponse, error)
	Update(ctx context.Context, id uint, req *dto.CourseRequest, callerID uint) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id uint) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error) {
	list, err := s.repo.Course.List(ctx, repository.CourseFilter{
		DepartmentID: req.DepartmentID,
		CreditHours:  req.CreditHours,
		Search:       req.Search,
	})
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CourseResponse, 0, len(list))
	for i := range list {
		result = append(result, toCourseResponse(&list[i]))
	}
	return result, nil
}

func (s *courseService) GetByID(ctx context.Context, id uint) (*dto.CourseResponse, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toCourseResponse(c)
	return &resp, nil
}

func (s *courseService) Create(ctx context.Context, req *dto.CourseRequest, callerID uint) (*dto.CourseResponse, error) {
	code := normalizeCode(req.CourseCode)
	if err := s.ensureCodeFree(ctx, code, 0); err != nil {
		return nil, err
	}
	if err := s.ensureDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	c := &model.Course{
		Name:         strings.TrimSpace(req.Name),
		CourseCode:   code,
		DepartmentID: req.DepartmentID,
		CreditHours:  req.CreditHours,
	}
	c.CreatedBy = &callerID
	c.UpdatedBy = &callerID

	if err := s.repo.Course.Create(ctx, c); err != nil {
		return nil, s.mapWriteError("创建课程失败", err)
	}

	resp := toCourseResponse(c)
	return &resp, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *dto.CourseRequest, callerID uint) (*dto.CourseResponse, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	code := normalizeCode(req.CourseCode)
	if code != c.CourseCode {
		if err := s.ensureCodeFree(ctx, code, id); err != nil {
			return nil, err
		}
	}
	if req.DepartmentID != c.DepartmentID {
		if err := s.ensureDepartment(ctx, req.DepartmentID); err != nil {
			return nil, err
		}
	}

	c.Name = strings.TrimSpace(req.Name)
	c.CourseCode = code
	c.DepartmentID = req.DepartmentID
	c.CreditHours = req.CreditHours
	c.UpdatedBy = &callerID

	if err := s.repo.Course.Update(ctx, c); err != nil {
		return nil, s.mapWriteError("更新课程失败", err)
	}

	resp := toCourseResponse(c)
	return &resp, nil
}

func (s *courseService) Delete(ctx context.Context, id uint) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	scheduled, err := s.repo.ClassSchedule.Count(ctx, repository.ScheduleFilter{CourseID: id})
	if err != nil {
		s.logger.Error("查询课程排课引用失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	leaves, err := s.repo.LeaveRequest.Count(ctx, repository.LeaveFilter{CourseID: id})
	if err != nil {
		s.logger.Error("查询课程请假引用失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if scheduled+leaves > 0 {
		return ErrCourseInUse
	}

	if err := s.repo.Course.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		if pkgerrors.IsForeignKeyViolation(err) {
			return ErrCourseInUse
		}
		s.logger.Error("删除课程失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *courseService) get(ctx context.Context, id uint) (*model.Course, error) {
	c, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *courseService) ensureCodeFree(ctx context.Context, code string, selfID uint) error {
	existing, err := s.repo.Course.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("查询课程代码失败", zap.Error(err))
		return err
	}
	if existing.CourseID != selfID {
		return ErrCourseCodeExists
	}
	return nil
}

func (s *courseService) ensureDepartment(ctx context.Context, id uint) error {
	if _, err := s.repo.Department.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCatalogInvalidRef
		}
		return err
	}
	return nil
}

func (s *courseService) mapWriteError(msg string, err error) error {
	switch {
	case pkgerrors.IsUniqueViolation(err):
		return ErrCourseCodeExists
	case pkgerrors.IsForeignKeyViolation(err):
		return ErrCatalogInvalidRef
	}
	s.logger.Error(msg, zap.Error(err))
	return err
}
