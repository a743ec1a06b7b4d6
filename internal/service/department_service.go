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

// ── 院系模块业务错误 ──

var (
	ErrDepartmentNotFound   = errors.New("院系不存在")
	ErrDepartmentCodeExists = errors.New("院系代码已存在")
	ErrDepartmentInUse      = errors.New("院系下仍有班级、教师、课程或学生，无法删除")
)

// DepartmentService 院系维护业务接口（列表见 CatalogService）
type DepartmentService interface {
	Create(ctx context.Context, req *dto.DepartmentRequest, callerID uint) (*dto.DepartmentResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.DepartmentResponse, error)
	Update(ctx context.Context, id uint, req *dto.DepartmentRequest, callerID uint) (*dto.DepartmentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, req *dto.DepartmentRequest, callerID uint) (*dto.DepartmentResponse, error) {
	code := normalizeCode(req.Code)
	if err := s.ensureCodeFree(ctx, code, 0); err != nil {
		return nil, err
	}

	dept := &model.Department{
		Name: strings.TrimSpace(req.Name),
		Code: code,
	}
	dept.CreatedBy = &callerID
	dept.UpdatedBy = &callerID

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrDepartmentCodeExists
		}
		s.logger.Error("创建院系失败", zap.Error(err))
		return nil, err
	}

	resp := toDepartmentResponse(dept)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *departmentService) GetByID(ctx context.Context, id uint) (*dto.DepartmentResponse, error) {
	dept, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toDepartmentResponse(dept)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, id uint, req *dto.DepartmentRequest, callerID uint) (*dto.DepartmentResponse, error) {
	dept, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	// 代码变更时检查唯一性
	code := normalizeCode(req.Code)
	if code != dept.Code {
		if err := s.ensureCodeFree(ctx, code, id); err != nil {
			return nil, err
		}
	}

	dept.Name = strings.TrimSpace(req.Name)
	dept.Code = code
	dept.UpdatedBy = &callerID

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrDepartmentCodeExists
		}
		s.logger.Error("更新院系失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	resp := toDepartmentResponse(dept)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	// 检查院系下是否仍有数据
	count, err := s.repo.Department.CountReferences(ctx, id)
	if err != nil {
		s.logger.Error("查询院系引用失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrDepartmentInUse
	}

	if err := s.repo.Department.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		if pkgerrors.IsForeignKeyViolation(err) {
			return ErrDepartmentInUse
		}
		s.logger.Error("删除院系失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *departmentService) get(ctx context.Context, id uint) (*model.Department, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return dept, nil
}

func (s *departmentService) ensureCodeFree(ctx context.Context, code string, selfID uint) error {
	existing, err := s.repo.Department.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("查询院系代码失败", zap.Error(err))
		return err
	}
	if existing.DepartmentID != selfID {
		return ErrDepartmentCodeExists
	}
	return nil
}

// normalizeCode 院系 / 课程代码统一去空白并转大写
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
