package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
)

// ErrCatalogInvalidRef 引用的院系 / 班级 / 分组 / 教师 / 课程不存在或彼此不匹配
var ErrCatalogInvalidRef = errors.New("引用的基础数据不存在或不匹配")

// CatalogService 基础数据（只读）业务接口
type CatalogService interface {
	ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error)
	ListClasses(ctx context.Context, departmentID uint) ([]dto.ClassResponse, error)
	ListSections(ctx context.Context, classID uint) ([]dto.SectionResponse, error)
	ListFaculty(ctx context.Context, departmentID uint) ([]dto.FacultyResponse, error)
	ListCourses(ctx context.Context, departmentID uint) ([]dto.CourseResponse, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

func (s *catalogService) ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error) {
	list, err := s.repo.Department.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询院系列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.DepartmentResponse, 0, len(list))
	for i := range list {
		result = append(result, toDepartmentResponse(&list[i]))
	}
	return result, nil
}

func (s *catalogService) ListClasses(ctx context.Context, departmentID uint) ([]dto.ClassResponse, error) {
	list, err := s.repo.Class.ListAll(ctx, departmentID)
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ClassResponse, 0, len(list))
	for i := range list {
		result = append(result, toClassResponse(&list[i]))
	}
	return result, nil
}

func (s *catalogService) ListSections(ctx context.Context, classID uint) ([]dto.SectionResponse, error) {
	list, err := s.repo.Section.ListAll(ctx, classID)
	if err != nil {
		s.logger.Error("查询分组列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SectionResponse, 0, len(list))
	for i := range list {
		result = append(result, toSectionResponse(&list[i]))
	}
	return result, nil
}

func (s *catalogService) ListFaculty(ctx context.Context, departmentID uint) ([]dto.FacultyResponse, error) {
	list, err := s.repo.Faculty.ListAll(ctx, departmentID)
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.FacultyResponse, 0, len(list))
	for i := range list {
		result = append(result, toFacultyResponse(&list[i]))
	}
	return result, nil
}

func (s *catalogService) ListCourses(ctx context.Context, departmentID uint) ([]dto.CourseResponse, error) {
	list, err := s.repo.Course.ListAll(ctx, departmentID)
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

// ── 转换函数 ──

func toDepartmentResponse(d *model.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{ID: d.DepartmentID, Name: d.Name, Code: d.Code}
}

func toClassResponse(c *model.Class) dto.ClassResponse {
	return dto.ClassResponse{ID: c.ClassID, Name: c.Name, DepartmentID: c.DepartmentID}
}

func toSectionResponse(s *model.Section) dto.SectionResponse {
	return dto.SectionResponse{ID: s.SectionID, Name: s.Name, ClassID: s.ClassID, RoomNo: s.RoomNo}
}

func toFacultyResponse(f *model.Faculty) dto.FacultyResponse {
	return dto.FacultyResponse{ID: f.FacultyID, Name: f.Name, Email: f.Email, DepartmentID: f.DepartmentID}
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:           c.CourseID,
		Name:         c.Name,
		CourseCode:   c.CourseCode,
		DepartmentID: c.DepartmentID,
		CreditHours:  c.CreditHours,
	}
}
