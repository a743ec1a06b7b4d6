package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
	pkgerrors "edusync/backend/pkg/errors"
)

// ── 人员模块业务错误 ──

var (
	ErrPersonNotFound    = errors.New("人员不存在")
	ErrPersonBadRole     = errors.New("角色必须为 student 或 faculty")
	ErrPersonEmailExists = errors.New("邮箱已被学生或教师使用")
	ErrPersonInUse       = errors.New("人员仍被排课、请假、考勤或账单引用，无法删除")
)

// PeopleService 学生 / 教师维护业务接口
//
// 邮箱在学生与教师之间全局唯一；学生的分组必须属于其班级，班级必须属于其院系。
type PeopleService interface {
	List(ctx context.Context, req *dto.PersonListRequest) ([]dto.PersonResponse, error)
	GetByID(ctx context.Context, role string, id uint) (*dto.PersonResponse, error)
	Create(ctx context.Context, req *dto.PersonRequest, callerID uint) (*dto.PersonResponse, error)
	Update(ctx context.Context, role string, id uint, req *dto.UpdatePersonRequest, callerID uint) (*dto.PersonResponse, error)
	Delete(ctx context.Context, role string, id uint) error
}

type peopleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPeopleService 创建 PeopleService 实例
func NewPeopleService(repo *repository.Repository, logger *zap.Logger) PeopleService {
	return &peopleService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *peopleService) List(ctx context.Context, req *dto.PersonListRequest) ([]dto.PersonResponse, error) {
	f := repository.PersonFilter{
		DepartmentID: req.DepartmentID,
		ClassID:      req.ClassID,
		SectionID:    req.SectionID,
		Search:       req.Search,
	}

	switch req.Role {
	case dto.RoleStudent:
		list, err := s.repo.Student.List(ctx, f)
		if err != nil {
			s.logger.Error("查询学生列表失败", zap.Error(err))
			return nil, err
		}
		result := make([]dto.PersonResponse, 0, len(list))
		for i := range list {
			result = append(result, studentToPerson(&list[i]))
		}
		return result, nil
	case dto.RoleFaculty:
		list, err := s.repo.Faculty.List(ctx, f)
		if err != nil {
			s.logger.Error("查询教师列表失败", zap.Error(err))
			return nil, err
		}
		result := make([]dto.PersonResponse, 0, len(list))
		for i := range list {
			result = append(result, facultyToPerson(&list[i]))
		}
		return result, nil
	default:
		return nil, ErrPersonBadRole
	}
}

// ────────────────────── GetByID ──────────────────────

func (s *peopleService) GetByID(ctx context.Context, role string, id uint) (*dto.PersonResponse, error) {
	switch role {
	case dto.RoleStudent:
		st, err := s.getStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := studentToPerson(st)
		return &resp, nil
	case dto.RoleFaculty:
		f, err := s.getFaculty(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := facultyToPerson(f)
		return &resp, nil
	default:
		return nil, ErrPersonBadRole
	}
}

// ────────────────────── Create ──────────────────────

func (s *peopleService) Create(ctx context.Context, req *dto.PersonRequest, callerID uint) (*dto.PersonResponse, error) {
	if req.Role != dto.RoleStudent && req.Role != dto.RoleFaculty {
		return nil, ErrPersonBadRole
	}

	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, req.Role, 0); err != nil {
		return nil, err
	}
	if err := s.verifyPlacement(ctx, req.Role, req.DepartmentID, req.ClassID, req.SectionID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	base := model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID}
	name := strings.TrimSpace(req.Name)

	if req.Role == dto.RoleStudent {
		st := &model.Student{
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			DepartmentID: req.DepartmentID,
			ClassID:      req.ClassID,
			SectionID:    req.SectionID,
			BaseModel:    base,
		}
		if err := s.repo.Student.Create(ctx, st); err != nil {
			return nil, s.mapWriteError("创建学生失败", err)
		}
		resp := studentToPerson(st)
		return &resp, nil
	}

	f := &model.Faculty{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		DepartmentID: req.DepartmentID,
		BaseModel:    base,
	}
	if err := s.repo.Faculty.Create(ctx, f); err != nil {
		return nil, s.mapWriteError("创建教师失败", err)
	}
	resp := facultyToPerson(f)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *peopleService) Update(ctx context.Context, role string, id uint, req *dto.UpdatePersonRequest, callerID uint) (*dto.PersonResponse, error) {
	email := normalizeEmail(req.Email)

	var hash string
	if req.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		hash = string(h)
	}

	switch role {
	case dto.RoleStudent:
		st, err := s.getStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.ensureEmailFree(ctx, email, role, id); err != nil {
			return nil, err
		}
		if err := s.verifyPlacement(ctx, role, req.DepartmentID, req.ClassID, req.SectionID); err != nil {
			return nil, err
		}
		st.Name = strings.TrimSpace(req.Name)
		st.Email = email
		st.DepartmentID = req.DepartmentID
		st.ClassID = req.ClassID
		st.SectionID = req.SectionID
		if hash != "" {
			st.PasswordHash = hash
		}
		st.UpdatedBy = &callerID
		if err := s.repo.Student.Update(ctx, st); err != nil {
			return nil, s.mapWriteError("更新学生失败", err)
		}
		resp := studentToPerson(st)
		return &resp, nil

	case dto.RoleFaculty:
		f, err := s.getFaculty(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.ensureEmailFree(ctx, email, role, id); err != nil {
			return nil, err
		}
		if err := s.verifyPlacement(ctx, role, req.DepartmentID, 0, 0); err != nil {
			return nil, err
		}
		f.Name = strings.TrimSpace(req.Name)
		f.Email = email
		f.DepartmentID = req.DepartmentID
		if hash != "" {
			f.PasswordHash = hash
		}
		f.UpdatedBy = &callerID
		if err := s.repo.Faculty.Update(ctx, f); err != nil {
			return nil, s.mapWriteError("更新教师失败", err)
		}
		resp := facultyToPerson(f)
		return &resp, nil

	default:
		return nil, ErrPersonBadRole
	}
}

// ────────────────────── Delete ──────────────────────

func (s *peopleService) Delete(ctx context.Context, role string, id uint) error {
	var err error
	switch role {
	case dto.RoleStudent:
		if err := s.ensureStudentUnused(ctx, id); err != nil {
			return err
		}
		err = s.repo.Student.Delete(ctx, id)
	case dto.RoleFaculty:
		if err := s.ensureFacultyUnused(ctx, id); err != nil {
			return err
		}
		err = s.repo.Faculty.Delete(ctx, id)
	default:
		return ErrPersonBadRole
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPersonNotFound
		}
		if pkgerrors.IsForeignKeyViolation(err) {
			return ErrPersonInUse
		}
		s.logger.Error("删除人员失败", zap.String("role", role), zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *peopleService) getStudent(ctx context.Context, id uint) (*model.Student, error) {
	st, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		s.logger.Error("查询学生失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return st, nil
}

func (s *peopleService) getFaculty(ctx context.Context, id uint) (*model.Faculty, error) {
	f, err := s.repo.Faculty.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		s.logger.Error("查询教师失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return f, nil
}

// ensureEmailFree 邮箱未被其他学生或教师使用；selfID 为当前记录（同角色）时允许
func (s *peopleService) ensureEmailFree(ctx context.Context, email, role string, selfID uint) error {
	st, err := s.repo.Student.GetByEmail(ctx, email)
	if err == nil && !(role == dto.RoleStudent && st.StudentID == selfID) {
		return ErrPersonEmailExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	f, err := s.repo.Faculty.GetByEmail(ctx, email)
	if err == nil && !(role == dto.RoleFaculty && f.FacultyID == selfID) {
		return ErrPersonEmailExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// verifyPlacement 院系必须存在；学生还需班级属于院系、分组属于班级
func (s *peopleService) verifyPlacement(ctx context.Context, role string, departmentID, classID, sectionID uint) error {
	if _, err := s.repo.Department.GetByID(ctx, departmentID); err != nil {
		return refError(err)
	}
	if role != dto.RoleStudent {
		return nil
	}

	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		return refError(err)
	}
	if class.DepartmentID != departmentID {
		return ErrCatalogInvalidRef
	}
	section, err := s.repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		return refError(err)
	}
	if section.ClassID != classID {
		return ErrCatalogInvalidRef
	}
	return nil
}

func (s *peopleService) ensureFacultyUnused(ctx context.Context, id uint) error {
	scheduled, err := s.repo.ClassSchedule.Count(ctx, repository.ScheduleFilter{FacultyID: id})
	if err != nil {
		s.logger.Error("查询教师排课引用失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	leaves, err := s.repo.LeaveRequest.Count(ctx, repository.LeaveFilter{FacultyID: id})
	if err != nil {
		s.logger.Error("查询教师请假引用失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if scheduled+leaves > 0 {
		return ErrPersonInUse
	}
	return nil
}

func (s *peopleService) ensureStudentUnused(ctx context.Context, id uint) error {
	marked, err := s.repo.Attendance.Count(ctx, repository.AttendanceFilter{StudentID: id})
	if err != nil {
		s.logger.Error("查询学生考勤引用失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	billed, err := s.repo.Invoice.Count(ctx, repository.InvoiceFilter{StudentID: id})
	if err != nil {
		s.logger.Error("查询学生账单引用失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if marked+billed > 0 {
		return ErrPersonInUse
	}
	return nil
}

func (s *peopleService) mapWriteError(msg string, err error) error {
	switch {
	case pkgerrors.IsUniqueViolation(err):
		return ErrPersonEmailExists
	case pkgerrors.IsForeignKeyViolation(err):
		return ErrCatalogInvalidRef
	}
	s.logger.Error(msg, zap.Error(err))
	return err
}

// refError 引用记录不存在时转为 ErrCatalogInvalidRef
func refError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCatalogInvalidRef
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func studentToPerson(st *model.Student) dto.PersonResponse {
	return dto.PersonResponse{
		ID:           st.StudentID,
		Role:         dto.RoleStudent,
		Name:         st.Name,
		Email:        st.Email,
		DepartmentID: st.DepartmentID,
		ClassID:      st.ClassID,
		SectionID:    st.SectionID,
	}
}

func facultyToPerson(f *model.Faculty) dto.PersonResponse {
	return dto.PersonResponse{
		ID:           f.FacultyID,
		Role:         dto.RoleFaculty,
		Name:         f.Name,
		Email:        f.Email,
		DepartmentID: f.DepartmentID,
	}
}
