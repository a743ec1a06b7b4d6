package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
	pkgerrors "edusync/backend/pkg/errors"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceNotFound  = errors.New("考勤记录不存在")
	ErrAttendanceExists    = errors.New("该学生当天此课程已有考勤记录")
	ErrAttendanceBadStatus = errors.New("考勤状态必须为 Present、Absent 或 Late")
)

// AttendanceService 学生考勤业务接口
type AttendanceService interface {
	// List 按日期降序，附学生姓名与课程代码
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error)
	Record(ctx context.Context, req *dto.AttendanceRequest, callerID uint) (*dto.AttendanceResponse, error)
	UpdateStatus(ctx context.Context, id uint, status string, callerID uint) (*dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error) {
	list, err := s.repo.Attendance.List(ctx, repository.AttendanceFilter{
		StudentID:    req.StudentID,
		CourseID:     req.CourseID,
		DepartmentID: req.DepartmentID,
		ClassID:      req.ClassID,
		SectionID:    req.SectionID,
		Date:         req.Date,
		DateFrom:     req.DateFrom,
		DateTo:       req.DateTo,
		Status:       req.Status,
	})
	if err != nil {
		s.logger.Error("查询考勤列表失败", zap.Error(err))
		return nil, err
	}

	names := newNameCache(s.repo)
	result := make([]dto.AttendanceResponse, 0, len(list))
	for i := range list {
		result = append(result, s.toResponse(ctx, names, &list[i]))
	}
	return result, nil
}

func (s *attendanceService) Record(ctx context.Context, req *dto.AttendanceRequest, callerID uint) (*dto.AttendanceResponse, error) {
	if !validAttendanceStatus(req.Status) {
		return nil, ErrAttendanceBadStatus
	}
	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		return nil, refError(err)
	}
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		return nil, refError(err)
	}

	_, err := s.repo.Attendance.Find(ctx, req.StudentID, req.CourseID, req.Date)
	if err == nil {
		return nil, ErrAttendanceExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, err
	}

	a := &model.Attendance{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Date:      req.Date,
		Status:    req.Status,
		BaseModel: model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
	}
	if err := s.repo.Attendance.Create(ctx, a); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrAttendanceExists
		}
		s.logger.Error("登记考勤失败", zap.Error(err))
		return nil, err
	}

	resp := s.toResponse(ctx, newNameCache(s.repo), a)
	return &resp, nil
}

func (s *attendanceService) UpdateStatus(ctx context.Context, id uint, status string, callerID uint) (*dto.AttendanceResponse, error) {
	if !validAttendanceStatus(status) {
		return nil, ErrAttendanceBadStatus
	}
	if err := s.repo.Attendance.UpdateStatus(ctx, id, status, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("更新考勤状态失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	a, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	resp := s.toResponse(ctx, newNameCache(s.repo), a)
	return &resp, nil
}

func (s *attendanceService) toResponse(ctx context.Context, names *nameCache, a *model.Attendance) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		ID:          a.AttendanceID,
		StudentID:   a.StudentID,
		StudentName: names.party(ctx, model.PartyStudent, a.StudentID),
		CourseID:    a.CourseID,
		CourseCode:  names.courseCode(ctx, a.CourseID),
		Date:        a.Date,
		Status:      a.Status,
	}
}

func validAttendanceStatus(status string) bool {
	switch status {
	case model.AttendancePresent, model.AttendanceAbsent, model.AttendanceLate:
		return true
	}
	return false
}
