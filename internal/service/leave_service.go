package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
)

// ── 请假模块业务错误 ──

var (
	ErrLeaveNotFound       = errors.New("请假申请不存在")
	ErrLeaveBadDate        = errors.New("请假日期格式应为 YYYY-MM-DD")
	ErrLeaveBadStatus      = errors.New("审批结果必须为 Approved 或 Rejected")
	ErrLeaveAlreadyDecided = errors.New("请假申请已审批，不能重复处理")
)

const leaveDateLayout = "2006-01-02"

// LeaveService 教师请假申请与审批业务接口
//
// 新申请状态为 Pending；仅 Pending 的申请可以被批准或驳回，审批结果不可再次修改。
type LeaveService interface {
	// List 按状态、请假日期升序
	List(ctx context.Context, req *dto.LeaveListRequest) ([]dto.LeaveResponse, error)
	Create(ctx context.Context, req *dto.LeaveRequest, callerID uint) (*dto.LeaveResponse, error)
	Decide(ctx context.Context, id uint, status string, callerID uint) (*dto.LeaveResponse, error)
}

type leaveService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLeaveService 创建 LeaveService 实例
func NewLeaveService(repo *repository.Repository, logger *zap.Logger) LeaveService {
	return &leaveService{repo: repo, logger: logger}
}

func (s *leaveService) List(ctx context.Context, req *dto.LeaveListRequest) ([]dto.LeaveResponse, error) {
	for _, d := range []string{req.DateFrom, req.DateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(leaveDateLayout, d); err != nil {
			return nil, ErrLeaveBadDate
		}
	}

	list, err := s.repo.LeaveRequest.List(ctx, repository.LeaveFilter{
		Status:       req.Status,
		DepartmentID: req.DepartmentID,
		FacultyID:    req.FacultyID,
		DateFrom:     req.DateFrom,
		DateTo:       req.DateTo,
	})
	if err != nil {
		s.logger.Error("查询请假列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.LeaveResponse, 0, len(list))
	for i := range list {
		result = append(result, toLeaveResponse(&list[i]))
	}
	return result, nil
}

func (s *leaveService) Create(ctx context.Context, req *dto.LeaveRequest, callerID uint) (*dto.LeaveResponse, error) {
	date, err := time.Parse(leaveDateLayout, strings.TrimSpace(req.LeaveDate))
	if err != nil {
		return nil, ErrLeaveBadDate
	}

	faculty, err := s.repo.Faculty.GetByID(ctx, req.FacultyID)
	if err != nil {
		return nil, refError(err)
	}
	if err := s.verifyCourseSlot(ctx, req); err != nil {
		return nil, err
	}

	l := &model.LeaveRequest{
		FacultyID:    req.FacultyID,
		DepartmentID: faculty.DepartmentID,
		ClassID:      req.ClassID,
		SectionID:    req.SectionID,
		CourseID:     req.CourseID,
		LeaveDate:    date.Format(leaveDateLayout),
		Reason:       strings.TrimSpace(req.Reason),
		Status:       model.LeaveStatusPending,
		BaseModel:    model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
	}
	if err := s.repo.LeaveRequest.Create(ctx, l); err != nil {
		s.logger.Error("创建请假申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("请假申请已提交",
		zap.Uint("id", l.LeaveRequestID),
		zap.Uint("faculty_id", l.FacultyID),
		zap.String("leave_date", l.LeaveDate),
	)
	resp := toLeaveResponse(l)
	return &resp, nil
}

func (s *leaveService) Decide(ctx context.Context, id uint, status string, callerID uint) (*dto.LeaveResponse, error) {
	if status != model.LeaveStatusApproved && status != model.LeaveStatusRejected {
		return nil, ErrLeaveBadStatus
	}

	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status != model.LeaveStatusPending {
		return nil, ErrLeaveAlreadyDecided
	}

	if err := s.repo.LeaveRequest.UpdateStatus(ctx, id, model.LeaveStatusPending, status, callerID); err != nil {
		// 并发审批：另一请求已先完成
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveAlreadyDecided
		}
		s.logger.Error("审批请假申请失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("请假申请已审批", zap.Uint("id", id), zap.String("status", status), zap.Uint("by", callerID))
	resp := toLeaveResponse(updated)
	return &resp, nil
}

// ── 内部辅助方法 ──

func (s *leaveService) get(ctx context.Context, id uint) (*model.LeaveRequest, error) {
	l, err := s.repo.LeaveRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("查询请假申请失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return l, nil
}

// verifyCourseSlot 班级、分组、课程必须存在，且分组属于班级
func (s *leaveService) verifyCourseSlot(ctx context.Context, req *dto.LeaveRequest) error {
	if _, err := s.repo.Class.GetByID(ctx, req.ClassID); err != nil {
		return refError(err)
	}
	section, err := s.repo.Section.GetByID(ctx, req.SectionID)
	if err != nil {
		return refError(err)
	}
	if section.ClassID != req.ClassID {
		return ErrCatalogInvalidRef
	}
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		return refError(err)
	}
	return nil
}

func toLeaveResponse(l *model.LeaveRequest) dto.LeaveResponse {
	return dto.LeaveResponse{
		ID:           l.LeaveRequestID,
		FacultyID:    l.FacultyID,
		DepartmentID: l.DepartmentID,
		ClassID:      l.ClassID,
		SectionID:    l.SectionID,
		CourseID:     l.CourseID,
		LeaveDate:    l.LeaveDate,
		Reason:       l.Reason,
		Status:       l.Status,
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    l.UpdatedAt.Format(time.RFC3339),
	}
}
