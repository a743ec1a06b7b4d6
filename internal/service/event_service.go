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

// ── 活动模块业务错误 ──

var (
	ErrEventNotFound    = errors.New("活动不存在")
	ErrEventBadDate     = errors.New("活动日期格式应为 YYYY-MM-DD")
	ErrEventBadAudience = errors.New("活动对象无效：class / department 须指定存在的班级或院系")
)

// EventService 校园活动业务接口
//
// 活动对象为 all / student / faculty 时 audience_id 固定为 0；
// class / department 时 audience_id 必须指向存在的班级或院系。
type EventService interface {
	// List 按活动日期升序
	List(ctx context.Context, req *dto.EventListRequest) ([]dto.EventResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.EventResponse, error)
	Create(ctx context.Context, req *dto.EventRequest, callerID uint) (*dto.EventResponse, error)
	Update(ctx context.Context, id uint, req *dto.EventRequest, callerID uint) (*dto.EventResponse, error)
	Delete(ctx context.Context, id uint) error
}

type eventService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEventService 创建 EventService 实例
func NewEventService(repo *repository.Repository, logger *zap.Logger) EventService {
	return &eventService{repo: repo, logger: logger}
}

func (s *eventService) List(ctx context.Context, req *dto.EventListRequest) ([]dto.EventResponse, error) {
	list, err := s.repo.Event.List(ctx, repository.EventFilter{
		Title:        req.Title,
		AudienceType: req.AudienceType,
		DateFrom:     req.DateFrom,
		DateTo:       req.DateTo,
	})
	if err != nil {
		s.logger.Error("查询活动列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.EventResponse, 0, len(list))
	for i := range list {
		result = append(result, toEventResponse(&list[i]))
	}
	return result, nil
}

func (s *eventService) GetByID(ctx context.Context, id uint) (*dto.EventResponse, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toEventResponse(e)
	return &resp, nil
}

func (s *eventService) Create(ctx context.Context, req *dto.EventRequest, callerID uint) (*dto.EventResponse, error) {
	e := &model.Event{BaseModel: model.BaseModel{CreatedBy: &callerID}}
	if err := s.apply(ctx, e, req, callerID); err != nil {
		return nil, err
	}

	if err := s.repo.Event.Create(ctx, e); err != nil {
		s.logger.Error("创建活动失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("活动已创建", zap.Uint("id", e.EventID), zap.String("event_date", e.EventDate))
	resp := toEventResponse(e)
	return &resp, nil
}

func (s *eventService) Update(ctx context.Context, id uint, req *dto.EventRequest, callerID uint) (*dto.EventResponse, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, e, req, callerID); err != nil {
		return nil, err
	}

	if err := s.repo.Event.Update(ctx, e); err != nil {
		s.logger.Error("更新活动失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	resp := toEventResponse(e)
	return &resp, nil
}

func (s *eventService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Event.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		s.logger.Error("删除活动失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *eventService) get(ctx context.Context, id uint) (*model.Event, error) {
	e, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询活动失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return e, nil
}

// apply 校验请求并写入 e 的可编辑字段
func (s *eventService) apply(ctx context.Context, e *model.Event, req *dto.EventRequest, callerID uint) error {
	if _, err := time.Parse(leaveDateLayout, req.EventDate); err != nil {
		return ErrEventBadDate
	}

	audience := req.AudienceType
	if audience == "" {
		audience = model.AudienceAll
	}
	var audienceID uint
	switch audience {
	case model.AudienceAll, model.AudienceStudent, model.AudienceFaculty:
	case model.AudienceClass:
		if req.AudienceID == 0 {
			return ErrEventBadAudience
		}
		if _, err := s.repo.Class.GetByID(ctx, req.AudienceID); err != nil {
			return audienceError(err)
		}
		audienceID = req.AudienceID
	case model.AudienceDepartment:
		if req.AudienceID == 0 {
			return ErrEventBadAudience
		}
		if _, err := s.repo.Department.GetByID(ctx, req.AudienceID); err != nil {
			return audienceError(err)
		}
		audienceID = req.AudienceID
	default:
		return ErrEventBadAudience
	}

	e.Title = strings.TrimSpace(req.Title)
	e.Description = strings.TrimSpace(req.Description)
	e.EventDate = req.EventDate
	e.AudienceType = audience
	e.AudienceID = audienceID
	e.UpdatedBy = &callerID
	return nil
}

func audienceError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEventBadAudience
	}
	return err
}

func toEventResponse(e *model.Event) dto.EventResponse {
	resp := dto.EventResponse{
		ID:           e.EventID,
		Title:        e.Title,
		Description:  e.Description,
		EventDate:    e.EventDate,
		AudienceType: e.AudienceType,
		AudienceID:   e.AudienceID,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339),
	}
	if e.CreatedBy != nil {
		resp.CreatedBy = *e.CreatedBy
	}
	return resp
}
