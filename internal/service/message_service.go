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

// ── 消息模块业务错误 ──

var (
	ErrMessageNotFound          = errors.New("消息不存在")
	ErrMessageRecipientNotFound = errors.New("收件人不存在")
	ErrMessageForbidden         = errors.New("只能删除自己发送或接收的消息")
)

// MessageService 管理员站内消息业务接口；当前登录管理员即发件人或收件人
type MessageService interface {
	// List 按发送时间降序，box 为 inbox / sent / all
	List(ctx context.Context, box string, callerID uint) ([]dto.MessageResponse, error)
	Send(ctx context.Context, req *dto.MessageRequest, callerID uint) (*dto.MessageResponse, error)
	Delete(ctx context.Context, id uint, callerID uint) error
}

type messageService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMessageService 创建 MessageService 实例
func NewMessageService(repo *repository.Repository, logger *zap.Logger) MessageService {
	return &messageService{repo: repo, logger: logger}
}

func (s *messageService) List(ctx context.Context, box string, callerID uint) ([]dto.MessageResponse, error) {
	list, err := s.repo.Message.List(ctx, repository.MessageFilter{
		PartyType: model.PartyAdmin,
		PartyID:   callerID,
		Box:       box,
	})
	if err != nil {
		s.logger.Error("查询消息列表失败", zap.Error(err))
		return nil, err
	}

	names := newNameCache(s.repo)
	result := make([]dto.MessageResponse, 0, len(list))
	for i := range list {
		result = append(result, toMessageResponse(ctx, names, &list[i]))
	}
	return result, nil
}

func (s *messageService) Send(ctx context.Context, req *dto.MessageRequest, callerID uint) (*dto.MessageResponse, error) {
	if err := s.verifyRecipient(ctx, req.ReceiverType, req.ReceiverID); err != nil {
		return nil, err
	}

	m := &model.Message{
		SenderType:   model.PartyAdmin,
		SenderID:     callerID,
		ReceiverType: req.ReceiverType,
		ReceiverID:   req.ReceiverID,
		Subject:      strings.TrimSpace(req.Subject),
		Body:         req.Body,
	}
	if err := s.repo.Message.Create(ctx, m); err != nil {
		s.logger.Error("发送消息失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("消息已发送",
		zap.Uint("id", m.MessageID),
		zap.String("receiver_type", m.ReceiverType),
		zap.Uint("receiver_id", m.ReceiverID),
	)
	resp := toMessageResponse(ctx, newNameCache(s.repo), m)
	return &resp, nil
}

func (s *messageService) Delete(ctx context.Context, id uint, callerID uint) error {
	m, err := s.repo.Message.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		s.logger.Error("查询消息失败", zap.Uint("id", id), zap.Error(err))
		return err
	}

	isSender := m.SenderType == model.PartyAdmin && m.SenderID == callerID
	isReceiver := m.ReceiverType == model.PartyAdmin && m.ReceiverID == callerID
	if !isSender && !isReceiver {
		return ErrMessageForbidden
	}

	if err := s.repo.Message.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		s.logger.Error("删除消息失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *messageService) verifyRecipient(ctx context.Context, partyType string, id uint) error {
	var err error
	switch partyType {
	case model.PartyStudent:
		_, err = s.repo.Student.GetByID(ctx, id)
	case model.PartyFaculty:
		_, err = s.repo.Faculty.GetByID(ctx, id)
	case model.PartyAdmin:
		_, err = s.repo.User.GetByID(ctx, id)
	default:
		return ErrMessageRecipientNotFound
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageRecipientNotFound
		}
		return err
	}
	return nil
}

func toMessageResponse(ctx context.Context, names *nameCache, m *model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:           m.MessageID,
		SenderType:   m.SenderType,
		SenderID:     m.SenderID,
		SenderName:   names.party(ctx, m.SenderType, m.SenderID),
		ReceiverType: m.ReceiverType,
		ReceiverID:   m.ReceiverID,
		ReceiverName: names.party(ctx, m.ReceiverType, m.ReceiverID),
		Subject:      m.Subject,
		Body:         m.Body,
		SentAt:       m.SentAt.Format(time.RFC3339),
	}
}
