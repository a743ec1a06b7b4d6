package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/service"
	"edusync/backend/pkg/response"
)

// MessageHandler 站内消息 HTTP 处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建 MessageHandler
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// List 当前管理员的消息
// GET /api/v1/admin/messages?filter=inbox
func (h *MessageHandler) List(c *gin.Context) {
	var req dto.MessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.messageSvc.List(c.Request.Context(), req.Filter, callerID)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OK(c, list)
}

// Send 发送消息
// POST /api/v1/admin/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req dto.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.messageSvc.Send(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.Created(c, item)
}

// Delete 删除消息
// DELETE /api/v1/admin/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.messageSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleMessageError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *MessageHandler) handleMessageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMessageNotFound):
		response.NotFound(c, 16001, service.ErrMessageNotFound.Error())
	case errors.Is(err, service.ErrMessageRecipientNotFound):
		response.BadRequest(c, 16003, service.ErrMessageRecipientNotFound.Error())
	case errors.Is(err, service.ErrMessageForbidden):
		response.Forbidden(c, 10003, service.ErrMessageForbidden.Error())
	default:
		response.InternalError(c)
	}
}
