package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/service"
	"edusync/backend/pkg/response"
)

// LeaveHandler 请假申请 HTTP 处理器
type LeaveHandler struct {
	leaveSvc service.LeaveService
}

// NewLeaveHandler 创建 LeaveHandler
func NewLeaveHandler(leaveSvc service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc}
}

// List 请假列表
// GET /api/v1/leaves?status=Pending&department_id=1&date_from=2026-11-01
func (h *LeaveHandler) List(c *gin.Context) {
	var req dto.LeaveListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	list, err := h.leaveSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, list)
}

// Create 提交请假申请
// POST /api/v1/leaves
func (h *LeaveHandler) Create(c *gin.Context) {
	var req dto.LeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.leaveSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.Created(c, item)
}

// Decide 审批请假
// PUT /api/v1/leaves/:id/status
func (h *LeaveHandler) Decide(c *gin.Context) {
	var req dto.LeaveDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}
	h.decide(c, req.Status)
}

// Approve 批准请假
// POST /api/v1/leaves/:id/approve
func (h *LeaveHandler) Approve(c *gin.Context) {
	h.decide(c, model.LeaveStatusApproved)
}

// Reject 驳回请假
// POST /api/v1/leaves/:id/reject
func (h *LeaveHandler) Reject(c *gin.Context) {
	h.decide(c, model.LeaveStatusRejected)
}

func (h *LeaveHandler) decide(c *gin.Context, status string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.leaveSvc.Decide(c.Request.Context(), id, status, callerID)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, item)
}

func (h *LeaveHandler) handleLeaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeaveBadDate), errors.Is(err, service.ErrLeaveBadStatus):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrLeaveNotFound):
		response.NotFound(c, 16001, service.ErrLeaveNotFound.Error())
	case errors.Is(err, service.ErrLeaveAlreadyDecided):
		response.Conflict(c, 16009, service.ErrLeaveAlreadyDecided.Error())
	case errors.Is(err, service.ErrCatalogInvalidRef):
		response.BadRequest(c, 16003, service.ErrCatalogInvalidRef.Error())
	default:
		response.InternalError(c)
	}
}
