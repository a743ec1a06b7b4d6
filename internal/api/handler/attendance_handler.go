package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/service"
	"edusync/backend/pkg/response"
)

// AttendanceHandler 考勤 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// List 考勤列表
// GET /api/v1/admin/attendance?class_id=1&date=2026-10-01
func (h *AttendanceHandler) List(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	list, err := h.attendanceSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, list)
}

// Record 登记考勤
// POST /api/v1/admin/attendance
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req dto.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.attendanceSvc.Record(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, item)
}

// UpdateStatus 修改考勤状态
// PUT /api/v1/admin/attendance/:id
func (h *AttendanceHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AttendanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.attendanceSvc.UpdateStatus(c.Request.Context(), id, req.Status, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, item)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttendanceBadStatus):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 16001, service.ErrAttendanceNotFound.Error())
	case errors.Is(err, service.ErrAttendanceExists):
		response.Conflict(c, 16007, service.ErrAttendanceExists.Error())
	case errors.Is(err, service.ErrCatalogInvalidRef):
		response.BadRequest(c, 16003, service.ErrCatalogInvalidRef.Error())
	default:
		response.InternalError(c)
	}
}
