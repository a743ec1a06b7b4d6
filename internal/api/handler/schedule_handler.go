package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/service"
	pkgerrors "edusync/backend/pkg/errors"
	"edusync/backend/pkg/response"
)

// ScheduleHandler 排课模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// List 排课列表
// GET /api/v1/timetable?view_type=student&class_id=1&day=Mon&page=1
func (h *ScheduleHandler) List(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	list, total, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 排课详情
// GET /api/v1/timetable/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.scheduleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, item)
}

// Create 新建排课
// POST /api/v1/timetable
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.scheduleSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, item)
}

// Update 修改排课
// PUT /api/v1/timetable/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.scheduleSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, item)
}

// Delete 删除排课
// DELETE /api/v1/timetable/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// Check 冲突预检（不写入）
// POST /api/v1/timetable/check?exclude_id=12
func (h *ScheduleHandler) Check(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	var excludeID uint
	if s := c.Query("exclude_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			response.BadRequest(c, 10001, "exclude_id 无效")
			return
		}
		excludeID = uint(id)
	}

	result, err := h.scheduleSvc.Check(c.Request.Context(), &req, excludeID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &conflict):
		if conflict.Conflicting == nil {
			response.ErrorWithDetails(c, http.StatusConflict, 16002, service.ErrScheduleConflict.Error(), conflict.Reason)
			return
		}
		response.ErrorWithData(c, http.StatusConflict, 16002, service.ErrScheduleConflict.Error(), conflict.Reason, conflict.Conflicting)
	case errors.Is(err, service.ErrScheduleConflict):
		response.Conflict(c, 16002, service.ErrScheduleConflict.Error())
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 16001, "排课记录不存在")
	case errors.Is(err, service.ErrScheduleValidation):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
	case errors.Is(err, service.ErrScheduleInvalidRef):
		response.BadRequest(c, 16003, service.ErrScheduleInvalidRef.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 16004, pkgerrors.ErrOptimisticLock.Error())
	case errors.Is(err, service.ErrScheduleLockTimeout):
		response.Error(c, http.StatusServiceUnavailable, 16005, service.ErrScheduleLockTimeout.Error())
	default:
		response.InternalError(c)
	}
}
