package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/filter"
	"edusync/backend/internal/service"
	"edusync/backend/pkg/response"
)

// FilterHandler 级联筛选 HTTP 处理器
type FilterHandler struct {
	filterSvc service.FilterService
}

// NewFilterHandler 创建 FilterHandler
func NewFilterHandler(filterSvc service.FilterService) *FilterHandler {
	return &FilterHandler{filterSvc: filterSvc}
}

// Describe 字段定义与当前可选项；查询参数即当前筛选状态
// GET /api/v1/filters/:view?department_id=1&class_id=2
func (h *FilterHandler) Describe(c *gin.Context) {
	active := make(filter.State)
	for key, values := range c.Request.URL.Query() {
		active[key] = filter.Value(values)
	}

	result, err := h.filterSvc.Describe(c.Request.Context(), c.Param("view"), active)
	if err != nil {
		h.handleFilterError(c, err)
		return
	}

	response.OK(c, result)
}

// Change 修改单个字段，返回级联后的状态
// POST /api/v1/filters/:view/change
func (h *FilterHandler) Change(c *gin.Context) {
	var req dto.FilterChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	result, err := h.filterSvc.Change(c.Request.Context(), c.Param("view"), &req)
	if err != nil {
		h.handleFilterError(c, err)
		return
	}

	response.OK(c, result)
}

// Reset 恢复默认筛选
// POST /api/v1/filters/:view/reset
func (h *FilterHandler) Reset(c *gin.Context) {
	result, err := h.filterSvc.Reset(c.Request.Context(), c.Param("view"))
	if err != nil {
		h.handleFilterError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *FilterHandler) handleFilterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFilterViewNotFound):
		response.NotFound(c, 17001, "筛选视图不存在")
	case errors.Is(err, filter.ErrUnknownField),
		errors.Is(err, filter.ErrFieldDisabled),
		errors.Is(err, filter.ErrInvalidOption),
		errors.Is(err, filter.ErrInvalidValue):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17002, "筛选条件无效", err.Error())
	default:
		response.InternalError(c)
	}
}
