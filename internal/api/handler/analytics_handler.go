package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/service"
	"edusync/backend/pkg/response"
)

// AnalyticsHandler 统计分析 HTTP 处理器
type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// Get 统计数据；type 缺省时返回全部
// GET /api/v1/analytics?type=revenue&year=2026
func (h *AnalyticsHandler) Get(c *gin.Context) {
	var req dto.AnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	ctx := c.Request.Context()
	var (
		data interface{}
		err  error
	)
	switch req.Type {
	case dto.AnalyticsDashboard:
		data, err = h.analyticsSvc.Dashboard(ctx)
	case dto.AnalyticsDepartmentDistribution:
		data, err = h.analyticsSvc.DepartmentDistribution(ctx)
	case dto.AnalyticsRevenue:
		data, err = h.analyticsSvc.Revenue(ctx, req.Year)
	case dto.AnalyticsAttendance:
		data, err = h.analyticsSvc.Attendance(ctx)
	default:
		data, err = h.analyticsSvc.All(ctx, req.Year)
	}
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, data)
}
