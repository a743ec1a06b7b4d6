package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/service"
	"edusync/backend/pkg/response"
)

// CatalogHandler 基础数据（只读）HTTP 处理器
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListDepartments 院系列表
// GET /api/v1/catalog/departments
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	list, err := h.catalogSvc.ListDepartments(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListClasses 班级列表
// GET /api/v1/catalog/classes?department_id=1
func (h *CatalogHandler) ListClasses(c *gin.Context) {
	req, ok := bindCatalogQuery(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListClasses(c.Request.Context(), req.DepartmentID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListSections 分组列表
// GET /api/v1/catalog/sections?class_id=1
func (h *CatalogHandler) ListSections(c *gin.Context) {
	req, ok := bindCatalogQuery(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListSections(c.Request.Context(), req.ClassID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListFaculty 教师列表
// GET /api/v1/catalog/faculty?department_id=1
func (h *CatalogHandler) ListFaculty(c *gin.Context) {
	req, ok := bindCatalogQuery(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListFaculty(c.Request.Context(), req.DepartmentID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListCourses 课程列表
// GET /api/v1/catalog/courses?department_id=1
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	req, ok := bindCatalogQuery(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListCourses(c.Request.Context(), req.DepartmentID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

func bindCatalogQuery(c *gin.Context) (*dto.CatalogListRequest, bool) {
	var req dto.CatalogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return nil, false
	}
	return &req, true
}
