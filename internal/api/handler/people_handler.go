package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/service"
	"edusync/backend/pkg/response"
)

// PeopleHandler 学生 / 教师维护 HTTP 处理器
type PeopleHandler struct {
	peopleSvc service.PeopleService
}

// NewPeopleHandler 创建 PeopleHandler
func NewPeopleHandler(peopleSvc service.PeopleService) *PeopleHandler {
	return &PeopleHandler{peopleSvc: peopleSvc}
}

// List 人员列表
// GET /api/v1/admin/people?role=student&class_id=1&search=ali
func (h *PeopleHandler) List(c *gin.Context) {
	var req dto.PersonListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	list, err := h.peopleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handlePeopleError(c, err)
		return
	}

	response.OK(c, list)
}

// Get 人员详情
// GET /api/v1/admin/people/:role/:id
func (h *PeopleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.peopleSvc.GetByID(c.Request.Context(), c.Param("role"), id)
	if err != nil {
		h.handlePeopleError(c, err)
		return
	}

	response.OK(c, item)
}

// Create 新建学生或教师
// POST /api/v1/admin/people
func (h *PeopleHandler) Create(c *gin.Context) {
	var req dto.PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.peopleSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePeopleError(c, err)
		return
	}

	response.Created(c, item)
}

// Update 修改人员信息
// PUT /api/v1/admin/people/:role/:id
func (h *PeopleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.peopleSvc.Update(c.Request.Context(), c.Param("role"), id, &req, callerID)
	if err != nil {
		h.handlePeopleError(c, err)
		return
	}

	response.OK(c, item)
}

// Delete 删除人员
// DELETE /api/v1/admin/people/:role/:id
func (h *PeopleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.peopleSvc.Delete(c.Request.Context(), c.Param("role"), id); err != nil {
		h.handlePeopleError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *PeopleHandler) handlePeopleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPersonBadRole):
		response.BadRequest(c, 10001, service.ErrPersonBadRole.Error())
	case errors.Is(err, service.ErrPersonNotFound):
		response.NotFound(c, 16001, service.ErrPersonNotFound.Error())
	case errors.Is(err, service.ErrPersonEmailExists):
		response.Conflict(c, 16007, service.ErrPersonEmailExists.Error())
	case errors.Is(err, service.ErrPersonInUse):
		response.Conflict(c, 16008, service.ErrPersonInUse.Error())
	case errors.Is(err, service.ErrCatalogInvalidRef):
		response.BadRequest(c, 16003, service.ErrCatalogInvalidRef.Error())
	default:
		response.InternalError(c)
	}
}
