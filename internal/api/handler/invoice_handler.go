package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/service"
	"edusync/backend/pkg/response"
)

// InvoiceHandler 学生账单 HTTP 处理器
type InvoiceHandler struct {
	invoiceSvc service.InvoiceService
}

// NewInvoiceHandler 创建 InvoiceHandler
func NewInvoiceHandler(invoiceSvc service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceSvc: invoiceSvc}
}

// List 账单列表
// GET /api/v1/admin/invoices?status=unpaid&student_id=3
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.InvoiceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	list, err := h.invoiceSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, list)
}

// Get 账单详情
// GET /api/v1/admin/invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, item)
}

// Create 开具账单
// POST /api/v1/admin/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.invoiceSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.Created(c, item)
}

// Update 修改账单
// PUT /api/v1/admin/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.invoiceSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, item)
}

// Pay 标记账单已付
// POST /api/v1/admin/invoices/:id/pay
func (h *InvoiceHandler) Pay(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.invoiceSvc.MarkPaid(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, item)
}

// Delete 删除账单
// DELETE /api/v1/admin/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *InvoiceHandler) handleInvoiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvoiceBadAmount), errors.Is(err, service.ErrInvoiceBadDueDate):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrInvoiceNotFound):
		response.NotFound(c, 16001, service.ErrInvoiceNotFound.Error())
	case errors.Is(err, service.ErrInvoiceNumberBusy):
		response.Conflict(c, 16002, service.ErrInvoiceNumberBusy.Error())
	case errors.Is(err, service.ErrCatalogInvalidRef):
		response.BadRequest(c, 16003, service.ErrCatalogInvalidRef.Error())
	default:
		response.InternalError(c)
	}
}
