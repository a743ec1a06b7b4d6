package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/service"
	"edusync/backend/pkg/response"
)

const defaultUploadLimit = 5 << 20

// TransferHandler 排课导入导出与基础数据批量导入 HTTP 处理器
type TransferHandler struct {
	exportSvc        service.ExportService
	importSvc        service.ImportService
	catalogImportSvc service.CatalogImportService
	uploadLimit      int64
}

// NewTransferHandler 创建 TransferHandler；uploadLimit 为导入文件上限（字节）
func NewTransferHandler(exportSvc service.ExportService, importSvc service.ImportService, catalogImportSvc service.CatalogImportService, uploadLimit int64) *TransferHandler {
	if uploadLimit <= 0 {
		uploadLimit = defaultUploadLimit
	}
	return &TransferHandler{
		exportSvc:        exportSvc,
		importSvc:        importSvc,
		catalogImportSvc: catalogImportSvc,
		uploadLimit:      uploadLimit,
	}
}

// ExportXLSX 导出 Excel
// GET /api/v1/timetable/export/xlsx?view_type=student&class_id=1
func (h *TransferHandler) ExportXLSX(c *gin.Context) {
	var req dto.ScheduleExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	buf, filename, err := h.exportSvc.ExportXLSX(c.Request.Context(), &req)
	if err != nil {
		h.handleTransferError(c, err)
		return
	}

	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	setAttachment(c, filename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// ExportICS 导出 iCalendar（每周重复事件）
// GET /api/v1/timetable/export/ics?faculty_id=1
func (h *TransferHandler) ExportICS(c *gin.Context) {
	var req dto.ScheduleExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", dto.ValidationDetails(err))
		return
	}

	data, filename, err := h.exportSvc.ExportICS(c.Request.Context(), &req)
	if err != nil {
		h.handleTransferError(c, err)
		return
	}

	setAttachment(c, filename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// Import 从 Excel 批量导入排课，逐行校验与冲突检测
// POST /api/v1/timetable/import (multipart/form-data, file)
func (h *TransferHandler) Import(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := h.importSvc.ParseImportFile(file)
	if err != nil {
		h.handleTransferError(c, err)
		return
	}

	result, err := h.importSvc.Import(c.Request.Context(), rows, callerID)
	if err != nil {
		h.handleTransferError(c, err)
		return
	}

	response.OK(c, result)
}

// ImportCatalog 从 Excel 批量导入学生、教师或课程
// POST /api/v1/admin/import/:type (multipart/form-data, file)；type 为 students | faculty | courses
func (h *TransferHandler) ImportCatalog(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	kind := c.Param("type")
	if !service.IsCatalogImportType(kind) {
		response.BadRequest(c, 16006, service.ErrImportBadType.Error())
		return
	}

	file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := h.catalogImportSvc.ParseImportFile(kind, file)
	if err != nil {
		h.handleTransferError(c, err)
		return
	}

	result, err := h.catalogImportSvc.Import(c.Request.Context(), kind, rows, callerID)
	if err != nil {
		h.handleTransferError(c, err)
		return
	}

	response.OK(c, result)
}

// openUpload 读取 multipart 字段 file，限制大小并只接受 .xlsx；失败时已写入响应
func (h *TransferHandler) openUpload(c *gin.Context) (multipart.File, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadLimit)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "上传文件过大")
			return nil, false
		}
		response.BadRequest(c, 16006, "请上传 Excel 文件（字段名 file）")
		return nil, false
	}
	if strings.ToLower(filepath.Ext(fh.Filename)) != ".xlsx" {
		response.BadRequest(c, 16006, "仅支持 .xlsx 文件")
		return nil, false
	}

	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 16006, "无法读取上传文件")
		return nil, false
	}
	return file, true
}

func setAttachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}

func (h *TransferHandler) handleTransferError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportBadFile),
		errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportTooManyRows),
		errors.Is(err, service.ErrImportBadHeader),
		errors.Is(err, service.ErrImportBadType):
		response.BadRequest(c, 16006, err.Error())
	case errors.Is(err, service.ErrScheduleValidation):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
