package handlers

import (
	"errors"

	"github.com/Xingwd/xadmin/internal/utils"
	"github.com/gin-gonic/gin"
)

// BaseHandler 基础处理器
type BaseHandler struct{}

// Success 成功响应
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	utils.ResponseWithData(c, data)
}

// Message 带消息的成功响应
func (h *BaseHandler) Message(c *gin.Context, message string) {
	utils.ResponseWithMsg(c, message)
}

// Error 错误响应
func (h *BaseHandler) Error(c *gin.Context, code int, message string) {
	utils.ResponseError(c, code, errors.New(message))
}

// BadRequest 请求参数错误
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	utils.ResponseError(c, utils.CodeInvalidParams, errors.New(message))
}

// Unauthorized 未认证
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	utils.ResponseError(c, utils.CodeUnauthorized, errors.New(message))
}

// Forbidden 权限不足
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	utils.ResponseError(c, utils.CodeForbidden, errors.New(message))
}

// NotFound 资源不存在
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	utils.ResponseError(c, utils.CodeNotFound, errors.New(message))
}

// Conflict 资源冲突
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	utils.ResponseError(c, utils.CodeConflict, errors.New(message))
}

// InternalError 内部错误
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	utils.ResponseError(c, utils.CodeInternalError, errors.New(message))
}
