package utils

import (
	"net/http"

	"github.com/Xingwd/xadmin/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 定义状态码
const (
	CodeSuccess       = 200 // 成功
	CodeInvalidParams = 400 // 参数错误
	CodeUnauthorized  = 401 // 未认证
	CodeForbidden     = 403 // 权限不足
	CodeNotFound      = 404 // 资源不存在
	CodeConflict      = 409 // 资源冲突
	CodeInternalError = 500 // 服务器内部错误
)

// 对应的消息
var codeMsgMap = map[int]string{
	CodeSuccess:       "操作成功",
	CodeInvalidParams: "参数错误",
	CodeUnauthorized:  "未认证",
	CodeForbidden:     "权限不足",
	CodeNotFound:      "资源不存在",
	CodeConflict:      "资源冲突",
	CodeInternalError: "服务器内部错误",
}

// httpStatusMap 响应码到HTTP状态码的映射
var httpStatusMap = map[int]int{
	CodeSuccess:       http.StatusOK,
	CodeInvalidParams: http.StatusBadRequest,
	CodeUnauthorized:  http.StatusUnauthorized,
	CodeForbidden:     http.StatusForbidden,
	CodeNotFound:      http.StatusNotFound,
	CodeConflict:      http.StatusConflict,
	CodeInternalError: http.StatusInternalServerError,
}

func httpStatus(code int) int {
	if status, ok := httpStatusMap[code]; ok {
		return status
	}
	return http.StatusOK
}

// ResponseWithData 返回成功响应，包含数据
func ResponseWithData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: codeMsgMap[CodeSuccess],
		Data:    data,
	})
}

// ResponseSuccess 返回成功响应，不包含数据
func ResponseSuccess(c *gin.Context) {
	ResponseWithData(c, nil)
}

// ResponseWithMsg 返回带自定义消息的成功响应
func ResponseWithMsg(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
	})
}

// ResponseError 返回错误响应
func ResponseError(c *gin.Context, code int, err error) {
	msg, ok := codeMsgMap[code]
	if !ok {
		msg = "未知错误"
	}

	// 如果提供了错误信息，则使用错误信息
	if err != nil {
		msg = err.Error()
	}

	// 记录错误日志
	logger.Error("API错误响应",
		zap.Int("code", code),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("message", msg))

	c.JSON(httpStatus(code), Response{
		Code:    code,
		Message: msg,
	})
}

// GetUserID 从上下文中获取用户ID
func GetUserID(c *gin.Context) uint {
	userID, exists := c.Get("userID")
	if !exists {
		return 0
	}

	switch v := userID.(type) {
	case uint:
		return v
	case float64:
		return uint(v)
	case int:
		return uint(v)
	case int64:
		return uint(v)
	default:
		return 0
	}
}
