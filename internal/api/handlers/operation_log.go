package handlers

import (
	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/Xingwd/xadmin/internal/logger"
	"github.com/Xingwd/xadmin/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 操作日志的排序和搜索字段白名单
var operationLogFields = []string{
	"id", "user_id", "username", "name", "title",
	"request_method", "request_path", "response_status_code", "created_at",
}

// OperationLogHandler 操作日志处理器
type OperationLogHandler struct {
	BaseHandler
	DB *gorm.DB
}

// NewOperationLogHandler 创建操作日志处理器
func NewOperationLogHandler(db *gorm.DB) *OperationLogHandler {
	return &OperationLogHandler{DB: db}
}

// List 获取操作日志列表，支持分页、排序、快速搜索和通用搜索
func (h *OperationLogHandler) List(c *gin.Context) {
	pagination := utils.BindPagination(c)
	order, err := utils.BindOrder(c, operationLogFields, "created_at")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	searchParams, err := utils.ParseCommonSearch(c.Query("common_search"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := h.DB.Model(&models.OperationLog{})
	query = utils.ApplyQuickSearch(query, c.Query("quick_search"),
		[]string{"username", "title", "request_path"})
	query, err = utils.ApplyCommonSearch(query, searchParams, operationLogFields)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("获取操作日志总数失败", zap.Error(err))
		h.InternalError(c, "获取操作日志总数失败")
		return
	}

	var logs []models.OperationLog
	if err := query.Order(order.Clause()).
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&logs).Error; err != nil {
		logger.Error("获取操作日志列表失败", zap.Error(err))
		h.InternalError(c, "获取操作日志列表失败")
		return
	}

	h.Success(c, gin.H{"data": logs, "total": total})
}

// Get 获取操作日志详情
func (h *OperationLogHandler) Get(c *gin.Context) {
	var log models.OperationLog
	if err := h.DB.Where("id = ?", c.Param("id")).First(&log).Error; err != nil {
		h.NotFound(c, "操作日志不存在")
		return
	}
	h.Success(c, &log)
}

// Delete 删除操作日志
func (h *OperationLogHandler) Delete(c *gin.Context) {
	result := h.DB.Where("id = ?", c.Param("id")).Delete(&models.OperationLog{})
	if result.Error != nil {
		logger.Error("删除操作日志失败", zap.String("id", c.Param("id")), zap.Error(result.Error))
		h.InternalError(c, "删除操作日志失败")
		return
	}
	if result.RowsAffected == 0 {
		h.NotFound(c, "操作日志不存在")
		return
	}
	h.Message(c, "操作日志删除成功")
}

// Submit 前端行为上报入口，日志本身由审计中间件落库
func (h *OperationLogHandler) Submit(c *gin.Context) {
	if c.Query("rule_name") == "" {
		h.BadRequest(c, "rule_name不能为空")
		return
	}
	h.Message(c, "操作日志提交成功")
}
