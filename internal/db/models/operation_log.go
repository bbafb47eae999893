package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OperationLog 操作日志模型，仅追加，写入后不再修改
type OperationLog struct {
	ID                 string    `gorm:"type:uuid;primarykey" json:"id"`
	UserID             *uint     `gorm:"index" json:"user_id"`
	Username           string    `gorm:"size:50;index" json:"username,omitempty"`
	Name               string    `gorm:"size:100" json:"name,omitempty"`
	Title              string    `gorm:"size:200;index" json:"title,omitempty"`
	RequestMethod      string    `gorm:"size:10" json:"request_method,omitempty"`
	RequestPath        string    `gorm:"size:200" json:"request_path,omitempty"`
	RequestQueryParams string    `gorm:"type:text" json:"request_query_params,omitempty"`
	ResponseStatusCode int       `json:"response_status_code"`
	CreatedAt          time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (OperationLog) TableName() string {
	return "operation_logs"
}

// BeforeCreate 创建前钩子，生成UUID主键
func (l *OperationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	return nil
}
