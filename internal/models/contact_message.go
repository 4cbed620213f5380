package models

import (
	"time"

	"gorm.io/gorm"
)

// ContactMessage 联系留言表
type ContactMessage struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	Name      string         `gorm:"not null" json:"name"`             // 姓名
	Email     string         `gorm:"not null" json:"email"`            // 邮箱
	Subject   string         `gorm:"default:''" json:"subject"`        // 主题
	Message   string         `gorm:"type:text;not null" json:"message"` // 留言内容
	Handled   bool           `gorm:"not null;default:false;index" json:"handled"` // 已处理
	CreatedAt time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                       // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (ContactMessage) TableName() string {
	return "contact_messages"
}
