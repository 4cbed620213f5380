package models

import (
	"time"

	"gorm.io/gorm"
)

// Principal 主体表（管理员 / 代理 / 子代理 / 普通用户）
// 子代理必须挂在代理之下，层级固定两层；记录只做软禁用，不做物理删除。
type Principal struct {
	ID             uint           `gorm:"primarykey" json:"id"`                               // 主键
	Name           string         `gorm:"not null" json:"name"`                               // 姓名
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`                  // 邮箱
	PasswordHash   string         `gorm:"not null" json:"-"`                                  // 密码哈希（不返回给前端）
	Phone          string         `gorm:"default:''" json:"phone"`                            // 电话
	Address        string         `gorm:"default:''" json:"address"`                          // 地址
	Role           string         `gorm:"type:varchar(20);not null;index" json:"role"`        // 角色
	ParentID       *uint          `gorm:"index" json:"parent_id,omitempty"`                   // 上级代理ID（仅子代理）
	Approved       bool           `gorm:"not null;default:false;index" json:"approved"`       // 审核通过
	Active         bool           `gorm:"not null;default:true" json:"active"`                // 是否启用
	CommissionRate Money          `gorm:"type:decimal(10,2);not null;default:0" json:"commission_rate"` // 佣金率（百分比）
	AgentCode      *string        `gorm:"type:varchar(16);uniqueIndex" json:"agent_code,omitempty"`     // 代理编号（一次分配，永不复用；非代理角色为 NULL）
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间

	Parent *Principal `gorm:"foreignKey:ParentID" json:"parent,omitempty"` // 上级代理
}

// TableName 指定表名
func (Principal) TableName() string {
	return "principals"
}
