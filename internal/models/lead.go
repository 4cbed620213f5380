package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead 投资线索表
// 状态机只允许 pending -> approved / rejected，终态后除 updated_at 外不可变更。
type Lead struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                          // 主键
	CustomerName     string         `gorm:"not null" json:"customer_name"`                                 // 客户姓名
	CustomerPhone    string         `gorm:"not null" json:"customer_phone"`                                // 客户电话
	CustomerEmail    string         `gorm:"not null" json:"customer_email"`                                // 客户邮箱
	CustomerAddress  string         `gorm:"default:''" json:"customer_address"`                            // 客户地址
	InvestmentType   string         `gorm:"type:varchar(20);not null;index" json:"investment_type"`        // 投资类型
	InvestmentAmount Money          `gorm:"type:decimal(20,2);not null" json:"investment_amount"`          // 投资金额
	Notes            string         `gorm:"default:''" json:"notes"`                                       // 备注
	Status           string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"` // 状态
	AgentID          uint           `gorm:"not null;index" json:"agent_id"`                                // 归属代理ID
	SubAgentID       *uint          `gorm:"index" json:"sub_agent_id,omitempty"`                           // 提交子代理ID（子代理代报时）
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Agent    *Principal `gorm:"foreignKey:AgentID" json:"agent,omitempty"`        // 归属代理
	SubAgent *Principal `gorm:"foreignKey:SubAgentID" json:"sub_agent,omitempty"` // 提交子代理
}

// TableName 指定表名
func (Lead) TableName() string {
	return "leads"
}
