package models

import (
	"time"

	"gorm.io/gorm"
)

// Commission 单笔佣金流水表
// 每条批准线索生成一条流水，lead_id 唯一，防止同一线索重复入账。
// 覆盖该月的结算单被标记已支付时，流水同步翻转为 paid。
type Commission struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                             // 主键
	AgentID    uint           `gorm:"not null;index" json:"agent_id"`                                   // 归属代理ID
	SubAgentID *uint          `gorm:"index" json:"sub_agent_id,omitempty"`                              // 提交子代理ID
	LeadID     uint           `gorm:"not null;uniqueIndex" json:"lead_id"`                              // 线索ID
	PayoutID   uint           `gorm:"not null;index" json:"payout_id"`                                  // 结算单ID
	BaseAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"base_amount"`         // 佣金基数（投资金额）
	Rate       Money          `gorm:"type:decimal(10,2);not null;default:0" json:"rate"`                // 入账佣金率（百分比）
	Amount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`              // 佣金金额
	Status     string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`  // 状态
	PaidAt     *time.Time     `gorm:"index" json:"paid_at,omitempty"`                                   // 支付时间
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                                          // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间

	Agent *Principal `gorm:"foreignKey:AgentID" json:"agent,omitempty"` // 归属代理
	Lead  *Lead      `gorm:"foreignKey:LeadID" json:"lead,omitempty"`   // 关联线索
}

// TableName 指定表名
func (Commission) TableName() string {
	return "commissions"
}
