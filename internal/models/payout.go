package models

import (
	"time"

	"gorm.io/gorm"
)

// Payout 月度结算累计表
// 每个 (agent_id, month) 组合唯一一行，month 固定为当月一日零点。
// commission_rate 在首笔入账时定格，当月后续入账不回溯已累计金额。
type Payout struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                                    // 主键
	AgentID        uint           `gorm:"not null;index;index:idx_payout_agent_month,unique" json:"agent_id"`     // 代理ID
	Month          time.Time      `gorm:"not null;index:idx_payout_agent_month,unique" json:"month"`              // 结算月份（当月一日）
	TotalLeads     int            `gorm:"not null;default:0" json:"total_leads"`                                  // 累计线索数
	ApprovedLeads  int            `gorm:"not null;default:0" json:"approved_leads"`                               // 已批准线索数
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`              // 累计佣金金额
	CommissionRate Money          `gorm:"type:decimal(10,2);not null;default:0" json:"commission_rate"`           // 首笔入账佣金率（百分比）
	Status         string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`        // 状态
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                                // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                                // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                         // 软删除时间

	Agent *Principal `gorm:"foreignKey:AgentID" json:"agent,omitempty"` // 代理信息
}

// TableName 指定表名
func (Payout) TableName() string {
	return "payouts"
}

// MonthOf 计算时间所属结算月份（UTC 当月一日零点）
func MonthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
