package repository

import "time"

// PrincipalListFilter 查询主体（管理员 / 代理 / 子代理）列表的过滤条件
type PrincipalListFilter struct {
	Page        int
	PageSize    int
	Role        string
	ParentID    uint
	Keyword     string
	Approved    *bool
	Active      *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	OrderByName bool
}

// LeadListFilter 查询线索列表的过滤条件
type LeadListFilter struct {
	Page        int
	PageSize    int
	AgentID     uint
	SubAgentID  uint
	Status      string
	Keyword     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PayoutListFilter 查询月度结算列表的过滤条件
type PayoutListFilter struct {
	Page      int
	PageSize  int
	AgentID   uint
	Status    string
	MonthFrom *time.Time
	MonthTo   *time.Time
}

// CommissionListFilter 查询佣金明细列表的过滤条件
type CommissionListFilter struct {
	Page       int
	PageSize   int
	AgentID    uint
	SubAgentID uint
	PayoutID   uint
	Status     string
}

// ContactMessageListFilter 查询联系消息列表的过滤条件
type ContactMessageListFilter struct {
	Page     int
	PageSize int
	Handled  *bool
	Keyword  string
}
