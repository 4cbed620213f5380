package constants

// 角色常量
const (
	RoleAdmin    = "admin"
	RoleAgent    = "agent"
	RoleSubAgent = "sub_agent"
	RoleUser     = "user"
)

// 线索状态常量
const (
	LeadStatusPending  = "pending"
	LeadStatusApproved = "approved"
	LeadStatusRejected = "rejected"
)

// 投资类型常量
const (
	InvestmentTypeMutualFunds = "mutual_funds"
	InvestmentTypeSIP         = "SIP"
	InvestmentTypeLumpsum     = "Lumpsum"
	InvestmentTypeBoth        = "Both"
)

// 结算单状态常量
const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"
)

// 佣金记录状态常量
const (
	CommissionStatusPending   = "pending"
	CommissionStatusPaid      = "paid"
	CommissionStatusCancelled = "cancelled"
)

// 代理编号常量
// 编号为固定前缀加零填充序号，序号取当前最大序号递增，删除或跳号后仍保持单调。
const (
	AgentCodePrefix   = "AG"
	AgentCodePadWidth = 4
	AgentCodeMaxRetry = 3
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskLeadDecidedEmail       = "email:lead_decided"
	TaskPrincipalApprovedEmail = "email:principal_approved"
)

// ValidRoles 返回可注册角色集合
func ValidRoles() []string {
	return []string{RoleAdmin, RoleAgent, RoleSubAgent, RoleUser}
}

// ValidInvestmentTypes 返回合法投资类型集合
func ValidInvestmentTypes() []string {
	return []string{
		InvestmentTypeMutualFunds,
		InvestmentTypeSIP,
		InvestmentTypeLumpsum,
		InvestmentTypeBoth,
	}
}

// IsAgentLikeRole 判断角色是否属于代理体系
func IsAgentLikeRole(role string) bool {
	return role == RoleAgent || role == RoleSubAgent
}

// IsValidInvestmentType 判断投资类型是否合法
func IsValidInvestmentType(investmentType string) bool {
	for _, t := range ValidInvestmentTypes() {
		if t == investmentType {
			return true
		}
	}
	return false
}
