package repository

import (
	"fmt"
	"time"

	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetAgentOverview(agentID uint) (DashboardAgentOverviewRow, error)
	GetAUMTrends(agentID uint, startAt, endAt time.Time) ([]DashboardAUMTrendRow, error)
	GetPortfolioDistribution(agentID uint) ([]DashboardPortfolioRow, error)
	GetAdminOverview(startAt, endAt time.Time) (DashboardAdminOverviewRow, error)
}

// DashboardAgentOverviewRow 代理仪表盘总览原始统计结果
type DashboardAgentOverviewRow struct {
	LeadsTotal       int64
	LeadsApproved    int64
	LeadsPending     int64
	LeadsRejected    int64
	ActiveCustomers  int64
	PendingCustomers int64
	TotalAUM         float64
	PendingAUM       float64
	SIPBook          float64
	SubAgents        int64
}

// DashboardAUMTrendRow 月度 AUM 趋势统计
type DashboardAUMTrendRow struct {
	Month         string
	LeadsTotal    int64
	LeadsApproved int64
	ApprovedAUM   float64
}

// DashboardPortfolioRow 投资类型分布原始行
type DashboardPortfolioRow struct {
	InvestmentType string
	Leads          int64
	Amount         float64
}

// DashboardAdminOverviewRow 管理端总览原始统计结果
type DashboardAdminOverviewRow struct {
	AgentsTotal      int64
	SubAgentsTotal   int64
	PendingApprovals int64
	LeadsTotal       int64
	LeadsPending     int64
	LeadsApproved    int64
	ApprovedAUM      float64
	PayoutsPending   int64
	ContactUnhandled int64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

func (r *GormDashboardRepository) agentLeadBase(agentID uint) *gorm.DB {
	return r.db.Model(&models.Lead{}).Where("agent_id = ?", agentID)
}

// GetAgentOverview 获取代理总览统计
func (r *GormDashboardRepository) GetAgentOverview(agentID uint) (DashboardAgentOverviewRow, error) {
	result := DashboardAgentOverviewRow{}
	if agentID == 0 {
		return result, nil
	}

	if err := r.agentLeadBase(agentID).Count(&result.LeadsTotal).Error; err != nil {
		return result, err
	}
	if err := r.agentLeadBase(agentID).Where("status = ?", constants.LeadStatusApproved).Count(&result.LeadsApproved).Error; err != nil {
		return result, err
	}
	if err := r.agentLeadBase(agentID).Where("status = ?", constants.LeadStatusPending).Count(&result.LeadsPending).Error; err != nil {
		return result, err
	}
	if err := r.agentLeadBase(agentID).Where("status = ?", constants.LeadStatusRejected).Count(&result.LeadsRejected).Error; err != nil {
		return result, err
	}

	// 活跃客户按已通过线索去重，潜在客户按待审线索去重
	if err := r.agentLeadBase(agentID).
		Where("status = ?", constants.LeadStatusApproved).
		Select("COUNT(DISTINCT customer_name)").
		Scan(&result.ActiveCustomers).Error; err != nil {
		return result, err
	}
	if err := r.agentLeadBase(agentID).
		Where("status = ?", constants.LeadStatusPending).
		Select("COUNT(DISTINCT customer_name)").
		Scan(&result.PendingCustomers).Error; err != nil {
		return result, err
	}

	if err := r.agentLeadBase(agentID).
		Where("status = ?", constants.LeadStatusApproved).
		Select("COALESCE(SUM(investment_amount), 0)").
		Scan(&result.TotalAUM).Error; err != nil {
		return result, err
	}
	if err := r.agentLeadBase(agentID).
		Where("status = ?", constants.LeadStatusPending).
		Select("COALESCE(SUM(investment_amount), 0)").
		Scan(&result.PendingAUM).Error; err != nil {
		return result, err
	}

	if err := r.agentLeadBase(agentID).
		Where("status = ? AND investment_type = ?", constants.LeadStatusApproved, constants.InvestmentTypeSIP).
		Select("COALESCE(SUM(investment_amount), 0)").
		Scan(&result.SIPBook).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Principal{}).
		Where("parent_id = ? AND role = ?", agentID, constants.RoleSubAgent).
		Count(&result.SubAgents).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetAUMTrends 获取月度 AUM 趋势
func (r *GormDashboardRepository) GetAUMTrends(agentID uint, startAt, endAt time.Time) ([]DashboardAUMTrendRow, error) {
	type totalRow struct {
		Month string
		Total int64
	}
	type approvedRow struct {
		Month    string
		Approved int64
		Amount   float64
	}

	monthExpr := monthBucketExpr(r.db, "created_at")

	var totals []totalRow
	if err := r.agentLeadBase(agentID).
		Select(fmt.Sprintf("%s as month, COUNT(*) as total", monthExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(monthExpr).
		Order("month asc").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var approveds []approvedRow
	if err := r.agentLeadBase(agentID).
		Select(fmt.Sprintf("%s as month, COUNT(*) as approved, COALESCE(SUM(investment_amount), 0) as amount", monthExpr)).
		Where("created_at >= ? AND created_at < ? AND status = ?", startAt, endAt, constants.LeadStatusApproved).
		Group(monthExpr).
		Order("month asc").
		Scan(&approveds).Error; err != nil {
		return nil, err
	}

	approvedMap := make(map[string]approvedRow, len(approveds))
	for _, item := range approveds {
		approvedMap[item.Month] = item
	}

	result := make([]DashboardAUMTrendRow, 0, len(totals))
	for _, item := range totals {
		approved := approvedMap[item.Month]
		result = append(result, DashboardAUMTrendRow{
			Month:         item.Month,
			LeadsTotal:    item.Total,
			LeadsApproved: approved.Approved,
			ApprovedAUM:   approved.Amount,
		})
	}
	return result, nil
}

// GetPortfolioDistribution 获取已通过线索的投资类型分布
func (r *GormDashboardRepository) GetPortfolioDistribution(agentID uint) ([]DashboardPortfolioRow, error) {
	rows := make([]DashboardPortfolioRow, 0)
	if err := r.agentLeadBase(agentID).
		Select("investment_type as investment_type, COUNT(*) as leads, COALESCE(SUM(investment_amount), 0) as amount").
		Where("status = ?", constants.LeadStatusApproved).
		Group("investment_type").
		Order("amount DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetAdminOverview 获取管理端总览统计
func (r *GormDashboardRepository) GetAdminOverview(startAt, endAt time.Time) (DashboardAdminOverviewRow, error) {
	result := DashboardAdminOverviewRow{}

	if err := r.db.Model(&models.Principal{}).
		Where("role = ?", constants.RoleAgent).
		Count(&result.AgentsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Principal{}).
		Where("role = ?", constants.RoleSubAgent).
		Count(&result.SubAgentsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Principal{}).
		Where("role = ? AND approved = ?", constants.RoleAgent, false).
		Count(&result.PendingApprovals).Error; err != nil {
		return result, err
	}

	leadBase := func() *gorm.DB {
		return r.db.Model(&models.Lead{}).Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}
	if err := leadBase().Count(&result.LeadsTotal).Error; err != nil {
		return result, err
	}
	if err := leadBase().Where("status = ?", constants.LeadStatusPending).Count(&result.LeadsPending).Error; err != nil {
		return result, err
	}
	if err := leadBase().Where("status = ?", constants.LeadStatusApproved).Count(&result.LeadsApproved).Error; err != nil {
		return result, err
	}
	if err := leadBase().
		Where("status = ?", constants.LeadStatusApproved).
		Select("COALESCE(SUM(investment_amount), 0)").
		Scan(&result.ApprovedAUM).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Payout{}).
		Where("status = ?", constants.PayoutStatusPending).
		Count(&result.PayoutsPending).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.ContactMessage{}).
		Where("handled = ?", false).
		Count(&result.ContactUnhandled).Error; err != nil {
		return result, err
	}

	return result, nil
}
