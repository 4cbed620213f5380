package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fundlink-next/internal/cache"
	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dashboardDefaultCacheTTL = 45 * time.Second
	dashboardTrendMonths     = 6
	dashboardRecentLeads     = 5
	dashboardCommissionDays  = 30
)

// DashboardService 仪表盘服务
// 说明：聚合代理与管理端首页经营数据，所有统计对零数据容错。
type DashboardService struct {
	cfg            *config.Config
	repo           repository.DashboardRepository
	leadRepo       repository.LeadRepository
	commissionRepo repository.CommissionRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(
	cfg *config.Config,
	repo repository.DashboardRepository,
	leadRepo repository.LeadRepository,
	commissionRepo repository.CommissionRepository,
) *DashboardService {
	return &DashboardService{
		cfg:            cfg,
		repo:           repo,
		leadRepo:       leadRepo,
		commissionRepo: commissionRepo,
	}
}

// AgentDashboardResponse 代理仪表盘响应
type AgentDashboardResponse struct {
	KPI          AgentDashboardKPI     `json:"kpi"`
	GoalProgress GoalProgress          `json:"goal_progress"`
	AUMTrend     []AUMTrendPoint       `json:"aum_trend"`
	Portfolio    []PortfolioSlice      `json:"portfolio"`
	RecentLeads  []RecentLeadItem      `json:"recent_leads"`
}

// AgentDashboardKPI 代理核心指标
type AgentDashboardKPI struct {
	LeadsTotal       int64  `json:"leads_total"`
	LeadsApproved    int64  `json:"leads_approved"`
	LeadsPending     int64  `json:"leads_pending"`
	LeadsRejected    int64  `json:"leads_rejected"`
	ActiveCustomers  int64  `json:"active_customers"`
	PendingCustomers int64  `json:"pending_customers"`
	TotalAUM         string `json:"total_aum"`
	PendingAUM       string `json:"pending_aum"`
	SIPBook          string `json:"sip_book"`
	Commission30d    string `json:"commission_30d"`
	SubAgents        int64  `json:"sub_agents"`
}

// GoalProgress 目标达成进度（百分比，封顶 100）
type GoalProgress struct {
	MonthlyTarget   string `json:"monthly_target"`
	MonthlyProgress string `json:"monthly_progress"`
	AUMTarget       string `json:"aum_target"`
	AUMProgress     string `json:"aum_progress"`
}

// AUMTrendPoint 月度 AUM 趋势点
type AUMTrendPoint struct {
	Month         string `json:"month"`
	LeadsTotal    int64  `json:"leads_total"`
	LeadsApproved int64  `json:"leads_approved"`
	ApprovedAUM   string `json:"approved_aum"`
}

// PortfolioSlice 投资类型分布项
type PortfolioSlice struct {
	InvestmentType string `json:"investment_type"`
	Leads          int64  `json:"leads"`
	Amount         string `json:"amount"`
	Share          string `json:"share"`
}

// RecentLeadItem 最近线索项
type RecentLeadItem struct {
	ID               uint   `json:"id"`
	CustomerName     string `json:"customer_name"`
	InvestmentType   string `json:"investment_type"`
	InvestmentAmount string `json:"investment_amount"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

// AdminOverviewResponse 管理端总览响应
type AdminOverviewResponse struct {
	AgentsTotal      int64  `json:"agents_total"`
	SubAgentsTotal   int64  `json:"sub_agents_total"`
	PendingApprovals int64  `json:"pending_approvals"`
	LeadsTotal       int64  `json:"leads_total"`
	LeadsPending     int64  `json:"leads_pending"`
	LeadsApproved    int64  `json:"leads_approved"`
	ApprovedAUM      string `json:"approved_aum"`
	PayoutsPending   int64  `json:"payouts_pending"`
	ContactUnhandled int64  `json:"contact_unhandled"`
}

// GetAgentDashboard 获取代理仪表盘
func (s *DashboardService) GetAgentDashboard(ctx context.Context, agent *models.Principal, forceRefresh bool) (*AgentDashboardResponse, error) {
	if s == nil || s.repo == nil || agent == nil {
		return &AgentDashboardResponse{}, nil
	}

	cacheKey := fmt.Sprintf("dashboard:agent:%d", agent.ID)
	if !forceRefresh {
		var cached AgentDashboardResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetAgentOverview(agent.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	trendStart := models.MonthOf(now.AddDate(0, -(dashboardTrendMonths - 1), 0))
	trendEnd := models.MonthOf(now).AddDate(0, 1, 0)
	trendRows, err := s.repo.GetAUMTrends(agent.ID, trendStart, trendEnd)
	if err != nil {
		return nil, err
	}

	portfolioRows, err := s.repo.GetPortfolioDistribution(agent.ID)
	if err != nil {
		return nil, err
	}

	recentLeads, err := s.leadRepo.ListRecentForAgent(agent.ID, dashboardRecentLeads)
	if err != nil {
		return nil, err
	}

	commission30d, err := s.commissionRepo.SumAmountSince(agent.ID, now.AddDate(0, 0, -dashboardCommissionDays))
	if err != nil {
		return nil, err
	}

	response := &AgentDashboardResponse{
		KPI: AgentDashboardKPI{
			LeadsTotal:       overview.LeadsTotal,
			LeadsApproved:    overview.LeadsApproved,
			LeadsPending:     overview.LeadsPending,
			LeadsRejected:    overview.LeadsRejected,
			ActiveCustomers:  overview.ActiveCustomers,
			PendingCustomers: overview.PendingCustomers,
			TotalAUM:         formatMoneyValue(overview.TotalAUM),
			PendingAUM:       formatMoneyValue(overview.PendingAUM),
			SIPBook:          formatMoneyValue(overview.SIPBook),
			Commission30d:    commission30d.StringFixed(2),
			SubAgents:        overview.SubAgents,
		},
		GoalProgress: s.buildGoalProgress(commission30d, overview.TotalAUM),
		AUMTrend:     make([]AUMTrendPoint, 0, len(trendRows)),
		Portfolio:    make([]PortfolioSlice, 0, len(portfolioRows)),
		RecentLeads:  make([]RecentLeadItem, 0, len(recentLeads)),
	}

	for _, row := range trendRows {
		response.AUMTrend = append(response.AUMTrend, AUMTrendPoint{
			Month:         row.Month,
			LeadsTotal:    row.LeadsTotal,
			LeadsApproved: row.LeadsApproved,
			ApprovedAUM:   formatMoneyValue(row.ApprovedAUM),
		})
	}

	portfolioTotal := 0.0
	for _, row := range portfolioRows {
		portfolioTotal += row.Amount
	}
	for _, row := range portfolioRows {
		share := 0.0
		if portfolioTotal > 0 {
			share = row.Amount / portfolioTotal * 100
		}
		response.Portfolio = append(response.Portfolio, PortfolioSlice{
			InvestmentType: row.InvestmentType,
			Leads:          row.Leads,
			Amount:         formatMoneyValue(row.Amount),
			Share:          formatPercentValue(share),
		})
	}

	for _, lead := range recentLeads {
		response.RecentLeads = append(response.RecentLeads, RecentLeadItem{
			ID:               lead.ID,
			CustomerName:     lead.CustomerName,
			InvestmentType:   lead.InvestmentType,
			InvestmentAmount: lead.InvestmentAmount.String(),
			Status:           lead.Status,
			CreatedAt:        lead.CreatedAt.Format(time.RFC3339),
		})
	}

	_ = cache.SetJSON(ctx, cacheKey, response, s.cacheTTL())
	return response, nil
}

// GetAdminOverview 获取管理端总览（窗口为最近 30 天）
func (s *DashboardService) GetAdminOverview(ctx context.Context, forceRefresh bool) (*AdminOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &AdminOverviewResponse{}, nil
	}

	cacheKey := "dashboard:admin:overview"
	if !forceRefresh {
		var cached AdminOverviewResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	endAt := time.Now().UTC()
	startAt := endAt.AddDate(0, 0, -dashboardCommissionDays)
	row, err := s.repo.GetAdminOverview(startAt, endAt)
	if err != nil {
		return nil, err
	}

	response := &AdminOverviewResponse{
		AgentsTotal:      row.AgentsTotal,
		SubAgentsTotal:   row.SubAgentsTotal,
		PendingApprovals: row.PendingApprovals,
		LeadsTotal:       row.LeadsTotal,
		LeadsPending:     row.LeadsPending,
		LeadsApproved:    row.LeadsApproved,
		ApprovedAUM:      formatMoneyValue(row.ApprovedAUM),
		PayoutsPending:   row.PayoutsPending,
		ContactUnhandled: row.ContactUnhandled,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, s.cacheTTL())
	return response, nil
}

func (s *DashboardService) buildGoalProgress(commission30d decimal.Decimal, totalAUM float64) GoalProgress {
	monthlyTarget := parseGoalTarget(s.cfg.Dashboard.MonthlyGoalTarget)
	aumTarget := parseGoalTarget(s.cfg.Dashboard.AUMGoalTarget)

	monthlyProgress := decimal.Zero
	if monthlyTarget.GreaterThan(decimal.Zero) {
		monthlyProgress = commission30d.Div(monthlyTarget).Mul(decimal.NewFromInt(100))
	}
	aumProgress := decimal.Zero
	if aumTarget.GreaterThan(decimal.Zero) {
		aumProgress = decimal.NewFromFloat(totalAUM).Div(aumTarget).Mul(decimal.NewFromInt(100))
	}

	return GoalProgress{
		MonthlyTarget:   monthlyTarget.StringFixed(2),
		MonthlyProgress: capPercent(monthlyProgress).StringFixed(2),
		AUMTarget:       aumTarget.StringFixed(2),
		AUMProgress:     capPercent(aumProgress).StringFixed(2),
	}
}

func (s *DashboardService) cacheTTL() time.Duration {
	if s.cfg != nil && s.cfg.Dashboard.CacheTTLSeconds > 0 {
		return time.Duration(s.cfg.Dashboard.CacheTTLSeconds) * time.Second
	}
	return dashboardDefaultCacheTTL
}

func parseGoalTarget(raw string) decimal.Decimal {
	target, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return target
}

// capPercent 百分比封顶 100
func capPercent(value decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	if value.GreaterThan(hundred) {
		return hundred
	}
	if value.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return value
}

func formatMoneyValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatPercentValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
