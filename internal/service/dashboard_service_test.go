package service

import (
	"context"
	"testing"

	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/repository"

	"gorm.io/gorm"
)

func newDashboardService(cfg *config.Config, db *gorm.DB) *DashboardService {
	return NewDashboardService(
		cfg,
		repository.NewDashboardRepository(db),
		repository.NewLeadRepository(db),
		repository.NewCommissionRepository(db),
	)
}

func TestAgentDashboardZeroState(t *testing.T) {
	db := setupServiceTest(t)
	cfg := testConfig()
	_, _, principalService := newLeadStack(cfg, db)
	dashboardService := newDashboardService(cfg, db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)

	resp, err := dashboardService.GetAgentDashboard(context.Background(), agent, true)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if resp.KPI.LeadsTotal != 0 || resp.KPI.SubAgents != 0 {
		t.Fatalf("zero state KPI want zeros got %+v", resp.KPI)
	}
	if resp.KPI.TotalAUM != "0.00" || resp.KPI.Commission30d != "0.00" {
		t.Fatalf("zero state amounts want 0.00 got aum=%s commission=%s", resp.KPI.TotalAUM, resp.KPI.Commission30d)
	}
	if len(resp.AUMTrend) != 0 || len(resp.Portfolio) != 0 || len(resp.RecentLeads) != 0 {
		t.Fatalf("zero state slices want empty got %+v", resp)
	}
	if resp.GoalProgress.MonthlyProgress != "0.00" || resp.GoalProgress.AUMProgress != "0.00" {
		t.Fatalf("zero state progress want 0.00 got %+v", resp.GoalProgress)
	}
}

func TestAgentDashboardPopulated(t *testing.T) {
	db := setupServiceTest(t)
	cfg := testConfig()
	leadService, _, principalService := newLeadStack(cfg, db)
	dashboardService := newDashboardService(cfg, db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)
	if _, err := principalService.Register(RegisterInput{
		Name:            "Sub",
		Email:           "sub@example.com",
		Password:        "Agent12345",
		Role:            constants.RoleSubAgent,
		ParentAgentCode: *agent.AgentCode,
	}); err != nil {
		t.Fatalf("register sub failed: %v", err)
	}

	approved := submitTestLead(t, leadService, agent, "50000")
	if _, err := leadService.Decide(constants.RoleAdmin, approved.ID, true); err != nil {
		t.Fatalf("decide approve failed: %v", err)
	}
	rejected := submitTestLead(t, leadService, agent, "20000")
	if _, err := leadService.Decide(constants.RoleAdmin, rejected.ID, false); err != nil {
		t.Fatalf("decide reject failed: %v", err)
	}
	submitTestLead(t, leadService, agent, "10000")

	resp, err := dashboardService.GetAgentDashboard(context.Background(), agent, true)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}

	kpi := resp.KPI
	if kpi.LeadsTotal != 3 || kpi.LeadsApproved != 1 || kpi.LeadsPending != 1 || kpi.LeadsRejected != 1 {
		t.Fatalf("lead counts want 3/1/1/1 got %+v", kpi)
	}
	if kpi.SubAgents != 1 {
		t.Fatalf("sub agents want 1 got %d", kpi.SubAgents)
	}
	// AUM 只统计已通过的线索，待审线索单独汇总
	if kpi.TotalAUM != "50000.00" {
		t.Fatalf("total aum want 50000.00 got %s", kpi.TotalAUM)
	}
	if kpi.PendingAUM != "10000.00" {
		t.Fatalf("pending aum want 10000.00 got %s", kpi.PendingAUM)
	}
	// 所有测试线索同名客户，去重后各口径各 1 人
	if kpi.ActiveCustomers != 1 || kpi.PendingCustomers != 1 {
		t.Fatalf("customer counts want 1/1 got %+v", kpi)
	}
	// 结算单未支付，近 30 天佣金不计入
	if kpi.Commission30d != "0.00" {
		t.Fatalf("commission 30d want 0.00 got %s", kpi.Commission30d)
	}
	if resp.GoalProgress.MonthlyProgress != "0.00" {
		t.Fatalf("monthly progress want 0.00 got %s", resp.GoalProgress.MonthlyProgress)
	}

	if len(resp.AUMTrend) == 0 {
		t.Fatalf("aum trend want rows got none")
	}
	last := resp.AUMTrend[len(resp.AUMTrend)-1]
	if last.LeadsTotal != 3 || last.LeadsApproved != 1 || last.ApprovedAUM != "50000.00" {
		t.Fatalf("trend current month want 3/1/50000.00 got %+v", last)
	}

	if len(resp.Portfolio) != 1 {
		t.Fatalf("portfolio slices want 1 got %d", len(resp.Portfolio))
	}
	if resp.Portfolio[0].InvestmentType != constants.InvestmentTypeSIP || resp.Portfolio[0].Share != "100.00" {
		t.Fatalf("portfolio want SIP/100.00 got %+v", resp.Portfolio[0])
	}
	// SIP 口径与已通过 AUM 一致
	if kpi.SIPBook != "50000.00" {
		t.Fatalf("sip book want 50000.00 got %s", kpi.SIPBook)
	}

	if len(resp.RecentLeads) != 3 {
		t.Fatalf("recent leads want 3 got %d", len(resp.RecentLeads))
	}
}

func TestAgentDashboardCommissionCountsPaidOnly(t *testing.T) {
	db := setupServiceTest(t)
	cfg := testConfig()
	leadService, payoutService, principalService := newLeadStack(cfg, db)
	dashboardService := newDashboardService(cfg, db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)

	lead := submitTestLead(t, leadService, agent, "10000")
	if _, err := leadService.Decide(constants.RoleAdmin, lead.ID, true); err != nil {
		t.Fatalf("decide approve failed: %v", err)
	}

	// 佣金已入账但结算单未支付，近 30 天口径为零
	resp, err := dashboardService.GetAgentDashboard(context.Background(), agent, true)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if resp.KPI.Commission30d != "0.00" {
		t.Fatalf("commission 30d before settlement want 0.00 got %s", resp.KPI.Commission30d)
	}

	payouts, err := payoutService.ListForAgent(agent.ID)
	if err != nil {
		t.Fatalf("list payouts failed: %v", err)
	}
	if len(payouts) != 1 {
		t.Fatalf("payouts want 1 got %d", len(payouts))
	}
	if _, err := payoutService.MarkPaid(constants.RoleAdmin, payouts[0].ID); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	// 支付后 2% 佣金进入窗口
	resp, err = dashboardService.GetAgentDashboard(context.Background(), agent, true)
	if err != nil {
		t.Fatalf("dashboard after settlement failed: %v", err)
	}
	if resp.KPI.Commission30d != "200.00" {
		t.Fatalf("commission 30d after settlement want 200.00 got %s", resp.KPI.Commission30d)
	}
}

func TestAdminOverview(t *testing.T) {
	db := setupServiceTest(t)
	cfg := testConfig()
	leadService, _, principalService := newLeadStack(cfg, db)
	dashboardService := newDashboardService(cfg, db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)
	if _, err := principalService.Register(RegisterInput{
		Name:            "Sub",
		Email:           "sub@example.com",
		Password:        "Agent12345",
		Role:            constants.RoleSubAgent,
		ParentAgentCode: *agent.AgentCode,
	}); err != nil {
		t.Fatalf("register sub failed: %v", err)
	}
	// 待审批代理
	if _, err := principalService.Register(RegisterInput{
		Name:     "Pending",
		Email:    "pending@example.com",
		Password: "Agent12345",
		Role:     constants.RoleAgent,
	}); err != nil {
		t.Fatalf("register pending agent failed: %v", err)
	}

	approved := submitTestLead(t, leadService, agent, "30000")
	if _, err := leadService.Decide(constants.RoleAdmin, approved.ID, true); err != nil {
		t.Fatalf("decide failed: %v", err)
	}
	submitTestLead(t, leadService, agent, "5000")

	resp, err := dashboardService.GetAdminOverview(context.Background(), true)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if resp.AgentsTotal != 2 || resp.SubAgentsTotal != 1 || resp.PendingApprovals != 1 {
		t.Fatalf("principal counts want 2/1/1 got %+v", resp)
	}
	if resp.LeadsTotal != 2 || resp.LeadsApproved != 1 || resp.LeadsPending != 1 {
		t.Fatalf("lead counts want 2/1/1 got %+v", resp)
	}
	if resp.ApprovedAUM != "30000.00" {
		t.Fatalf("approved aum want 30000.00 got %s", resp.ApprovedAUM)
	}
	if resp.PayoutsPending != 1 {
		t.Fatalf("payouts pending want 1 got %d", resp.PayoutsPending)
	}
}
