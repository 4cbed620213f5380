package service

import (
	"errors"
	"testing"
	"time"

	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/repository"

	"github.com/shopspring/decimal"
)

func TestMarkPaidFlipsCommissions(t *testing.T) {
	db := setupServiceTest(t)
	leadService, payoutService, principalService := newLeadStack(testConfig(), db)
	payoutRepo := repository.NewPayoutRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)

	for _, amount := range []string{"10000", "20000"} {
		lead := submitTestLead(t, leadService, agent, amount)
		if _, err := leadService.Decide(constants.RoleAdmin, lead.ID, true); err != nil {
			t.Fatalf("decide failed: %v", err)
		}
	}
	payout, err := payoutRepo.GetByAgentMonth(agent.ID, time.Now())
	if err != nil || payout == nil {
		t.Fatalf("load payout failed: %v payout=%v", err, payout)
	}

	if _, err := payoutService.MarkPaid(constants.RoleAgent, payout.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin want ErrForbidden got %v", err)
	}
	if _, err := payoutService.MarkPaid(constants.RoleAdmin, 9999); !errors.Is(err, ErrPayoutNotFound) {
		t.Fatalf("unknown payout want ErrPayoutNotFound got %v", err)
	}

	paid, err := payoutService.MarkPaid(constants.RoleAdmin, payout.ID)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Status != constants.PayoutStatusPaid {
		t.Fatalf("status want paid got %s", paid.Status)
	}

	commissions, _, err := commissionRepo.List(repository.CommissionListFilter{Page: 1, PageSize: 10, PayoutID: payout.ID})
	if err != nil {
		t.Fatalf("list commissions failed: %v", err)
	}
	if len(commissions) != 2 {
		t.Fatalf("commission rows want 2 got %d", len(commissions))
	}
	for _, commission := range commissions {
		if commission.Status != constants.CommissionStatusPaid {
			t.Fatalf("commission status want paid got %s", commission.Status)
		}
	}

	// 重复支付直接拒绝
	if _, err := payoutService.MarkPaid(constants.RoleAdmin, payout.ID); !errors.Is(err, ErrPayoutAlreadyPaid) {
		t.Fatalf("replay want ErrPayoutAlreadyPaid got %v", err)
	}
}

func TestAgentLeadUsesFrozenPayoutRate(t *testing.T) {
	db := setupServiceTest(t)
	leadService, _, principalService := newLeadStack(testConfig(), db)
	payoutRepo := repository.NewPayoutRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)

	first := submitTestLead(t, leadService, agent, "10000")
	if _, err := leadService.Decide(constants.RoleAdmin, first.ID, true); err != nil {
		t.Fatalf("decide first failed: %v", err)
	}

	// 月中调高费率，当月结算行仍按定格费率入账
	if _, err := principalService.SetCommissionRate(constants.RoleAdmin, agent.ID, models.NewMoneyFromDecimal(decimal.NewFromInt(10))); err != nil {
		t.Fatalf("set rate failed: %v", err)
	}
	second := submitTestLead(t, leadService, agent, "10000")
	if _, err := leadService.Decide(constants.RoleAdmin, second.ID, true); err != nil {
		t.Fatalf("decide second failed: %v", err)
	}

	payout, err := payoutRepo.GetByAgentMonth(agent.ID, time.Now())
	if err != nil || payout == nil {
		t.Fatalf("load payout failed: %v payout=%v", err, payout)
	}
	if payout.CommissionRate.String() != "2.00" {
		t.Fatalf("frozen rate want 2.00 got %s", payout.CommissionRate.String())
	}
	// 两笔各按 2% 入账
	if payout.TotalAmount.String() != "400.00" {
		t.Fatalf("payout total want 400.00 got %s", payout.TotalAmount.String())
	}

	commission, err := commissionRepo.GetByLeadID(second.ID)
	if err != nil || commission == nil {
		t.Fatalf("load second commission failed: %v", err)
	}
	if commission.Rate.String() != "2.00" {
		t.Fatalf("second commission rate want 2.00 got %s", commission.Rate.String())
	}
}

func TestSubAgentLeadUsesCurrentSubRate(t *testing.T) {
	db := setupServiceTest(t)
	leadService, _, principalService := newLeadStack(testConfig(), db)
	commissionRepo := repository.NewCommissionRepository(db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)
	sub, err := principalService.Register(RegisterInput{
		Name:            "Sub",
		Email:           "sub@example.com",
		Password:        "Agent12345",
		Role:            constants.RoleSubAgent,
		ParentAgentCode: *agent.AgentCode,
	})
	if err != nil {
		t.Fatalf("register sub failed: %v", err)
	}

	// 上级把子代理费率调到 3%，随后子代理的代报按 3% 入账
	if _, err := principalService.UpdateSubAgentRate(agent.ID, sub.ID, models.NewMoneyFromDecimal(decimal.NewFromInt(3))); err != nil {
		t.Fatalf("update sub rate failed: %v", err)
	}
	sub, _ = principalService.GetByID(sub.ID)

	lead := submitTestLead(t, leadService, sub, "10000")
	if _, err := leadService.Decide(constants.RoleAdmin, lead.ID, true); err != nil {
		t.Fatalf("decide failed: %v", err)
	}

	commission, err := commissionRepo.GetByLeadID(lead.ID)
	if err != nil || commission == nil {
		t.Fatalf("load commission failed: %v", err)
	}
	if commission.Rate.String() != "3.00" {
		t.Fatalf("commission rate want 3.00 got %s", commission.Rate.String())
	}
	if commission.Amount.String() != "300.00" {
		t.Fatalf("commission amount want 300.00 got %s", commission.Amount.String())
	}
}

func TestPayoutStatistics(t *testing.T) {
	db := setupServiceTest(t)
	_, payoutService, _ := newLeadStack(testConfig(), db)

	now := time.Now().UTC()
	thisMonth := models.MonthOf(now)
	lastMonth := models.MonthOf(now.AddDate(0, -1, 0))

	rows := []models.Payout{
		{
			AgentID:        1,
			Month:          thisMonth,
			CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(2)),
			TotalLeads:     3,
			ApprovedLeads:  2,
			TotalAmount:    models.NewMoneyFromDecimal(decimal.RequireFromString("700")),
			Status:         constants.PayoutStatusPending,
		},
		{
			AgentID:        2,
			Month:          thisMonth,
			CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
			TotalLeads:     1,
			ApprovedLeads:  1,
			TotalAmount:    models.NewMoneyFromDecimal(decimal.RequireFromString("250")),
			Status:         constants.PayoutStatusPaid,
		},
		{
			AgentID:        1,
			Month:          lastMonth,
			CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(2)),
			TotalLeads:     2,
			ApprovedLeads:  2,
			TotalAmount:    models.NewMoneyFromDecimal(decimal.RequireFromString("120.50")),
			Status:         constants.PayoutStatusPaid,
		},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed payouts failed: %v", err)
	}

	t.Run("platform wide", func(t *testing.T) {
		stats, err := payoutService.Statistics(0, 6)
		if err != nil {
			t.Fatalf("statistics failed: %v", err)
		}
		if stats.TotalAmount != "1070.50" {
			t.Fatalf("total want 1070.50 got %s", stats.TotalAmount)
		}
		if stats.PendingAmount != "700.00" {
			t.Fatalf("pending want 700.00 got %s", stats.PendingAmount)
		}
		if stats.PaidAmount != "370.50" {
			t.Fatalf("paid want 370.50 got %s", stats.PaidAmount)
		}
		if len(stats.Months) != 2 {
			t.Fatalf("months want 2 got %d", len(stats.Months))
		}
	})

	t.Run("single agent", func(t *testing.T) {
		stats, err := payoutService.Statistics(1, 6)
		if err != nil {
			t.Fatalf("statistics failed: %v", err)
		}
		if stats.TotalAmount != "820.50" {
			t.Fatalf("agent total want 820.50 got %s", stats.TotalAmount)
		}
	})

	t.Run("window excludes old months", func(t *testing.T) {
		stats, err := payoutService.Statistics(1, 1)
		if err != nil {
			t.Fatalf("statistics failed: %v", err)
		}
		if stats.TotalAmount != "700.00" {
			t.Fatalf("windowed total want 700.00 got %s", stats.TotalAmount)
		}
	})

	t.Run("empty agent", func(t *testing.T) {
		stats, err := payoutService.Statistics(42, 6)
		if err != nil {
			t.Fatalf("statistics failed: %v", err)
		}
		if stats.TotalAmount != "0.00" || len(stats.Months) != 0 {
			t.Fatalf("empty agent want zeros got %+v", stats)
		}
	})
}

func TestListForAgent(t *testing.T) {
	db := setupServiceTest(t)
	_, payoutService, _ := newLeadStack(testConfig(), db)

	now := time.Now().UTC()
	rows := []models.Payout{
		{AgentID: 1, Month: models.MonthOf(now), CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(2)), TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)), Status: constants.PayoutStatusPending},
		{AgentID: 1, Month: models.MonthOf(now.AddDate(0, -1, 0)), CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(2)), TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(20)), Status: constants.PayoutStatusPaid},
		{AgentID: 2, Month: models.MonthOf(now), CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(2)), TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(30)), Status: constants.PayoutStatusPending},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed payouts failed: %v", err)
	}

	payouts, err := payoutService.ListForAgent(1)
	if err != nil {
		t.Fatalf("list for agent failed: %v", err)
	}
	if len(payouts) != 2 {
		t.Fatalf("rows want 2 got %d", len(payouts))
	}
	for _, payout := range payouts {
		if payout.AgentID != 1 {
			t.Fatalf("foreign payout leaked: %+v", payout)
		}
	}
}
