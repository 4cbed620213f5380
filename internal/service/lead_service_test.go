package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/repository"

	"github.com/shopspring/decimal"
)

func mustMoney(t *testing.T, s string) models.Money {
	t.Helper()
	m, err := models.NewMoneyFromString(s)
	if err != nil {
		t.Fatalf("parse money %s failed: %v", s, err)
	}
	return m
}

func submitTestLead(t *testing.T, svc *LeadService, submitter *models.Principal, amount string) *models.Lead {
	t.Helper()
	lead, err := svc.CreateLead(submitter, CreateLeadInput{
		CustomerName:     "Customer",
		CustomerPhone:    fmt.Sprintf("9%09d", time.Now().UnixNano()%1_000_000_000),
		CustomerEmail:    "customer@example.com",
		InvestmentType:   constants.InvestmentTypeSIP,
		InvestmentAmount: mustMoney(t, amount),
	})
	if err != nil {
		t.Fatalf("create lead failed: %v", err)
	}
	return lead
}

func TestCreateLeadValidation(t *testing.T) {
	db := setupServiceTest(t)
	leadService, _, principalService := newLeadStack(testConfig(), db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)

	base := CreateLeadInput{
		CustomerName:     "Ravi",
		CustomerPhone:    "9000000001",
		CustomerEmail:    "ravi@example.com",
		InvestmentType:   constants.InvestmentTypeSIP,
		InvestmentAmount: mustMoney(t, "10000"),
	}

	t.Run("missing customer fields", func(t *testing.T) {
		input := base
		input.CustomerPhone = ""
		if _, err := leadService.CreateLead(agent, input); !errors.Is(err, ErrLeadCustomerIncomplete) {
			t.Fatalf("want ErrLeadCustomerIncomplete got %v", err)
		}
	})

	t.Run("invalid investment type", func(t *testing.T) {
		input := base
		input.InvestmentType = "crypto"
		if _, err := leadService.CreateLead(agent, input); !errors.Is(err, ErrInvalidInvestmentType) {
			t.Fatalf("want ErrInvalidInvestmentType got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		input := base
		input.InvestmentAmount = mustMoney(t, "0")
		if _, err := leadService.CreateLead(agent, input); !errors.Is(err, ErrInvalidInvestAmount) {
			t.Fatalf("want ErrInvalidInvestAmount got %v", err)
		}
	})

	t.Run("user role cannot submit", func(t *testing.T) {
		user := &models.Principal{Role: constants.RoleUser, Approved: true, Active: true}
		if _, err := leadService.CreateLead(user, base); !errors.Is(err, ErrForbidden) {
			t.Fatalf("want ErrForbidden got %v", err)
		}
	})

	t.Run("unapproved agent cannot submit", func(t *testing.T) {
		pending := registerTestAgent(t, principalService, "pending@example.com")
		if _, err := leadService.CreateLead(pending, base); !errors.Is(err, ErrForbidden) {
			t.Fatalf("want ErrForbidden got %v", err)
		}
	})
}

func TestCreateLeadOwnership(t *testing.T) {
	db := setupServiceTest(t)
	leadService, _, principalService := newLeadStack(testConfig(), db)

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

	own := submitTestLead(t, leadService, agent, "10000")
	if own.AgentID != agent.ID || own.SubAgentID != nil {
		t.Fatalf("agent-submitted lead should have agent_id=%d and no sub_agent_id, got %+v", agent.ID, own)
	}

	delegated := submitTestLead(t, leadService, sub, "20000")
	if delegated.AgentID != agent.ID {
		t.Fatalf("sub-agent lead should belong to parent agent %d, got %d", agent.ID, delegated.AgentID)
	}
	if delegated.SubAgentID == nil || *delegated.SubAgentID != sub.ID {
		t.Fatalf("sub-agent lead should record submitter %d, got %v", sub.ID, delegated.SubAgentID)
	}
	if delegated.Status != constants.LeadStatusPending {
		t.Fatalf("new lead status want pending got %s", delegated.Status)
	}
}

func TestDecideApproveAccruesMonthlyPayout(t *testing.T) {
	db := setupServiceTest(t)
	leadService, _, principalService := newLeadStack(testConfig(), db)
	payoutRepo := repository.NewPayoutRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)

	// 费率 2%，三笔通过的线索合计 35000，入账 700.00
	for _, amount := range []string{"10000", "20000", "5000"} {
		lead := submitTestLead(t, leadService, agent, amount)
		if _, err := leadService.Decide(constants.RoleAdmin, lead.ID, true); err != nil {
			t.Fatalf("decide lead failed: %v", err)
		}
	}

	payout, err := payoutRepo.GetByAgentMonth(agent.ID, time.Now())
	if err != nil {
		t.Fatalf("load payout failed: %v", err)
	}
	if payout == nil {
		t.Fatalf("payout row should exist after approvals")
	}
	if payout.TotalAmount.String() != "700.00" {
		t.Fatalf("payout total want 700.00 got %s", payout.TotalAmount.String())
	}
	if payout.TotalLeads != 3 || payout.ApprovedLeads != 3 {
		t.Fatalf("payout counters want 3/3 got %d/%d", payout.TotalLeads, payout.ApprovedLeads)
	}
	if payout.Status != constants.PayoutStatusPending {
		t.Fatalf("payout status want pending got %s", payout.Status)
	}
	if payout.CommissionRate.String() != "2.00" {
		t.Fatalf("frozen rate want 2.00 got %s", payout.CommissionRate.String())
	}

	commissions, total, err := commissionRepo.List(repository.CommissionListFilter{Page: 1, PageSize: 10, AgentID: agent.ID})
	if err != nil {
		t.Fatalf("list commissions failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("commission rows want 3 got %d", total)
	}
	for _, commission := range commissions {
		if commission.Status != constants.CommissionStatusPending {
			t.Fatalf("commission status want pending got %s", commission.Status)
		}
		if commission.PayoutID != payout.ID {
			t.Fatalf("commission should link payout %d got %d", payout.ID, commission.PayoutID)
		}
	}
}

func TestDecideRejectLeavesNoAccrual(t *testing.T) {
	db := setupServiceTest(t)
	leadService, _, principalService := newLeadStack(testConfig(), db)
	payoutRepo := repository.NewPayoutRepository(db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)

	lead := submitTestLead(t, leadService, agent, "10000")
	decided, err := leadService.Decide(constants.RoleAdmin, lead.ID, false)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if decided.Status != constants.LeadStatusRejected {
		t.Fatalf("status want rejected got %s", decided.Status)
	}

	payout, err := payoutRepo.GetByAgentMonth(agent.ID, time.Now())
	if err != nil {
		t.Fatalf("load payout failed: %v", err)
	}
	if payout != nil {
		t.Fatalf("rejected lead must not create payout, got %+v", payout)
	}

	var commissionCount int64
	db.Model(&models.Commission{}).Count(&commissionCount)
	if commissionCount != 0 {
		t.Fatalf("rejected lead must not create commissions, got %d", commissionCount)
	}
}

func TestDecideGuards(t *testing.T) {
	db := setupServiceTest(t)
	leadService, _, principalService := newLeadStack(testConfig(), db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)
	lead := submitTestLead(t, leadService, agent, "10000")

	if _, err := leadService.Decide(constants.RoleAgent, lead.ID, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin want ErrForbidden got %v", err)
	}
	if _, err := leadService.Decide(constants.RoleAdmin, 9999, true); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("unknown lead want ErrLeadNotFound got %v", err)
	}

	if _, err := leadService.Decide(constants.RoleAdmin, lead.ID, true); err != nil {
		t.Fatalf("first decide failed: %v", err)
	}
	// 终态线索不可重复裁决，重放也不可再次入账
	if _, err := leadService.Decide(constants.RoleAdmin, lead.ID, true); !errors.Is(err, ErrLeadAlreadyDecided) {
		t.Fatalf("replay want ErrLeadAlreadyDecided got %v", err)
	}
	if _, err := leadService.Decide(constants.RoleAdmin, lead.ID, false); !errors.Is(err, ErrLeadAlreadyDecided) {
		t.Fatalf("flip want ErrLeadAlreadyDecided got %v", err)
	}
}

func TestLeadVisibility(t *testing.T) {
	db := setupServiceTest(t)
	leadService, _, principalService := newLeadStack(testConfig(), db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)
	other := registerTestAgent(t, principalService, "other@example.com")
	approveTestAgent(t, principalService, other.ID)
	other, _ = principalService.GetByID(other.ID)

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

	ownLead := submitTestLead(t, leadService, agent, "10000")
	subLead := submitTestLead(t, leadService, sub, "20000")

	if _, err := leadService.GetForPrincipal(agent, subLead.ID); err != nil {
		t.Fatalf("agent should see sub-agent lead: %v", err)
	}
	if _, err := leadService.GetForPrincipal(sub, subLead.ID); err != nil {
		t.Fatalf("sub-agent should see own lead: %v", err)
	}
	// 子代理看不到代理自报的线索，外部代理什么都看不到
	if _, err := leadService.GetForPrincipal(sub, ownLead.ID); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("sub-agent must not see agent lead, got %v", err)
	}
	if _, err := leadService.GetForPrincipal(other, subLead.ID); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("foreign agent must not see lead, got %v", err)
	}

	_, total, err := leadService.ListForPrincipal(agent, repository.LeadListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("agent list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("agent list total want 2 got %d", total)
	}
	_, total, err = leadService.ListForPrincipal(sub, repository.LeadListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("sub list failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("sub list total want 1 got %d", total)
	}
}

func TestReferralFlowEndToEnd(t *testing.T) {
	db := setupServiceTest(t)
	leadService, _, principalService := newLeadStack(testConfig(), db)
	payoutRepo := repository.NewPayoutRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)

	// 代理 10%，子代理自动折半到 5%
	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	if _, err := principalService.SetCommissionRate(constants.RoleAdmin, agent.ID, models.NewMoneyFromDecimal(decimal.NewFromInt(10))); err != nil {
		t.Fatalf("set rate failed: %v", err)
	}
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

	lead := submitTestLead(t, leadService, sub, "50000")
	if _, err := leadService.Decide(constants.RoleAdmin, lead.ID, true); err != nil {
		t.Fatalf("decide failed: %v", err)
	}

	// 子代理代报按其 5% 费率入账，记入上级代理的当月结算单
	payout, err := payoutRepo.GetByAgentMonth(agent.ID, time.Now())
	if err != nil || payout == nil {
		t.Fatalf("load payout failed: %v payout=%v", err, payout)
	}
	if payout.TotalAmount.String() != "2500.00" {
		t.Fatalf("payout total want 2500.00 got %s", payout.TotalAmount.String())
	}

	commission, err := commissionRepo.GetByLeadID(lead.ID)
	if err != nil || commission == nil {
		t.Fatalf("load commission failed: %v", err)
	}
	if commission.Rate.String() != "5.00" {
		t.Fatalf("commission rate want 5.00 got %s", commission.Rate.String())
	}
	if commission.Amount.String() != "2500.00" {
		t.Fatalf("commission amount want 2500.00 got %s", commission.Amount.String())
	}
	if commission.SubAgentID == nil || *commission.SubAgentID != sub.ID {
		t.Fatalf("commission should record sub-agent %d got %v", sub.ID, commission.SubAgentID)
	}
}

func TestDecideConcurrentApprovalsAccumulateOnce(t *testing.T) {
	db := setupServiceTest(t)
	leadService, _, principalService := newLeadStack(testConfig(), db)
	payoutRepo := repository.NewPayoutRepository(db)

	agent := registerTestAgent(t, principalService, "agent@example.com")
	approveTestAgent(t, principalService, agent.ID)
	agent, _ = principalService.GetByID(agent.ID)

	const workers = 50
	leadIDs := make([]uint, 0, workers)
	for i := 0; i < workers; i++ {
		lead, err := leadService.CreateLead(agent, CreateLeadInput{
			CustomerName:     fmt.Sprintf("Customer %d", i),
			CustomerPhone:    fmt.Sprintf("90000000%02d", i),
			CustomerEmail:    fmt.Sprintf("customer%d@example.com", i),
			InvestmentType:   constants.InvestmentTypeSIP,
			InvestmentAmount: mustMoney(t, "1000"),
		})
		if err != nil {
			t.Fatalf("create lead %d failed: %v", i, err)
		}
		leadIDs = append(leadIDs, lead.ID)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for _, id := range leadIDs {
		wg.Add(1)
		go func(leadID uint) {
			defer wg.Done()
			if _, err := leadService.Decide(constants.RoleAdmin, leadID, true); err != nil {
				errCh <- err
			}
		}(id)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent decide failed: %v", err)
	}

	payout, err := payoutRepo.GetByAgentMonth(agent.ID, time.Now())
	if err != nil || payout == nil {
		t.Fatalf("load payout failed: %v payout=%v", err, payout)
	}
	// 50 笔 * 1000 * 2% = 1000.00，全部累加到同一行
	if payout.TotalAmount.String() != "1000.00" {
		t.Fatalf("payout total want 1000.00 got %s", payout.TotalAmount.String())
	}
	if payout.ApprovedLeads != workers {
		t.Fatalf("approved leads want %d got %d", workers, payout.ApprovedLeads)
	}

	var payoutRows int64
	db.Model(&models.Payout{}).Where("agent_id = ?", agent.ID).Count(&payoutRows)
	if payoutRows != 1 {
		t.Fatalf("payout rows want 1 got %d", payoutRows)
	}
}
