package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupDashboardRepositoryTest(t *testing.T) (*GormDashboardRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:dashboard_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Principal{},
		&models.Lead{},
		&models.Payout{},
		&models.ContactMessage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewDashboardRepository(db), db
}

func TestDashboardRepositoryAgentOverviewEmpty(t *testing.T) {
	repo, _ := setupDashboardRepositoryTest(t)

	row, err := repo.GetAgentOverview(42)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if row.LeadsTotal != 0 || row.LeadsApproved != 0 || row.LeadsPending != 0 {
		t.Fatalf("fresh agent should have zero lead counts, got %+v", row)
	}
	if row.TotalAUM != 0 || row.PendingAUM != 0 || row.SIPBook != 0 {
		t.Fatalf("fresh agent should have zero AUM, got aum=%v pending=%v sip=%v", row.TotalAUM, row.PendingAUM, row.SIPBook)
	}
	if row.ActiveCustomers != 0 || row.PendingCustomers != 0 || row.SubAgents != 0 {
		t.Fatalf("fresh agent should have zero customers and sub agents, got %+v", row)
	}
}

func TestDashboardRepositoryAgentOverview(t *testing.T) {
	repo, db := setupDashboardRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	leads := []models.Lead{
		{
			CustomerName: "A", CustomerPhone: "1", CustomerEmail: "a@example.com",
			InvestmentType:   constants.InvestmentTypeSIP,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("10000")),
			Status:           constants.LeadStatusApproved,
			AgentID:          1, CreatedAt: now,
		},
		{
			CustomerName: "B", CustomerPhone: "2", CustomerEmail: "b@example.com",
			InvestmentType:   constants.InvestmentTypeBoth,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("20000")),
			Status:           constants.LeadStatusApproved,
			AgentID:          1, CreatedAt: now,
		},
		{
			CustomerName: "C", CustomerPhone: "3", CustomerEmail: "c@example.com",
			InvestmentType:   constants.InvestmentTypeLumpsum,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("5000")),
			Status:           constants.LeadStatusApproved,
			AgentID:          1, CreatedAt: now,
		},
		{
			// 同一客户的第二条线索，distinct 统计只算一次
			CustomerName: "A", CustomerPhone: "1", CustomerEmail: "a@example.com",
			InvestmentType:   constants.InvestmentTypeSIP,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("7000")),
			Status:           constants.LeadStatusPending,
			AgentID:          1, CreatedAt: now,
		},
		{
			CustomerName: "D", CustomerPhone: "4", CustomerEmail: "d@example.com",
			InvestmentType:   constants.InvestmentTypeSIP,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("9999")),
			Status:           constants.LeadStatusRejected,
			AgentID:          1, CreatedAt: now,
		},
		{
			CustomerName: "E", CustomerPhone: "5", CustomerEmail: "e@example.com",
			InvestmentType:   constants.InvestmentTypeSIP,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("8888")),
			Status:           constants.LeadStatusApproved,
			AgentID:          2, CreatedAt: now,
		},
	}
	if err := db.Create(&leads).Error; err != nil {
		t.Fatalf("create leads failed: %v", err)
	}

	parentID := uint(1)
	sub := models.Principal{
		Name: "Sub", Email: "sub@example.com", PasswordHash: "hash",
		Role: constants.RoleSubAgent, ParentID: &parentID, Approved: true, Active: true,
	}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("create sub agent failed: %v", err)
	}

	row, err := repo.GetAgentOverview(1)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if row.LeadsTotal != 5 {
		t.Fatalf("leads total want 5 got %d", row.LeadsTotal)
	}
	if row.LeadsApproved != 3 || row.LeadsPending != 1 || row.LeadsRejected != 1 {
		t.Fatalf("status counts mismatch: %+v", row)
	}
	// 活跃客户看已通过线索，A 的待审线索只进入 pending 口径
	if row.ActiveCustomers != 3 {
		t.Fatalf("active customers want 3 got %d", row.ActiveCustomers)
	}
	if row.PendingCustomers != 1 {
		t.Fatalf("pending customers want 1 got %d", row.PendingCustomers)
	}
	if row.TotalAUM != 35000 {
		t.Fatalf("total aum want 35000 got %v", row.TotalAUM)
	}
	if row.PendingAUM != 7000 {
		t.Fatalf("pending aum want 7000 got %v", row.PendingAUM)
	}
	// SIP 口径只算 SIP 类型，Both 不计入
	if row.SIPBook != 10000 {
		t.Fatalf("sip book want 10000 got %v", row.SIPBook)
	}
	if row.SubAgents != 1 {
		t.Fatalf("sub agents want 1 got %d", row.SubAgents)
	}
}

func TestDashboardRepositoryAUMTrends(t *testing.T) {
	repo, db := setupDashboardRepositoryTest(t)

	jan := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)

	leads := []models.Lead{
		{
			CustomerName: "A", CustomerPhone: "1", CustomerEmail: "a@example.com",
			InvestmentType:   constants.InvestmentTypeSIP,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("10000")),
			Status:           constants.LeadStatusApproved,
			AgentID:          1, CreatedAt: jan,
		},
		{
			CustomerName: "B", CustomerPhone: "2", CustomerEmail: "b@example.com",
			InvestmentType:   constants.InvestmentTypeSIP,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("4000")),
			Status:           constants.LeadStatusPending,
			AgentID:          1, CreatedAt: jan,
		},
		{
			CustomerName: "C", CustomerPhone: "3", CustomerEmail: "c@example.com",
			InvestmentType:   constants.InvestmentTypeLumpsum,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("20000")),
			Status:           constants.LeadStatusApproved,
			AgentID:          1, CreatedAt: feb,
		},
	}
	if err := db.Create(&leads).Error; err != nil {
		t.Fatalf("create leads failed: %v", err)
	}

	startAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	endAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows, err := repo.GetAUMTrends(1, startAt, endAt)
	if err != nil {
		t.Fatalf("trends failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows len want 2 got %d", len(rows))
	}
	if rows[0].Month != "2026-01" || rows[1].Month != "2026-02" {
		t.Fatalf("months mismatch: %s, %s", rows[0].Month, rows[1].Month)
	}
	if rows[0].LeadsTotal != 2 || rows[0].LeadsApproved != 1 || rows[0].ApprovedAUM != 10000 {
		t.Fatalf("january row mismatch: %+v", rows[0])
	}
	if rows[1].LeadsTotal != 1 || rows[1].LeadsApproved != 1 || rows[1].ApprovedAUM != 20000 {
		t.Fatalf("february row mismatch: %+v", rows[1])
	}
}

func TestDashboardRepositoryPortfolioDistribution(t *testing.T) {
	repo, db := setupDashboardRepositoryTest(t)
	now := time.Now().UTC()

	leads := []models.Lead{
		{
			CustomerName: "A", CustomerPhone: "1", CustomerEmail: "a@example.com",
			InvestmentType:   constants.InvestmentTypeSIP,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("10000")),
			Status:           constants.LeadStatusApproved,
			AgentID:          1, CreatedAt: now,
		},
		{
			CustomerName: "B", CustomerPhone: "2", CustomerEmail: "b@example.com",
			InvestmentType:   constants.InvestmentTypeSIP,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("5000")),
			Status:           constants.LeadStatusApproved,
			AgentID:          1, CreatedAt: now,
		},
		{
			CustomerName: "C", CustomerPhone: "3", CustomerEmail: "c@example.com",
			InvestmentType:   constants.InvestmentTypeLumpsum,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("50000")),
			Status:           constants.LeadStatusApproved,
			AgentID:          1, CreatedAt: now,
		},
		{
			// pending 不计入分布
			CustomerName: "D", CustomerPhone: "4", CustomerEmail: "d@example.com",
			InvestmentType:   constants.InvestmentTypeBoth,
			InvestmentAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("99999")),
			Status:           constants.LeadStatusPending,
			AgentID:          1, CreatedAt: now,
		},
	}
	if err := db.Create(&leads).Error; err != nil {
		t.Fatalf("create leads failed: %v", err)
	}

	rows, err := repo.GetPortfolioDistribution(1)
	if err != nil {
		t.Fatalf("distribution failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows len want 2 got %d", len(rows))
	}
	if rows[0].InvestmentType != constants.InvestmentTypeLumpsum || rows[0].Amount != 50000 {
		t.Fatalf("top row should be lumpsum 50000, got %+v", rows[0])
	}
	if rows[1].InvestmentType != constants.InvestmentTypeSIP || rows[1].Leads != 2 || rows[1].Amount != 15000 {
		t.Fatalf("sip row mismatch: %+v", rows[1])
	}
}
