package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// setupServiceTest 打开独立的内存库并迁移全部业务表。
// 共享缓存模式下限制单连接，避免并发用例跨连接看不到未提交数据。
func setupServiceTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%s_%d?mode=memory&cache=shared", sanitizeTestName(t.Name()), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Principal{},
		&models.Lead{},
		&models.Payout{},
		&models.Commission{},
		&models.ContactMessage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func sanitizeTestName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{
		MinLength:     8,
		RequireNumber: true,
	}
	cfg.Commission.DefaultAgentRate = "2"
	cfg.Commission.SubAgentRateFactor = "0.5"
	cfg.JWT.SecretKey = "test-secret-key-0123456789abcdef"
	cfg.JWT.ExpireHours = 1
	cfg.Dashboard.MonthlyGoalTarget = "100000"
	cfg.Dashboard.AUMGoalTarget = "10000000"
	return cfg
}

func newPrincipalService(cfg *config.Config, db *gorm.DB) (*PrincipalService, repository.PrincipalRepository) {
	repo := repository.NewPrincipalRepository(db)
	return NewPrincipalService(cfg, repo, nil), repo
}

func newLeadStack(cfg *config.Config, db *gorm.DB) (*LeadService, *PayoutService, *PrincipalService) {
	principalRepo := repository.NewPrincipalRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)

	payoutService := NewPayoutService(cfg, payoutRepo, commissionRepo, principalRepo)
	leadService := NewLeadService(cfg, leadRepo, principalRepo, payoutService, nil)
	principalService := NewPrincipalService(cfg, principalRepo, nil)
	return leadService, payoutService, principalService
}
