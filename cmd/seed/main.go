package main

import (
	"fmt"

	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/logger"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/repository"
	"github.com/fundlink-next/internal/service"

	"github.com/shopspring/decimal"
)

// 演示数据入口：走正式的业务服务写入，保证层级、编号与佣金入账口径
// 与线上一致。重复执行时按邮箱跳过已存在的账号。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitDefaultAdmin("admin@fundlink.local", "Admin@12345"); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	principalRepo := repository.NewPrincipalRepository(models.DB)
	leadRepo := repository.NewLeadRepository(models.DB)
	payoutRepo := repository.NewPayoutRepository(models.DB)
	commissionRepo := repository.NewCommissionRepository(models.DB)
	contactRepo := repository.NewContactMessageRepository(models.DB)

	principalService := service.NewPrincipalService(cfg, principalRepo, nil)
	payoutService := service.NewPayoutService(cfg, payoutRepo, commissionRepo, principalRepo)
	leadService := service.NewLeadService(cfg, leadRepo, principalRepo, payoutService, nil)
	contactService := service.NewContactService(contactRepo)

	// 代理，管理员审批后分配编号与佣金率
	agents := []struct {
		Name     string
		Email    string
		Rate     string
		Approved bool
	}{
		{Name: "Asha Mehta", Email: "asha@fundlink.local", Rate: "10", Approved: true},
		{Name: "Rahul Nair", Email: "rahul@fundlink.local", Rate: "8", Approved: true},
		{Name: "Priya Iyer", Email: "priya@fundlink.local", Rate: "", Approved: false},
	}

	agentCodes := map[string]string{}
	for _, seed := range agents {
		existing, err := principalRepo.GetByEmail(seed.Email)
		if err != nil {
			stdLog.Printf("Failed to look up %s: %v", seed.Email, err)
			continue
		}
		var agent *models.Principal
		if existing != nil {
			agent = existing
			stdLog.Printf("Agent already exists: %s", seed.Email)
		} else {
			agent, err = principalService.Register(service.RegisterInput{
				Name:     seed.Name,
				Email:    seed.Email,
				Password: "Agent@12345",
				Phone:    "+91-9800000000",
				Role:     constants.RoleAgent,
			})
			if err != nil {
				stdLog.Printf("Failed to register agent %s: %v", seed.Email, err)
				continue
			}
			stdLog.Printf("Created agent: %s", seed.Email)
		}

		if seed.Approved && !agent.Approved {
			agent, err = principalService.Approve(constants.RoleAdmin, agent.ID, true)
			if err != nil {
				stdLog.Printf("Failed to approve agent %s: %v", seed.Email, err)
				continue
			}
			stdLog.Printf("Approved agent: %s", seed.Email)
		}
		if seed.Rate != "" {
			rate := models.NewMoneyFromDecimal(decimal.RequireFromString(seed.Rate))
			if agent, err = principalService.SetCommissionRate(constants.RoleAdmin, agent.ID, rate); err != nil {
				stdLog.Printf("Failed to set rate for %s: %v", seed.Email, err)
			}
		}
		if agent.AgentCode != nil {
			agentCodes[seed.Email] = *agent.AgentCode
		}
	}

	// 子代理挂在过审代理之下，注册即过审并按系数折算佣金率
	subAgents := []struct {
		Name        string
		Email       string
		ParentEmail string
	}{
		{Name: "Vikram Shah", Email: "vikram@fundlink.local", ParentEmail: "asha@fundlink.local"},
		{Name: "Meera Pillai", Email: "meera@fundlink.local", ParentEmail: "asha@fundlink.local"},
		{Name: "Arjun Rao", Email: "arjun@fundlink.local", ParentEmail: "rahul@fundlink.local"},
	}

	subAgentIDs := map[string]uint{}
	for _, seed := range subAgents {
		existing, err := principalRepo.GetByEmail(seed.Email)
		if err != nil {
			stdLog.Printf("Failed to look up %s: %v", seed.Email, err)
			continue
		}
		if existing != nil {
			subAgentIDs[seed.Email] = existing.ID
			stdLog.Printf("Sub-agent already exists: %s", seed.Email)
			continue
		}
		parentCode, ok := agentCodes[seed.ParentEmail]
		if !ok {
			stdLog.Printf("Skip sub-agent %s: parent %s has no agent code", seed.Email, seed.ParentEmail)
			continue
		}
		subAgent, err := principalService.Register(service.RegisterInput{
			Name:            seed.Name,
			Email:           seed.Email,
			Password:        "Agent@12345",
			Phone:           "+91-9810000000",
			Role:            constants.RoleSubAgent,
			ParentAgentCode: parentCode,
		})
		if err != nil {
			stdLog.Printf("Failed to register sub-agent %s: %v", seed.Email, err)
			continue
		}
		subAgentIDs[seed.Email] = subAgent.ID
		stdLog.Printf("Created sub-agent: %s under %s", seed.Email, parentCode)
	}

	// 线索：部分待审、部分已通过（触发佣金入账）、部分驳回
	leads := []struct {
		SubmitterEmail string
		Customer       string
		Phone          string
		Type           string
		Amount         string
		Decision       string // "", "approve", "reject"
	}{
		{SubmitterEmail: "asha@fundlink.local", Customer: "Suresh Kumar", Phone: "+91-9000000001", Type: constants.InvestmentTypeSIP, Amount: "25000", Decision: "approve"},
		{SubmitterEmail: "asha@fundlink.local", Customer: "Lakshmi Devi", Phone: "+91-9000000002", Type: constants.InvestmentTypeLumpsum, Amount: "150000", Decision: ""},
		{SubmitterEmail: "vikram@fundlink.local", Customer: "Ravi Teja", Phone: "+91-9000000003", Type: constants.InvestmentTypeMutualFunds, Amount: "50000", Decision: "approve"},
		{SubmitterEmail: "meera@fundlink.local", Customer: "Anita Joshi", Phone: "+91-9000000004", Type: constants.InvestmentTypeBoth, Amount: "75000", Decision: "reject"},
		{SubmitterEmail: "rahul@fundlink.local", Customer: "Mohan Das", Phone: "+91-9000000005", Type: constants.InvestmentTypeSIP, Amount: "30000", Decision: "approve"},
		{SubmitterEmail: "arjun@fundlink.local", Customer: "Kavita Singh", Phone: "+91-9000000006", Type: constants.InvestmentTypeLumpsum, Amount: "90000", Decision: ""},
	}

	leadCount := 0
	for _, seed := range leads {
		submitter, err := principalRepo.GetByEmail(seed.SubmitterEmail)
		if err != nil || submitter == nil {
			stdLog.Printf("Skip lead for %s: submitter not found", seed.Customer)
			continue
		}
		var existingCount int64
		models.DB.Model(&models.Lead{}).
			Where("customer_phone = ?", seed.Phone).
			Count(&existingCount)
		if existingCount > 0 {
			stdLog.Printf("Lead already exists: %s", seed.Customer)
			continue
		}
		amount, err := models.NewMoneyFromString(seed.Amount)
		if err != nil {
			stdLog.Printf("Skip lead for %s: bad amount %s", seed.Customer, seed.Amount)
			continue
		}
		lead, err := leadService.CreateLead(submitter, service.CreateLeadInput{
			CustomerName:     seed.Customer,
			CustomerPhone:    seed.Phone,
			CustomerEmail:    fmt.Sprintf("%s@example.com", seed.Phone[4:]),
			InvestmentType:   seed.Type,
			InvestmentAmount: amount,
			Notes:            "seeded demo lead",
		})
		if err != nil {
			stdLog.Printf("Failed to create lead for %s: %v", seed.Customer, err)
			continue
		}
		leadCount++
		if seed.Decision != "" {
			if _, err := leadService.Decide(constants.RoleAdmin, lead.ID, seed.Decision == "approve"); err != nil {
				stdLog.Printf("Failed to decide lead %d: %v", lead.ID, err)
			}
		}
	}

	// 联系消息
	contacts := []service.SubmitInput{
		{Name: "Deepak Verma", Email: "deepak@example.com", Subject: "Partnership enquiry", Message: "I run a small advisory and would like to join as an agent."},
		{Name: "Sunita Rao", Email: "sunita@example.com", Subject: "SIP question", Message: "What is the minimum monthly SIP amount you handle?"},
	}
	for _, input := range contacts {
		var existingCount int64
		models.DB.Model(&models.ContactMessage{}).
			Where("email = ?", input.Email).
			Count(&existingCount)
		if existingCount > 0 {
			continue
		}
		if _, err := contactService.Submit(input); err != nil {
			stdLog.Printf("Failed to create contact message from %s: %v", input.Email, err)
		}
	}

	fmt.Println("\n✅ Demo data created successfully!")
	fmt.Println("Summary:")
	fmt.Printf("- %d agents (%d approved)\n", len(agents), len(agentCodes))
	fmt.Printf("- %d sub-agents\n", len(subAgentIDs))
	fmt.Printf("- %d leads (approved ones accrued into monthly payouts)\n", leadCount)
	fmt.Printf("- %d contact messages\n", len(contacts))
	fmt.Println("- Default admin: admin@fundlink.local / Admin@12345")
}
