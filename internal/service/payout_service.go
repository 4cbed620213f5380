package service

import (
	"time"

	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutService 佣金结算服务
type PayoutService struct {
	cfg            *config.Config
	payoutRepo     repository.PayoutRepository
	commissionRepo repository.CommissionRepository
	principalRepo  repository.PrincipalRepository
}

// NewPayoutService 创建佣金结算服务实例
func NewPayoutService(
	cfg *config.Config,
	payoutRepo repository.PayoutRepository,
	commissionRepo repository.CommissionRepository,
	principalRepo repository.PrincipalRepository,
) *PayoutService {
	return &PayoutService{
		cfg:            cfg,
		payoutRepo:     payoutRepo,
		commissionRepo: commissionRepo,
		principalRepo:  principalRepo,
	}
}

// AccrueInTx 在既有事务内为一条已批准线索入账
// 入账行按 (agent_id, 当月) 加锁查找，缺失则创建，创建冲突后重查，
// 保证并发审批只会累加到同一行上。
// 费率口径：子代理代报的线索按该子代理当前费率入账；代理自报的线索
// 沿用结算行定格费率，行不存在时按代理当前费率定格。
func (s *PayoutService) AccrueInTx(tx *gorm.DB, lead *models.Lead, decidedAt time.Time) (*models.Payout, *models.Commission, error) {
	txPayouts := s.payoutRepo.WithTx(tx)
	txCommissions := s.commissionRepo.WithTx(tx)
	txPrincipals := s.principalRepo.WithTx(tx)

	rateOwnerID := lead.AgentID
	if lead.SubAgentID != nil {
		rateOwnerID = *lead.SubAgentID
	}
	rateOwner, err := txPrincipals.GetByID(rateOwnerID)
	if err != nil {
		return nil, nil, err
	}
	if rateOwner == nil {
		return nil, nil, ErrNotFound
	}

	payout, err := s.ensurePayoutForUpdate(txPayouts, lead.AgentID, decidedAt, rateOwner.CommissionRate)
	if err != nil {
		return nil, nil, err
	}

	rate := rateOwner.CommissionRate
	if lead.SubAgentID == nil {
		rate = payout.CommissionRate
	}
	amount := lead.InvestmentAmount.ApplyRatePercent(rate)

	payout.TotalLeads++
	payout.ApprovedLeads++
	payout.TotalAmount = payout.TotalAmount.Add(amount)
	if err := txPayouts.Update(payout); err != nil {
		return nil, nil, err
	}

	commission := &models.Commission{
		AgentID:    lead.AgentID,
		SubAgentID: lead.SubAgentID,
		LeadID:     lead.ID,
		PayoutID:   payout.ID,
		BaseAmount: lead.InvestmentAmount,
		Rate:       rate,
		Amount:     amount,
		Status:     constants.CommissionStatusPending,
	}
	if err := txCommissions.Create(commission); err != nil {
		return nil, nil, err
	}
	return payout, commission, nil
}

// ensurePayoutForUpdate 加锁获取当月结算行，不存在则创建后重查加锁
func (s *PayoutService) ensurePayoutForUpdate(txPayouts *repository.GormPayoutRepository, agentID uint, at time.Time, firstRate models.Money) (*models.Payout, error) {
	payout, err := txPayouts.GetByAgentMonthForUpdate(agentID, at)
	if err != nil {
		return nil, err
	}
	if payout != nil {
		return payout, nil
	}

	fresh := &models.Payout{
		AgentID:        agentID,
		Month:          models.MonthOf(at),
		CommissionRate: firstRate,
		TotalAmount:    models.NewMoneyFromDecimal(decimal.Zero),
		Status:         constants.PayoutStatusPending,
	}
	if err := txPayouts.Create(fresh); err != nil {
		// 并发创建冲突，重查拿已有行
		if !isUniqueViolation(err) {
			return nil, err
		}
		payout, requeryErr := txPayouts.GetByAgentMonthForUpdate(agentID, at)
		if requeryErr != nil {
			return nil, requeryErr
		}
		if payout == nil {
			return nil, err
		}
		return payout, nil
	}
	return fresh, nil
}

// MarkPaid 管理员标记结算单已支付，同步翻转其下全部待发佣金流水
func (s *PayoutService) MarkPaid(actorRole string, payoutID uint) (*models.Payout, error) {
	if actorRole != constants.RoleAdmin {
		return nil, ErrForbidden
	}

	var result *models.Payout
	err := s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		txPayouts := s.payoutRepo.WithTx(tx)
		payout, err := txPayouts.GetByIDForUpdate(payoutID)
		if err != nil {
			return err
		}
		if payout == nil {
			return ErrPayoutNotFound
		}
		if payout.Status == constants.PayoutStatusPaid {
			return ErrPayoutAlreadyPaid
		}

		payout.Status = constants.PayoutStatusPaid
		if err := txPayouts.Update(payout); err != nil {
			return err
		}
		if err := s.commissionRepo.WithTx(tx).MarkPaidByPayout(payout.ID, time.Now()); err != nil {
			return err
		}
		result = payout
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PayoutMonthStat 按月汇总统计
type PayoutMonthStat struct {
	Month         string `json:"month"`
	TotalLeads    int    `json:"total_leads"`
	ApprovedLeads int    `json:"approved_leads"`
	TotalAmount   string `json:"total_amount"`
	PendingCount  int    `json:"pending_count"`
	PaidCount     int    `json:"paid_count"`
}

// PayoutStatistics 结算统计结果
type PayoutStatistics struct {
	Months        []PayoutMonthStat `json:"months"`
	TotalAmount   string            `json:"total_amount"`
	PendingAmount string            `json:"pending_amount"`
	PaidAmount    string            `json:"paid_amount"`
}

// Statistics 汇总最近 monthsBack 个月的结算情况；agentID 为 0 表示全平台
func (s *PayoutService) Statistics(agentID uint, monthsBack int) (PayoutStatistics, error) {
	if monthsBack <= 0 {
		monthsBack = 6
	}
	from := models.MonthOf(time.Now().UTC().AddDate(0, -(monthsBack - 1), 0))

	payouts, _, err := s.payoutRepo.List(repository.PayoutListFilter{
		AgentID:   agentID,
		MonthFrom: &from,
	})
	if err != nil {
		return PayoutStatistics{}, err
	}

	byMonth := make(map[string]*PayoutMonthStat)
	order := make([]string, 0)
	total := decimal.Zero
	pending := decimal.Zero
	paid := decimal.Zero
	for _, payout := range payouts {
		key := payout.Month.UTC().Format("2006-01")
		stat, ok := byMonth[key]
		if !ok {
			stat = &PayoutMonthStat{Month: key}
			byMonth[key] = stat
			order = append(order, key)
		}
		stat.TotalLeads += payout.TotalLeads
		stat.ApprovedLeads += payout.ApprovedLeads
		monthAmount := decimal.Zero
		if prev, err := decimal.NewFromString(stat.TotalAmount); err == nil {
			monthAmount = prev
		}
		monthAmount = monthAmount.Add(payout.TotalAmount.Decimal)
		stat.TotalAmount = monthAmount.StringFixed(2)

		total = total.Add(payout.TotalAmount.Decimal)
		switch payout.Status {
		case constants.PayoutStatusPaid:
			stat.PaidCount++
			paid = paid.Add(payout.TotalAmount.Decimal)
		default:
			stat.PendingCount++
			pending = pending.Add(payout.TotalAmount.Decimal)
		}
	}

	result := PayoutStatistics{
		Months:        make([]PayoutMonthStat, 0, len(order)),
		TotalAmount:   total.StringFixed(2),
		PendingAmount: pending.StringFixed(2),
		PaidAmount:    paid.StringFixed(2),
	}
	for _, key := range order {
		result.Months = append(result.Months, *byMonth[key])
	}
	return result, nil
}

// ListForAgent 查询代理自己的结算单
func (s *PayoutService) ListForAgent(agentID uint) ([]models.Payout, error) {
	return s.payoutRepo.ListForAgent(agentID)
}

// List 管理端分页查询结算单
func (s *PayoutService) List(filter repository.PayoutListFilter) ([]models.Payout, int64, error) {
	return s.payoutRepo.List(filter)
}
