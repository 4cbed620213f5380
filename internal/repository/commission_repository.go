package repository

import (
	"errors"
	"time"

	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionRepository 佣金明细数据访问接口
type CommissionRepository interface {
	Create(commission *models.Commission) error
	GetByLeadID(leadID uint) (*models.Commission, error)
	List(filter CommissionListFilter) ([]models.Commission, int64, error)
	MarkPaidByPayout(payoutID uint, paidAt time.Time) error
	SumAmountSince(agentID uint, since time.Time) (decimal.Decimal, error)
	WithTx(tx *gorm.DB) *GormCommissionRepository
}

// GormCommissionRepository GORM 佣金明细仓储实现
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金明细仓储
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) *GormCommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Create 创建佣金明细
func (r *GormCommissionRepository) Create(commission *models.Commission) error {
	return r.db.Create(commission).Error
}

// GetByLeadID 按线索ID获取佣金明细（每条线索至多一条）
func (r *GormCommissionRepository) GetByLeadID(leadID uint) (*models.Commission, error) {
	if leadID == 0 {
		return nil, nil
	}
	var commission models.Commission
	if err := r.db.Where("lead_id = ?", leadID).First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// List 分页查询佣金明细
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.Commission, int64, error) {
	query := r.db.Model(&models.Commission{})
	if filter.AgentID != 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.SubAgentID != 0 {
		query = query.Where("sub_agent_id = ?", filter.SubAgentID)
	}
	if filter.PayoutID != 0 {
		query = query.Where("payout_id = ?", filter.PayoutID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var commissions []models.Commission
	if err := query.Order("id desc").Find(&commissions).Error; err != nil {
		return nil, 0, err
	}
	return commissions, total, nil
}

// MarkPaidByPayout 将某结算单下全部待发佣金标记为已发放
func (r *GormCommissionRepository) MarkPaidByPayout(payoutID uint, paidAt time.Time) error {
	if payoutID == 0 {
		return nil
	}
	return r.db.Model(&models.Commission{}).
		Where("payout_id = ? AND status = ?", payoutID, constants.CommissionStatusPending).
		Updates(map[string]interface{}{
			"status":  constants.CommissionStatusPaid,
			"paid_at": paidAt,
		}).Error
}

// SumAmountSince 统计某代理自某时刻起的已发放佣金总额
// 只计 paid 状态，结算单未支付前不计入近 30 天佣金。
func (r *GormCommissionRepository) SumAmountSince(agentID uint, since time.Time) (decimal.Decimal, error) {
	if agentID == 0 {
		return decimal.Zero, nil
	}
	var sum float64
	err := r.db.Model(&models.Commission{}).
		Where("agent_id = ? AND status = ? AND created_at >= ?", agentID, constants.CommissionStatusPaid, since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(sum).Round(2), nil
}
