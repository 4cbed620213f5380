package repository

import (
	"errors"
	"time"

	"github.com/fundlink-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutRepository 月度结算数据访问接口
type PayoutRepository interface {
	Create(payout *models.Payout) error
	Update(payout *models.Payout) error
	GetByID(id uint) (*models.Payout, error)
	GetByIDForUpdate(id uint) (*models.Payout, error)
	GetByAgentMonth(agentID uint, month time.Time) (*models.Payout, error)
	GetByAgentMonthForUpdate(agentID uint, month time.Time) (*models.Payout, error)
	List(filter PayoutListFilter) ([]models.Payout, int64, error)
	ListForAgent(agentID uint) ([]models.Payout, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPayoutRepository
}

// GormPayoutRepository GORM 月度结算仓储实现
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository 创建月度结算仓储
func NewPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPayoutRepository) WithTx(tx *gorm.DB) *GormPayoutRepository {
	if tx == nil {
		return r
	}
	return &GormPayoutRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPayoutRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建结算单
func (r *GormPayoutRepository) Create(payout *models.Payout) error {
	return r.db.Create(payout).Error
}

// Update 更新结算单
func (r *GormPayoutRepository) Update(payout *models.Payout) error {
	return r.db.Save(payout).Error
}

// GetByID 按ID获取结算单
func (r *GormPayoutRepository) GetByID(id uint) (*models.Payout, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.Payout
	if err := r.db.First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetByIDForUpdate 按ID加锁获取结算单
func (r *GormPayoutRepository) GetByIDForUpdate(id uint) (*models.Payout, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.Payout
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetByAgentMonth 按代理与结算月获取结算单
func (r *GormPayoutRepository) GetByAgentMonth(agentID uint, month time.Time) (*models.Payout, error) {
	if agentID == 0 {
		return nil, nil
	}
	var payout models.Payout
	if err := r.db.Where("agent_id = ? AND month = ?", agentID, models.MonthOf(month)).
		First(&payout).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetByAgentMonthForUpdate 按代理与结算月加锁获取结算单
func (r *GormPayoutRepository) GetByAgentMonthForUpdate(agentID uint, month time.Time) (*models.Payout, error) {
	if agentID == 0 {
		return nil, nil
	}
	var payout models.Payout
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("agent_id = ? AND month = ?", agentID, models.MonthOf(month)).
		First(&payout).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// List 分页查询结算单
func (r *GormPayoutRepository) List(filter PayoutListFilter) ([]models.Payout, int64, error) {
	query := r.db.Model(&models.Payout{})
	if filter.AgentID != 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MonthFrom != nil {
		query = query.Where("month >= ?", models.MonthOf(*filter.MonthFrom))
	}
	if filter.MonthTo != nil {
		query = query.Where("month <= ?", models.MonthOf(*filter.MonthTo))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var payouts []models.Payout
	if err := query.Order("month desc, agent_id asc").Find(&payouts).Error; err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}

// ListForAgent 查询某代理全部结算单（按月倒序）
func (r *GormPayoutRepository) ListForAgent(agentID uint) ([]models.Payout, error) {
	if agentID == 0 {
		return []models.Payout{}, nil
	}
	var payouts []models.Payout
	if err := r.db.Where("agent_id = ?", agentID).
		Order("month desc").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}
