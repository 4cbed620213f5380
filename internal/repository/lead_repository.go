package repository

import (
	"errors"
	"strings"

	"github.com/fundlink-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeadRepository 线索数据访问接口
type LeadRepository interface {
	Create(lead *models.Lead) error
	GetByID(id uint) (*models.Lead, error)
	GetByIDForUpdate(id uint) (*models.Lead, error)
	Update(lead *models.Lead) error
	List(filter LeadListFilter) ([]models.Lead, int64, error)
	ListRecentForAgent(agentID uint, limit int) ([]models.Lead, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormLeadRepository
}

// GormLeadRepository GORM 线索仓储实现
type GormLeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository 创建线索仓储
func NewLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLeadRepository) WithTx(tx *gorm.DB) *GormLeadRepository {
	if tx == nil {
		return r
	}
	return &GormLeadRepository{db: tx}
}

// Transaction 执行事务
func (r *GormLeadRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建线索
func (r *GormLeadRepository) Create(lead *models.Lead) error {
	return r.db.Create(lead).Error
}

// GetByID 按ID获取线索
func (r *GormLeadRepository) GetByID(id uint) (*models.Lead, error) {
	if id == 0 {
		return nil, nil
	}
	var lead models.Lead
	if err := r.db.First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

// GetByIDForUpdate 按ID加锁获取线索
func (r *GormLeadRepository) GetByIDForUpdate(id uint) (*models.Lead, error) {
	if id == 0 {
		return nil, nil
	}
	var lead models.Lead
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

// Update 更新线索
func (r *GormLeadRepository) Update(lead *models.Lead) error {
	return r.db.Save(lead).Error
}

// List 分页查询线索
func (r *GormLeadRepository) List(filter LeadListFilter) ([]models.Lead, int64, error) {
	query := r.db.Model(&models.Lead{})
	if filter.AgentID != 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.SubAgentID != 0 {
		query = query.Where("sub_agent_id = ?", filter.SubAgentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"customer_name", "customer_email", "customer_phone"})
		if condition != "" {
			query = query.Where(condition, repeatLikeArgs("%"+keyword+"%", argCount)...)
		}
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var leads []models.Lead
	if err := query.Order("id desc").Find(&leads).Error; err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListRecentForAgent 查询某代理最近的线索
func (r *GormLeadRepository) ListRecentForAgent(agentID uint, limit int) ([]models.Lead, error) {
	if agentID == 0 {
		return []models.Lead{}, nil
	}
	if limit <= 0 {
		limit = 5
	}
	var leads []models.Lead
	if err := r.db.Where("agent_id = ?", agentID).
		Order("created_at desc").
		Limit(limit).
		Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}
