package repository

import (
	"errors"
	"strings"

	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrincipalRepository 主体（管理员 / 代理 / 子代理 / 用户）数据访问接口
type PrincipalRepository interface {
	GetByID(id uint) (*models.Principal, error)
	GetByIDForUpdate(id uint) (*models.Principal, error)
	GetByEmail(email string) (*models.Principal, error)
	GetByAgentCode(code string) (*models.Principal, error)
	GetByIDs(ids []uint) ([]models.Principal, error)
	Create(principal *models.Principal) error
	Update(principal *models.Principal) error
	List(filter PrincipalListFilter) ([]models.Principal, int64, error)
	ListSubAgents(parentID uint) ([]models.Principal, error)
	CountSubAgents(parentID uint) (int64, error)
	MaxAgentCodeSequence() (int, error)
	UpdateSubAgentRates(parentID uint, rate models.Money) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPrincipalRepository
}

// GormPrincipalRepository GORM 主体仓储实现
type GormPrincipalRepository struct {
	db *gorm.DB
}

// NewPrincipalRepository 创建主体仓储
func NewPrincipalRepository(db *gorm.DB) *GormPrincipalRepository {
	return &GormPrincipalRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPrincipalRepository) WithTx(tx *gorm.DB) *GormPrincipalRepository {
	if tx == nil {
		return r
	}
	return &GormPrincipalRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPrincipalRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID获取主体
func (r *GormPrincipalRepository) GetByID(id uint) (*models.Principal, error) {
	if id == 0 {
		return nil, nil
	}
	var principal models.Principal
	if err := r.db.First(&principal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &principal, nil
}

// GetByIDForUpdate 按ID加锁获取主体
func (r *GormPrincipalRepository) GetByIDForUpdate(id uint) (*models.Principal, error) {
	if id == 0 {
		return nil, nil
	}
	var principal models.Principal
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&principal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &principal, nil
}

// GetByEmail 按邮箱获取主体（邮箱统一小写比较）
func (r *GormPrincipalRepository) GetByEmail(email string) (*models.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var principal models.Principal
	if err := r.db.Where("email = ?", email).First(&principal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &principal, nil
}

// GetByAgentCode 按代理编码获取主体
func (r *GormPrincipalRepository) GetByAgentCode(code string) (*models.Principal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	var principal models.Principal
	if err := r.db.Where("agent_code = ?", code).First(&principal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &principal, nil
}

// GetByIDs 批量获取主体
func (r *GormPrincipalRepository) GetByIDs(ids []uint) ([]models.Principal, error) {
	if len(ids) == 0 {
		return []models.Principal{}, nil
	}
	var principals []models.Principal
	if err := r.db.Where("id IN ?", ids).Find(&principals).Error; err != nil {
		return nil, err
	}
	return principals, nil
}

// Create 创建主体
func (r *GormPrincipalRepository) Create(principal *models.Principal) error {
	return r.db.Create(principal).Error
}

// Update 更新主体
func (r *GormPrincipalRepository) Update(principal *models.Principal) error {
	return r.db.Save(principal).Error
}

// List 分页查询主体
func (r *GormPrincipalRepository) List(filter PrincipalListFilter) ([]models.Principal, int64, error) {
	query := r.db.Model(&models.Principal{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.ParentID != 0 {
		query = query.Where("parent_id = ?", filter.ParentID)
	}
	if filter.Approved != nil {
		query = query.Where("approved = ?", *filter.Approved)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"name", "email", "agent_code"})
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

	order := "id desc"
	if filter.OrderByName {
		order = "name asc"
	}
	var principals []models.Principal
	if err := query.Order(order).Find(&principals).Error; err != nil {
		return nil, 0, err
	}
	return principals, total, nil
}

// ListSubAgents 查询某代理名下全部子代理
func (r *GormPrincipalRepository) ListSubAgents(parentID uint) ([]models.Principal, error) {
	if parentID == 0 {
		return []models.Principal{}, nil
	}
	var principals []models.Principal
	if err := r.db.Where("parent_id = ? AND role = ?", parentID, constants.RoleSubAgent).
		Order("id asc").
		Find(&principals).Error; err != nil {
		return nil, err
	}
	return principals, nil
}

// CountSubAgents 统计某代理名下子代理数量
func (r *GormPrincipalRepository) CountSubAgents(parentID uint) (int64, error) {
	if parentID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Principal{}).
		Where("parent_id = ? AND role = ?", parentID, constants.RoleSubAgent).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MaxAgentCodeSequence 取当前最大代理编码序号（仅统计 AG 前缀编码）
// 后缀按数值比较，序号超出补零位宽后仍能取到正确的最大值。
func (r *GormPrincipalRepository) MaxAgentCodeSequence() (int, error) {
	expr := codeSequenceExpr(r.db, "agent_code", len(constants.AgentCodePrefix))
	var raw *int
	err := r.db.Model(&models.Principal{}).
		Where("agent_code LIKE ?", constants.AgentCodePrefix+"%").
		Select("MAX(" + expr + ")").
		Scan(&raw).Error
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	return *raw, nil
}

// UpdateSubAgentRates 批量更新某代理名下子代理的佣金率
func (r *GormPrincipalRepository) UpdateSubAgentRates(parentID uint, rate models.Money) error {
	if parentID == 0 {
		return nil
	}
	return r.db.Model(&models.Principal{}).
		Where("parent_id = ? AND role = ?", parentID, constants.RoleSubAgent).
		Update("commission_rate", rate).Error
}
