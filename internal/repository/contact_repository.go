package repository

import (
	"errors"
	"strings"

	"github.com/fundlink-next/internal/models"

	"gorm.io/gorm"
)

// ContactMessageRepository 联系消息数据访问接口
type ContactMessageRepository interface {
	Create(message *models.ContactMessage) error
	GetByID(id uint) (*models.ContactMessage, error)
	Update(message *models.ContactMessage) error
	List(filter ContactMessageListFilter) ([]models.ContactMessage, int64, error)
}

// GormContactMessageRepository GORM 联系消息仓储实现
type GormContactMessageRepository struct {
	db *gorm.DB
}

// NewContactMessageRepository 创建联系消息仓储
func NewContactMessageRepository(db *gorm.DB) *GormContactMessageRepository {
	return &GormContactMessageRepository{db: db}
}

// Create 创建联系消息
func (r *GormContactMessageRepository) Create(message *models.ContactMessage) error {
	return r.db.Create(message).Error
}

// GetByID 按ID获取联系消息
func (r *GormContactMessageRepository) GetByID(id uint) (*models.ContactMessage, error) {
	if id == 0 {
		return nil, nil
	}
	var message models.ContactMessage
	if err := r.db.First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// Update 更新联系消息
func (r *GormContactMessageRepository) Update(message *models.ContactMessage) error {
	return r.db.Save(message).Error
}

// List 分页查询联系消息
func (r *GormContactMessageRepository) List(filter ContactMessageListFilter) ([]models.ContactMessage, int64, error) {
	query := r.db.Model(&models.ContactMessage{})
	if filter.Handled != nil {
		query = query.Where("handled = ?", *filter.Handled)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"name", "email", "subject"})
		if condition != "" {
			query = query.Where(condition, repeatLikeArgs("%"+keyword+"%", argCount)...)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var messages []models.ContactMessage
	if err := query.Order("id desc").Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}
