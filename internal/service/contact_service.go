package service

import (
	"net/mail"
	"strings"

	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/repository"
)

// ContactService 联系留言服务
type ContactService struct {
	repo repository.ContactMessageRepository
}

// NewContactService 创建联系留言服务
func NewContactService(repo repository.ContactMessageRepository) *ContactService {
	return &ContactService{repo: repo}
}

// SubmitInput 留言提交入参
type SubmitInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Submit 公开提交留言
func (s *ContactService) Submit(input SubmitInput) (*models.ContactMessage, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	message := strings.TrimSpace(input.Message)
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if message == "" {
		return nil, ErrContactMessageEmpty
	}

	record := &models.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(input.Subject),
		Message: message,
	}
	if err := s.repo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// MarkHandled 管理员标记留言已处理
func (s *ContactService) MarkHandled(id uint) (*models.ContactMessage, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	if record.Handled {
		return record, nil
	}
	record.Handled = true
	if err := s.repo.Update(record); err != nil {
		return nil, err
	}
	return record, nil
}

// List 管理端分页查询留言
func (s *ContactService) List(filter repository.ContactMessageListFilter) ([]models.ContactMessage, int64, error) {
	return s.repo.List(filter)
}
