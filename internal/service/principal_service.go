package service

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/logger"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/queue"
	"github.com/fundlink-next/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PrincipalService 主体服务：注册、审批、佣金率与层级管理
type PrincipalService struct {
	cfg         *config.Config
	repo        repository.PrincipalRepository
	queueClient *queue.Client
}

// NewPrincipalService 创建主体服务实例
func NewPrincipalService(cfg *config.Config, repo repository.PrincipalRepository, queueClient *queue.Client) *PrincipalService {
	return &PrincipalService{
		cfg:         cfg,
		repo:        repo,
		queueClient: queueClient,
	}
}

// RegisterInput 注册入参
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	Phone           string
	Address         string
	Role            string
	ParentAgentCode string
}

// Register 注册主体
// 代理注册后等待管理员审批；子代理挂在过审且启用的代理之下，自动过审，
// 佣金率按上级佣金率乘以配置系数折算。
func (s *PrincipalService) Register(input RegisterInput) (*models.Principal, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	role := strings.TrimSpace(input.Role)

	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	validRole := false
	for _, candidate := range []string{constants.RoleAgent, constants.RoleSubAgent, constants.RoleUser} {
		if role == candidate {
			validRole = true
			break
		}
	}
	if !validRole {
		return nil, ErrInvalidRole
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	principal := &models.Principal{
		Name:    name,
		Email:   email,
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
		Role:    role,
		Active:  true,
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	principal.PasswordHash = hash

	switch role {
	case constants.RoleUser:
		principal.Approved = true
		return principal, s.repo.Create(principal)
	case constants.RoleAgent:
		principal.Approved = false
		principal.CommissionRate = s.defaultAgentRate()
	case constants.RoleSubAgent:
		parent, err := s.resolveParentAgent(input.ParentAgentCode)
		if err != nil {
			return nil, err
		}
		principal.ParentID = &parent.ID
		principal.Approved = true
		principal.CommissionRate = s.subAgentRateFor(parent.CommissionRate)
	}

	if err := s.createWithAgentCode(principal); err != nil {
		return nil, err
	}
	return principal, nil
}

func (s *PrincipalService) resolveParentAgent(rawCode string) (*models.Principal, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if code == "" {
		return nil, ErrParentAgentRequired
	}
	parent, err := s.repo.GetByAgentCode(code)
	if err != nil {
		return nil, err
	}
	if parent == nil || parent.Role != constants.RoleAgent {
		return nil, ErrParentAgentInvalid
	}
	if !parent.Approved || !parent.Active {
		return nil, ErrParentAgentInvalid
	}
	return parent, nil
}

// createWithAgentCode 分配代理编码并创建，编码冲突时重取序号重试
func (s *PrincipalService) createWithAgentCode(principal *models.Principal) error {
	for attempt := 0; attempt < constants.AgentCodeMaxRetry; attempt++ {
		seq, err := s.repo.MaxAgentCodeSequence()
		if err != nil {
			return err
		}
		code := fmt.Sprintf("%s%0*d", constants.AgentCodePrefix, constants.AgentCodePadWidth, seq+1+attempt)
		principal.AgentCode = &code
		if err := s.repo.Create(principal); err != nil {
			if isUniqueViolation(err) {
				logger.Warnw("agent_code_conflict_retry", "code", code, "attempt", attempt+1)
				continue
			}
			return err
		}
		return nil
	}
	return ErrAgentCodeExhausted
}

func (s *PrincipalService) defaultAgentRate() models.Money {
	rate, err := decimal.NewFromString(strings.TrimSpace(s.cfg.Commission.DefaultAgentRate))
	if err != nil {
		rate = decimal.NewFromInt(2)
	}
	return models.NewMoneyFromDecimal(rate)
}

func (s *PrincipalService) subAgentRateFor(parentRate models.Money) models.Money {
	factor, err := decimal.NewFromString(strings.TrimSpace(s.cfg.Commission.SubAgentRateFactor))
	if err != nil {
		factor = decimal.RequireFromString("0.5")
	}
	return models.NewMoneyFromDecimal(parentRate.Decimal.Mul(factor))
}

// Approve 管理员审批或撤销代理资格，重复设置同一状态视为幂等成功
func (s *PrincipalService) Approve(actorRole string, principalID uint, approved bool) (*models.Principal, error) {
	if actorRole != constants.RoleAdmin {
		return nil, ErrForbidden
	}
	principal, err := s.repo.GetByID(principalID)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, ErrNotFound
	}
	// 只有代理和子代理走审批流程
	if !constants.IsAgentLikeRole(principal.Role) {
		return nil, ErrInvalidRole
	}
	if principal.Approved == approved {
		return principal, nil
	}

	principal.Approved = approved
	if err := s.repo.Update(principal); err != nil {
		return nil, err
	}

	if approved {
		if enqueueErr := s.queueClient.EnqueuePrincipalApprovedEmail(queue.PrincipalApprovedEmailPayload{
			PrincipalID: principal.ID,
		}); enqueueErr != nil {
			logger.Warnw("principal_approved_email_enqueue_failed", "principal_id", principal.ID, "error", enqueueErr)
		}
	}
	return principal, nil
}

// SetCommissionRate 管理员设置代理佣金率，并按系数级联刷新其名下子代理
// 级联只影响子代理后续入账，已累计的结算金额不回溯。
func (s *PrincipalService) SetCommissionRate(actorRole string, agentID uint, rate models.Money) (*models.Principal, error) {
	if actorRole != constants.RoleAdmin {
		return nil, ErrForbidden
	}
	if !rateInRange(rate) {
		return nil, ErrCommissionRateOutOfRange
	}

	principal, err := s.repo.GetByID(agentID)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, ErrNotFound
	}
	if !constants.IsAgentLikeRole(principal.Role) {
		return nil, ErrInvalidRole
	}

	subRate := s.subAgentRateFor(rate)
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		locked, err := txRepo.GetByIDForUpdate(agentID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrNotFound
		}
		locked.CommissionRate = rate
		if err := txRepo.Update(locked); err != nil {
			return err
		}
		principal = locked
		if locked.Role == constants.RoleAgent {
			return txRepo.UpdateSubAgentRates(agentID, subRate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// UpdateSubAgentRate 代理编辑自己名下子代理的佣金率
func (s *PrincipalService) UpdateSubAgentRate(agentID, subAgentID uint, rate models.Money) (*models.Principal, error) {
	if !rateInRange(rate) {
		return nil, ErrCommissionRateOutOfRange
	}
	sub, err := s.ownedSubAgent(agentID, subAgentID)
	if err != nil {
		return nil, err
	}
	sub.CommissionRate = models.NewMoneyFromDecimal(rate.Decimal)
	if err := s.repo.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ToggleSubAgentActive 代理启停自己名下子代理
func (s *PrincipalService) ToggleSubAgentActive(agentID, subAgentID uint, active bool) (*models.Principal, error) {
	sub, err := s.ownedSubAgent(agentID, subAgentID)
	if err != nil {
		return nil, err
	}
	sub.Active = active
	if err := s.repo.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *PrincipalService) ownedSubAgent(agentID, subAgentID uint) (*models.Principal, error) {
	sub, err := s.repo.GetByID(subAgentID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.Role != constants.RoleSubAgent {
		return nil, ErrNotFound
	}
	if sub.ParentID == nil || *sub.ParentID != agentID {
		return nil, ErrForbidden
	}
	return sub, nil
}

// ListSubAgents 查询代理名下子代理
func (s *PrincipalService) ListSubAgents(agentID uint) ([]models.Principal, error) {
	return s.repo.ListSubAgents(agentID)
}

// AgentStats 代理团队统计
type AgentStats struct {
	TotalSubAgents  int64 `json:"total_sub_agents"`
	ActiveSubAgents int64 `json:"active_sub_agents"`
}

// GetAgentStats 统计代理名下子代理规模
func (s *PrincipalService) GetAgentStats(agentID uint) (AgentStats, error) {
	stats := AgentStats{}
	subs, err := s.repo.ListSubAgents(agentID)
	if err != nil {
		return stats, err
	}
	stats.TotalSubAgents = int64(len(subs))
	for _, sub := range subs {
		if sub.Active {
			stats.ActiveSubAgents++
		}
	}
	return stats, nil
}

// ListPrincipals 管理端分页查询主体
func (s *PrincipalService) ListPrincipals(filter repository.PrincipalListFilter) ([]models.Principal, int64, error) {
	return s.repo.List(filter)
}

// ListApprovedAgents 查询全部过审代理，按名称排序
func (s *PrincipalService) ListApprovedAgents() ([]models.Principal, error) {
	approved := true
	agents, _, err := s.repo.List(repository.PrincipalListFilter{
		Role:        constants.RoleAgent,
		Approved:    &approved,
		OrderByName: true,
	})
	return agents, err
}

// LookupByAgentCode 按代理编码查询主体
func (s *PrincipalService) LookupByAgentCode(code string) (*models.Principal, error) {
	principal, err := s.repo.GetByAgentCode(code)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, ErrNotFound
	}
	return principal, nil
}

// GetByID 按ID查询主体
func (s *PrincipalService) GetByID(id uint) (*models.Principal, error) {
	principal, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, ErrNotFound
	}
	return principal, nil
}

func rateInRange(rate models.Money) bool {
	return rate.Decimal.GreaterThanOrEqual(decimal.Zero) &&
		rate.Decimal.LessThanOrEqual(decimal.NewFromInt(100))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
