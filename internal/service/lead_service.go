package service

import (
	"strings"
	"time"

	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/logger"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/queue"
	"github.com/fundlink-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LeadService 线索服务
type LeadService struct {
	cfg           *config.Config
	leadRepo      repository.LeadRepository
	principalRepo repository.PrincipalRepository
	payoutService *PayoutService
	queueClient   *queue.Client
}

// NewLeadService 创建线索服务实例
func NewLeadService(
	cfg *config.Config,
	leadRepo repository.LeadRepository,
	principalRepo repository.PrincipalRepository,
	payoutService *PayoutService,
	queueClient *queue.Client,
) *LeadService {
	return &LeadService{
		cfg:           cfg,
		leadRepo:      leadRepo,
		principalRepo: principalRepo,
		payoutService: payoutService,
		queueClient:   queueClient,
	}
}

// CreateLeadInput 创建线索入参
type CreateLeadInput struct {
	CustomerName     string
	CustomerPhone    string
	CustomerEmail    string
	CustomerAddress  string
	InvestmentType   string
	InvestmentAmount models.Money
	Notes            string
}

// CreateLead 提交线索
// 子代理提交时线索归属其上级代理，sub_agent_id 记录提交人；
// 代理自己提交时 sub_agent_id 为空。
func (s *LeadService) CreateLead(submitter *models.Principal, input CreateLeadInput) (*models.Lead, error) {
	if submitter == nil || !constants.IsAgentLikeRole(submitter.Role) {
		return nil, ErrForbidden
	}
	if !submitter.Approved || !submitter.Active {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(input.CustomerName)
	phone := strings.TrimSpace(input.CustomerPhone)
	email := strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	if name == "" || phone == "" || email == "" {
		return nil, ErrLeadCustomerIncomplete
	}
	if !constants.IsValidInvestmentType(input.InvestmentType) {
		return nil, ErrInvalidInvestmentType
	}
	if !input.InvestmentAmount.Decimal.GreaterThan(decimal.Zero) {
		return nil, ErrInvalidInvestAmount
	}

	lead := &models.Lead{
		CustomerName:     name,
		CustomerPhone:    phone,
		CustomerEmail:    email,
		CustomerAddress:  strings.TrimSpace(input.CustomerAddress),
		InvestmentType:   input.InvestmentType,
		InvestmentAmount: input.InvestmentAmount,
		Notes:            strings.TrimSpace(input.Notes),
		Status:           constants.LeadStatusPending,
	}

	switch submitter.Role {
	case constants.RoleAgent:
		lead.AgentID = submitter.ID
	case constants.RoleSubAgent:
		if submitter.ParentID == nil {
			return nil, ErrParentAgentInvalid
		}
		lead.AgentID = *submitter.ParentID
		subID := submitter.ID
		lead.SubAgentID = &subID
	}

	if err := s.leadRepo.Create(lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// Decide 管理员审批线索
// 只允许 pending -> approved / rejected；批准与入账在同一事务内完成，
// 拒绝不产生任何结算变更。通知邮件在事务提交后异步推送。
func (s *LeadService) Decide(actorRole string, leadID uint, approve bool) (*models.Lead, error) {
	if actorRole != constants.RoleAdmin {
		return nil, ErrForbidden
	}

	var decided *models.Lead
	err := s.leadRepo.Transaction(func(tx *gorm.DB) error {
		txLeads := s.leadRepo.WithTx(tx)
		lead, err := txLeads.GetByIDForUpdate(leadID)
		if err != nil {
			return err
		}
		if lead == nil {
			return ErrLeadNotFound
		}
		if lead.Status != constants.LeadStatusPending {
			return ErrLeadAlreadyDecided
		}

		if approve {
			lead.Status = constants.LeadStatusApproved
			if _, _, err := s.payoutService.AccrueInTx(tx, lead, time.Now()); err != nil {
				return err
			}
		} else {
			lead.Status = constants.LeadStatusRejected
		}
		if err := txLeads.Update(lead); err != nil {
			return err
		}
		decided = lead
		return nil
	})
	if err != nil {
		return nil, err
	}

	if enqueueErr := s.queueClient.EnqueueLeadDecidedEmail(queue.LeadDecidedEmailPayload{
		LeadID: decided.ID,
		Status: decided.Status,
	}); enqueueErr != nil {
		logger.Warnw("lead_decided_email_enqueue_failed", "lead_id", decided.ID, "error", enqueueErr)
	}
	return decided, nil
}

// GetForPrincipal 按线索ID查询，代理只能看归属自己的线索
func (s *LeadService) GetForPrincipal(principal *models.Principal, leadID uint) (*models.Lead, error) {
	lead, err := s.leadRepo.GetByID(leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	if principal != nil && principal.Role != constants.RoleAdmin && !leadVisibleTo(lead, principal) {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

func leadVisibleTo(lead *models.Lead, principal *models.Principal) bool {
	switch principal.Role {
	case constants.RoleAgent:
		return lead.AgentID == principal.ID
	case constants.RoleSubAgent:
		return lead.SubAgentID != nil && *lead.SubAgentID == principal.ID
	default:
		return false
	}
}

// ListForPrincipal 查询提交人视角的线索列表
// 代理看归属自己的全部线索（含子代理提交），子代理只看自己提交的。
func (s *LeadService) ListForPrincipal(principal *models.Principal, filter repository.LeadListFilter) ([]models.Lead, int64, error) {
	if principal == nil {
		return nil, 0, ErrForbidden
	}
	switch principal.Role {
	case constants.RoleAgent:
		filter.AgentID = principal.ID
		filter.SubAgentID = 0
	case constants.RoleSubAgent:
		filter.AgentID = 0
		filter.SubAgentID = principal.ID
	default:
		return nil, 0, ErrForbidden
	}
	return s.leadRepo.List(filter)
}

// ListAll 管理端分页查询全部线索
func (s *LeadService) ListAll(filter repository.LeadListFilter) ([]models.Lead, int64, error) {
	return s.leadRepo.List(filter)
}
