package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/fundlink-next/internal/logger"
	"github.com/fundlink-next/internal/provider"
	"github.com/fundlink-next/internal/queue"
	"github.com/fundlink-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskLeadDecidedEmail, c.handleLeadDecidedEmail)
	mux.HandleFunc(queue.TaskPrincipalApprovedEmail, c.handlePrincipalApprovedEmail)
}

func (c *Consumer) handleLeadDecidedEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_lead_decided_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LeadDecidedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_lead_decided_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.LeadID == 0 {
		logger.Debugw("worker_lead_decided_email_skip_invalid_payload", "lead_id", payload.LeadID)
		return nil
	}
	lead, err := c.LeadRepo.GetByID(payload.LeadID)
	if err != nil {
		logger.Warnw("worker_lead_decided_email_fetch_lead_failed", "lead_id", payload.LeadID, "error", err)
		return err
	}
	if lead == nil {
		logger.Debugw("worker_lead_decided_email_skip_lead_not_found", "lead_id", payload.LeadID)
		return nil
	}
	receiverID := lead.AgentID
	if lead.SubAgentID != nil && *lead.SubAgentID != 0 {
		receiverID = *lead.SubAgentID
	}
	receiver, err := c.PrincipalRepo.GetByID(receiverID)
	if err != nil {
		logger.Warnw("worker_lead_decided_email_fetch_principal_failed", "lead_id", lead.ID, "principal_id", receiverID, "error", err)
		return err
	}
	if receiver == nil {
		logger.Debugw("worker_lead_decided_email_skip_principal_not_found", "lead_id", lead.ID, "principal_id", receiverID)
		return nil
	}
	receiverEmail := strings.TrimSpace(receiver.Email)
	if receiverEmail == "" {
		logger.Debugw("worker_lead_decided_email_skip_empty_receiver", "lead_id", lead.ID, "principal_id", receiver.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_lead_decided_email_skip_email_service_nil", "lead_id", lead.ID)
		return nil
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = lead.Status
	}
	input := service.LeadDecidedEmailInput{
		CustomerName:     lead.CustomerName,
		InvestmentType:   lead.InvestmentType,
		InvestmentAmount: lead.InvestmentAmount,
		Status:           status,
	}
	if err := c.EmailService.SendLeadDecidedEmail(receiverEmail, input); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailServiceDisabled):
			logger.Debugw("worker_lead_decided_email_skip_disabled", "lead_id", lead.ID)
			return nil
		case errors.Is(err, service.ErrEmailServiceNotConfigured):
			logger.Debugw("worker_lead_decided_email_skip_not_configured", "lead_id", lead.ID)
			return nil
		case errors.Is(err, service.ErrEmailRecipientRejected):
			logger.Warnw("worker_lead_decided_email_skip_recipient_rejected", "lead_id", lead.ID, "receiver_email", receiverEmail)
			return nil
		default:
			logger.Warnw("worker_lead_decided_email_send_failed",
				"lead_id", lead.ID,
				"receiver_email", receiverEmail,
				"status", status,
				"error", err,
			)
			return err
		}
	}
	return nil
}

func (c *Consumer) handlePrincipalApprovedEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_principal_approved_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PrincipalApprovedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_principal_approved_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.PrincipalID == 0 {
		logger.Debugw("worker_principal_approved_email_skip_invalid_payload", "principal_id", payload.PrincipalID)
		return nil
	}
	principal, err := c.PrincipalRepo.GetByID(payload.PrincipalID)
	if err != nil {
		logger.Warnw("worker_principal_approved_email_fetch_failed", "principal_id", payload.PrincipalID, "error", err)
		return err
	}
	if principal == nil {
		logger.Debugw("worker_principal_approved_email_skip_not_found", "principal_id", payload.PrincipalID)
		return nil
	}
	receiverEmail := strings.TrimSpace(principal.Email)
	if receiverEmail == "" {
		logger.Debugw("worker_principal_approved_email_skip_empty_receiver", "principal_id", principal.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_principal_approved_email_skip_email_service_nil", "principal_id", principal.ID)
		return nil
	}
	var agentCode string
	if principal.AgentCode != nil {
		agentCode = *principal.AgentCode
	}
	if err := c.EmailService.SendPrincipalApprovedEmail(receiverEmail, principal.Name, agentCode); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailServiceDisabled):
			logger.Debugw("worker_principal_approved_email_skip_disabled", "principal_id", principal.ID)
			return nil
		case errors.Is(err, service.ErrEmailServiceNotConfigured):
			logger.Debugw("worker_principal_approved_email_skip_not_configured", "principal_id", principal.ID)
			return nil
		case errors.Is(err, service.ErrEmailRecipientRejected):
			logger.Warnw("worker_principal_approved_email_skip_recipient_rejected", "principal_id", principal.ID, "receiver_email", receiverEmail)
			return nil
		default:
			logger.Warnw("worker_principal_approved_email_send_failed", "principal_id", principal.ID, "receiver_email", receiverEmail, "error", err)
			return err
		}
	}
	return nil
}
