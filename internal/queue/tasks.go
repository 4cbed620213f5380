package queue

import (
	"encoding/json"

	"github.com/fundlink-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskLeadDecidedEmail 线索审批结果邮件通知任务
	TaskLeadDecidedEmail = constants.TaskLeadDecidedEmail
	// TaskPrincipalApprovedEmail 代理过审邮件通知任务
	TaskPrincipalApprovedEmail = constants.TaskPrincipalApprovedEmail
)

// LeadDecidedEmailPayload 线索审批结果邮件任务载荷
type LeadDecidedEmailPayload struct {
	LeadID uint   `json:"lead_id"`
	Status string `json:"status"`
}

// PrincipalApprovedEmailPayload 代理过审邮件任务载荷
type PrincipalApprovedEmailPayload struct {
	PrincipalID uint `json:"principal_id"`
}

// NewLeadDecidedEmailTask 创建线索审批结果邮件任务
func NewLeadDecidedEmailTask(payload LeadDecidedEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadDecidedEmail, body), nil
}

// NewPrincipalApprovedEmailTask 创建代理过审邮件任务
func NewPrincipalApprovedEmailTask(payload PrincipalApprovedEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPrincipalApprovedEmail, body), nil
}
