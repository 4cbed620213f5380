package admin

import (
	"errors"

	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SendTestEmailRequest SMTP 测试请求
type SendTestEmailRequest struct {
	ToEmail string `json:"to_email" binding:"required"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendTestEmail 发送 SMTP 测试邮件
func (h *Handler) SendTestEmail(c *gin.Context) {
	var req SendTestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if h.EmailService == nil {
		respondError(c, response.CodeInternal, "email service unavailable", nil)
		return
	}
	if err := h.EmailService.SendCustomEmail(req.ToEmail, req.Subject, req.Body); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailServiceDisabled):
			respondError(c, response.CodeBadRequest, "email service disabled", nil)
		case errors.Is(err, service.ErrEmailServiceNotConfigured):
			respondError(c, response.CodeBadRequest, "email service not configured", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "email invalid", nil)
		case errors.Is(err, service.ErrEmailRecipientRejected):
			respondError(c, response.CodeBadRequest, "recipient rejected by smtp server", nil)
		default:
			respondError(c, response.CodeInternal, "failed to send test email", err)
		}
		return
	}

	response.Success(c, gin.H{"sent": true})
}
