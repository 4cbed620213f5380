package public

import (
	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitContactRequest 留言提交请求
type SubmitContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// SubmitContact 提交联系留言
func (h *Handler) SubmitContact(c *gin.Context) {
	var req SubmitContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	message, err := h.ContactService.Submit(service.SubmitInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respondContactSubmitError(c, err)
		return
	}

	response.Success(c, gin.H{
		"id":         message.ID,
		"created_at": message.CreatedAt,
	})
}
