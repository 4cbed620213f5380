package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/repository"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListContactMessages 分页查询联系留言
func (h *Handler) ListContactMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ContactMessageListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("handled")); raw != "" {
		handled := raw == "1" || raw == "true"
		filter.Handled = &handled
	}

	messages, total, err := h.ContactService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list messages", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, messages, pagination)
}

// MarkContactMessageHandled 标记留言已处理
func (h *Handler) MarkContactMessageHandled(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "message id invalid", nil)
		return
	}

	message, err := h.ContactService.MarkHandled(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "message not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to update message", err)
		return
	}

	response.Success(c, message)
}
