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

// ListLeads 分页查询线索
func (h *Handler) ListLeads(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.LeadListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("agent_id")); raw != "" {
		if agentID, parseErr := strconv.ParseUint(raw, 10, 64); parseErr == nil {
			filter.AgentID = uint(agentID)
		}
	}

	leads, total, err := h.LeadService.ListAll(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list leads", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, leads, pagination)
}

// DecideLeadRequest 线索裁决请求
type DecideLeadRequest struct {
	Decision string `json:"decision" binding:"required"` // approve 或 reject
}

// DecideLead 审批线索
// 通过时在同一事务内完成当月佣金累计。重复裁决返回冲突。
func (h *Handler) DecideLead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "lead id invalid", nil)
		return
	}

	var req DecideLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	var approve bool
	switch strings.ToLower(strings.TrimSpace(req.Decision)) {
	case "approve":
		approve = true
	case "reject":
		approve = false
	default:
		respondError(c, response.CodeBadRequest, "decision must be approve or reject", nil)
		return
	}

	lead, err := h.LeadService.Decide(adminRole(c), uint(id), approve)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeForbidden, "admin role required", nil)
		case errors.Is(err, service.ErrLeadNotFound):
			respondError(c, response.CodeNotFound, "lead not found", nil)
		case errors.Is(err, service.ErrLeadAlreadyDecided):
			respondError(c, response.CodeConflict, "lead already decided", nil)
		default:
			respondError(c, response.CodeInternal, "failed to decide lead", err)
		}
		return
	}

	response.Success(c, lead)
}
