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

// ListPayouts 分页查询结算单
func (h *Handler) ListPayouts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.PayoutListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if raw := strings.TrimSpace(c.Query("agent_id")); raw != "" {
		if agentID, parseErr := strconv.ParseUint(raw, 10, 64); parseErr == nil {
			filter.AgentID = uint(agentID)
		}
	}

	payouts, total, err := h.PayoutService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list payouts", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, payouts, pagination)
}

// GetPayoutStatistics 结算统计
// agent_id 为空时返回全平台统计。
func (h *Handler) GetPayoutStatistics(c *gin.Context) {
	var agentID uint
	if raw := strings.TrimSpace(c.Query("agent_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "agent id invalid", nil)
			return
		}
		agentID = uint(parsed)
	}
	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))

	stats, err := h.PayoutService.Statistics(agentID, months)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch payout statistics", err)
		return
	}
	response.Success(c, stats)
}

// MarkPayoutPaid 标记结算单已支付
func (h *Handler) MarkPayoutPaid(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "payout id invalid", nil)
		return
	}

	payout, err := h.PayoutService.MarkPaid(adminRole(c), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeForbidden, "admin role required", nil)
		case errors.Is(err, service.ErrPayoutNotFound):
			respondError(c, response.CodeNotFound, "payout not found", nil)
		case errors.Is(err, service.ErrPayoutAlreadyPaid):
			respondError(c, response.CodeConflict, "payout already paid", nil)
		default:
			respondError(c, response.CodeInternal, "failed to mark payout paid", err)
		}
		return
	}

	response.Success(c, payout)
}
