package public

import (
	"strconv"

	"github.com/fundlink-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListMyPayouts 查询当前代理的月度结算单
// 子代理查询时返回其上级代理的结算单（佣金统一归集到代理）。
func (h *Handler) ListMyPayouts(c *gin.Context) {
	principal, ok := h.currentPrincipal(c)
	if !ok {
		return
	}

	agentID := principal.ID
	if principal.ParentID != nil && *principal.ParentID != 0 {
		agentID = *principal.ParentID
	}

	payouts, err := h.PayoutService.ListForAgent(agentID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list payouts", err)
		return
	}
	response.Success(c, payouts)
}

// GetMyPayoutStatistics 查询当前代理的结算统计
func (h *Handler) GetMyPayoutStatistics(c *gin.Context) {
	principal, ok := h.currentPrincipal(c)
	if !ok {
		return
	}

	agentID := principal.ID
	if principal.ParentID != nil && *principal.ParentID != 0 {
		agentID = *principal.ParentID
	}

	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))
	stats, err := h.PayoutService.Statistics(agentID, months)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch payout statistics", err)
		return
	}
	response.Success(c, stats)
}
