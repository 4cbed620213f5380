package public

import (
	"errors"
	"strconv"

	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListSubAgents 查询名下子代理
func (h *Handler) ListSubAgents(c *gin.Context) {
	id, ok := getPrincipalID(c)
	if !ok {
		return
	}

	subAgents, err := h.PrincipalService.ListSubAgents(id)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list sub-agents", err)
		return
	}

	items := make([]gin.H, 0, len(subAgents))
	for i := range subAgents {
		items = append(items, principalProfileResponse(&subAgents[i]))
	}
	response.Success(c, items)
}

// GetSubAgentStats 查询子代理规模统计
func (h *Handler) GetSubAgentStats(c *gin.Context) {
	id, ok := getPrincipalID(c)
	if !ok {
		return
	}

	stats, err := h.PrincipalService.GetAgentStats(id)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch stats", err)
		return
	}
	response.Success(c, stats)
}

// UpdateSubAgentRateRequest 调整子代理佣金率请求
type UpdateSubAgentRateRequest struct {
	CommissionRate string `json:"commission_rate" binding:"required"`
}

// UpdateSubAgentRate 调整名下子代理佣金率
func (h *Handler) UpdateSubAgentRate(c *gin.Context) {
	id, ok := getPrincipalID(c)
	if !ok {
		return
	}
	subAgentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || subAgentID == 0 {
		respondError(c, response.CodeBadRequest, "sub-agent id invalid", nil)
		return
	}

	var req UpdateSubAgentRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	rate, err := models.NewMoneyFromString(req.CommissionRate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "commission rate invalid", nil)
		return
	}

	subAgent, err := h.PrincipalService.UpdateSubAgentRate(id, uint(subAgentID), rate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeForbidden, "sub-agent not owned", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "sub-agent not found", nil)
		case errors.Is(err, service.ErrCommissionRateOutOfRange):
			respondError(c, response.CodeBadRequest, "commission rate out of range", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update sub-agent", err)
		}
		return
	}

	response.Success(c, principalProfileResponse(subAgent))
}

// ToggleSubAgentActiveRequest 启停子代理请求
type ToggleSubAgentActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ToggleSubAgentActive 启用或停用名下子代理
func (h *Handler) ToggleSubAgentActive(c *gin.Context) {
	id, ok := getPrincipalID(c)
	if !ok {
		return
	}
	subAgentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || subAgentID == 0 {
		respondError(c, response.CodeBadRequest, "sub-agent id invalid", nil)
		return
	}

	var req ToggleSubAgentActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	subAgent, err := h.PrincipalService.ToggleSubAgentActive(id, uint(subAgentID), *req.Active)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeForbidden, "sub-agent not owned", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "sub-agent not found", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update sub-agent", err)
		}
		return
	}

	response.Success(c, principalProfileResponse(subAgent))
}
