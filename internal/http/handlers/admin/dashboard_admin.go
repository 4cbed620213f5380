package admin

import (
	"errors"
	"strconv"

	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminOverview 获取平台总览
func (h *Handler) GetAdminOverview(c *gin.Context) {
	forceRefresh := c.Query("refresh") == "1"

	overview, err := h.DashboardService.GetAdminOverview(c.Request.Context(), forceRefresh)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load overview", err)
		return
	}
	response.Success(c, overview)
}

// GetAgentDashboardAsAdmin 以管理员身份查看指定代理的仪表盘
func (h *Handler) GetAgentDashboardAsAdmin(c *gin.Context) {
	agentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || agentID == 0 {
		respondError(c, response.CodeBadRequest, "agent id invalid", nil)
		return
	}

	agent, err := h.PrincipalService.GetByID(uint(agentID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "agent not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load dashboard", err)
		return
	}

	forceRefresh := c.Query("refresh") == "1"
	dashboard, err := h.DashboardService.GetAgentDashboard(c.Request.Context(), agent, forceRefresh)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load dashboard", err)
		return
	}
	response.Success(c, dashboard)
}
