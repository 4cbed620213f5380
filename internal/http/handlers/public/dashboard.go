package public

import (
	"errors"

	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDashboard 获取代理仪表盘
// 子代理展示其上级代理的整体业务盘面。refresh=1 时跳过缓存。
func (h *Handler) GetDashboard(c *gin.Context) {
	principal, ok := h.currentPrincipal(c)
	if !ok {
		return
	}

	agent := principal
	if principal.ParentID != nil && *principal.ParentID != 0 {
		parent, err := h.PrincipalService.GetByID(*principal.ParentID)
		if err != nil {
			respondError(c, response.CodeInternal, "failed to load dashboard", err)
			return
		}
		agent = parent
	}

	forceRefresh := c.Query("refresh") == "1"
	dashboard, err := h.DashboardService.GetAgentDashboard(c.Request.Context(), agent, forceRefresh)
	if err != nil {
		if errors.Is(err, service.ErrDashboardRangeInvalid) {
			respondError(c, response.CodeBadRequest, "dashboard range invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load dashboard", err)
		return
	}

	response.Success(c, dashboard)
}
