package public

import (
	"errors"
	"strings"

	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LookupAgentCode 校验代理编码
// 子代理注册前用于确认上级代理编码有效。
func (h *Handler) LookupAgentCode(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "agent code is required", nil)
		return
	}

	agent, err := h.PrincipalService.LookupByAgentCode(code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "agent code not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to look up agent code", err)
		return
	}

	valid := agent.Approved && agent.Active
	response.Success(c, gin.H{
		"valid":      valid,
		"agent_name": agent.Name,
	})
}

// ListAgents 查询可挂靠的过审代理
// 子代理注册页的上级选择列表，只暴露名称与编码。
func (h *Handler) ListAgents(c *gin.Context) {
	agents, err := h.PrincipalService.ListApprovedAgents()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list agents", err)
		return
	}

	items := make([]gin.H, 0, len(agents))
	for i := range agents {
		agent := &agents[i]
		if !agent.Active || agent.AgentCode == nil {
			continue
		}
		items = append(items, gin.H{
			"name":       agent.Name,
			"agent_code": *agent.AgentCode,
		})
	}
	response.Success(c, items)
}
