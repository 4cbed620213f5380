package admin

import (
	"github.com/fundlink-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListAuthzRoles 列出授权角色
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list roles", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzRolePolicies 查询角色生效策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := c.Param("role")

	policies, err := h.AuthzService.GetRoleEffectivePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "role invalid", err)
		return
	}
	response.Success(c, policies)
}
