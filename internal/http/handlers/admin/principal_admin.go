package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/repository"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListPrincipals 分页查询主体
func (h *Handler) ListPrincipals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.PrincipalListFilter{
		Page:     page,
		PageSize: pageSize,
		Role:     strings.TrimSpace(c.Query("role")),
		Keyword:  strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("approved")); raw != "" {
		approved := raw == "1" || raw == "true"
		filter.Approved = &approved
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active := raw == "1" || raw == "true"
		filter.Active = &active
	}

	principals, total, err := h.PrincipalService.ListPrincipals(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list principals", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, principals, pagination)
}

// GetPrincipal 查询主体详情
func (h *Handler) GetPrincipal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "principal id invalid", nil)
		return
	}

	principal, err := h.PrincipalService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "principal not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to fetch principal", err)
		return
	}

	response.Success(c, principal)
}

// ApprovePrincipalRequest 审批请求，approved 为 false 时撤销资格
type ApprovePrincipalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// ApprovePrincipal 审批或撤销代理资格
func (h *Handler) ApprovePrincipal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "principal id invalid", nil)
		return
	}

	var req ApprovePrincipalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	principal, err := h.PrincipalService.Approve(adminRole(c), uint(id), *req.Approved)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeForbidden, "admin role required", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "principal not found", nil)
		case errors.Is(err, service.ErrInvalidRole):
			respondError(c, response.CodeBadRequest, "only agents can be approved", nil)
		default:
			respondError(c, response.CodeInternal, "failed to approve principal", err)
		}
		return
	}

	response.Success(c, principal)
}

// SetCommissionRateRequest 设定佣金率请求
type SetCommissionRateRequest struct {
	CommissionRate string `json:"commission_rate" binding:"required"`
}

// SetCommissionRate 设定代理佣金率
// 代理调整后，名下子代理按配置系数级联折算。
func (h *Handler) SetCommissionRate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "principal id invalid", nil)
		return
	}

	var req SetCommissionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	rate, err := models.NewMoneyFromString(req.CommissionRate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "commission rate invalid", nil)
		return
	}

	principal, err := h.PrincipalService.SetCommissionRate(adminRole(c), uint(id), rate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeForbidden, "admin role required", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "principal not found", nil)
		case errors.Is(err, service.ErrCommissionRateOutOfRange):
			respondError(c, response.CodeBadRequest, "commission rate out of range", nil)
		default:
			respondError(c, response.CodeInternal, "failed to set commission rate", err)
		}
		return
	}

	response.Success(c, principal)
}
