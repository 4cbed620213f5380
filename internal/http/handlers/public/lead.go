package public

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

// CreateLeadRequest 线索提交请求
type CreateLeadRequest struct {
	CustomerName     string `json:"customer_name" binding:"required"`
	CustomerPhone    string `json:"customer_phone" binding:"required"`
	CustomerEmail    string `json:"customer_email" binding:"required"`
	CustomerAddress  string `json:"customer_address"`
	InvestmentType   string `json:"investment_type" binding:"required"`
	InvestmentAmount string `json:"investment_amount" binding:"required"`
	Notes            string `json:"notes"`
}

// CreateLead 提交线索
func (h *Handler) CreateLead(c *gin.Context) {
	principal, ok := h.currentPrincipal(c)
	if !ok {
		return
	}

	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	amount, err := models.NewMoneyFromString(req.InvestmentAmount)
	if err != nil {
		respondError(c, response.CodeBadRequest, "investment amount invalid", nil)
		return
	}

	lead, err := h.LeadService.CreateLead(principal, service.CreateLeadInput{
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		CustomerEmail:    req.CustomerEmail,
		CustomerAddress:  req.CustomerAddress,
		InvestmentType:   req.InvestmentType,
		InvestmentAmount: amount,
		Notes:            req.Notes,
	})
	if err != nil {
		respondLeadCreateError(c, err)
		return
	}

	response.Success(c, lead)
}

// ListMyLeads 查询当前主体可见的线索
func (h *Handler) ListMyLeads(c *gin.Context) {
	principal, ok := h.currentPrincipal(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.LeadListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("search")),
	}

	leads, total, err := h.LeadService.ListForPrincipal(principal, filter)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			respondError(c, response.CodeForbidden, "not allowed to list leads", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to list leads", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, leads, pagination)
}

// GetLead 查询单条线索
func (h *Handler) GetLead(c *gin.Context) {
	principal, ok := h.currentPrincipal(c)
	if !ok {
		return
	}

	leadID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || leadID == 0 {
		respondError(c, response.CodeBadRequest, "lead id invalid", nil)
		return
	}

	lead, err := h.LeadService.GetForPrincipal(principal, uint(leadID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLeadNotFound):
			respondError(c, response.CodeNotFound, "lead not found", nil)
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeForbidden, "lead not accessible", nil)
		default:
			respondError(c, response.CodeInternal, "failed to fetch lead", err)
		}
		return
	}

	response.Success(c, lead)
}
