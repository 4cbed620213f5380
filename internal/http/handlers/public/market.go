package public

import (
	"strings"

	"github.com/fundlink-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SearchSchemes 搜索基金方案
func (h *Handler) SearchSchemes(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	result, err := h.MarketDataService.SearchSchemes(c.Request.Context(), query)
	if err != nil {
		respondMarketDataError(c, err)
		return
	}
	response.Success(c, result)
}

// GetLatestNAV 查询基金最新净值
func (h *Handler) GetLatestNAV(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "scheme code is required", nil)
		return
	}

	result, err := h.MarketDataService.GetLatestNAV(c.Request.Context(), code)
	if err != nil {
		respondMarketDataError(c, err)
		return
	}
	response.Success(c, result)
}

// GetMarketNews 查询市场资讯
func (h *Handler) GetMarketNews(c *gin.Context) {
	result, err := h.MarketDataService.GetNews(c.Request.Context())
	if err != nil {
		respondMarketDataError(c, err)
		return
	}
	response.Success(c, result)
}
