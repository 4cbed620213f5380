package public

import (
	"errors"

	handlershared "github.com/fundlink-next/internal/http/handlers/shared"
	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func getPrincipalID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "principal_id")
}

// currentPrincipal 加载当前登录主体，失败时已写出错误响应。
func (h *Handler) currentPrincipal(c *gin.Context) (*models.Principal, bool) {
	id, ok := getPrincipalID(c)
	if !ok {
		return nil, false
	}
	principal, err := h.PrincipalService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeUnauthorized, "account not found", nil)
			return nil, false
		}
		respondError(c, response.CodeInternal, "failed to load account", err)
		return nil, false
	}
	return principal, true
}
