package admin

import (
	handlershared "github.com/fundlink-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "principal_id")
}

// adminRole 读取当前登录角色，管理端接口调用业务层时携带。
// 缺失时返回空串，由业务层拒绝。
func adminRole(c *gin.Context) string {
	role, _ := handlershared.GetContextString(c, "role")
	return role
}
