package admin

import "github.com/fundlink-next/internal/provider"

// Handler 管理端 API 处理器，审批、结算、权限矩阵等管理操作都挂在这里。
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
