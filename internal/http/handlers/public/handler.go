package public

import "github.com/fundlink-next/internal/provider"

// Handler 前台/代理侧接口处理器入口
// 说明：该处理器用于公开接口与代理、子代理登录态 API。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
