package public

import (
	"errors"

	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Role            string `json:"role" binding:"required"`
	ParentAgentCode string `json:"parent_agent_code"`
}

// Register 注册
// 代理注册后进入待审核状态，子代理需携带上级代理编码。
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	principal, err := h.PrincipalService.Register(service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Phone:           req.Phone,
		Address:         req.Address,
		Role:            req.Role,
		ParentAgentCode: req.ParentAgentCode,
	})
	if err != nil {
		respondRegisterError(c, err)
		return
	}

	response.Success(c, principalProfileResponse(principal))
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.VerifyLogin(req.CaptchaID, req.CaptchaCode); captchaErr != nil {
			switch {
			case errors.Is(captchaErr, service.ErrCaptchaRequired):
				respondError(c, response.CodeBadRequest, "captcha required", nil)
				return
			case errors.Is(captchaErr, service.ErrCaptchaInvalid):
				respondError(c, response.CodeBadRequest, "captcha invalid", nil)
				return
			case errors.Is(captchaErr, service.ErrCaptchaConfigInvalid):
				respondError(c, response.CodeInternal, "captcha unavailable", captchaErr)
				return
			default:
				respondError(c, response.CodeInternal, "captcha verification failed", captchaErr)
				return
			}
		}
	}

	principal, token, expiresAt, err := h.AuthService.Login(req.Email, req.Password)
	if err != nil {
		respondLoginError(c, err)
		return
	}

	response.Success(c, gin.H{
		"principal":  principalProfileResponse(principal),
		"token":      token,
		"expires_at": expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetCurrentPrincipal 获取当前账号信息
func (h *Handler) GetCurrentPrincipal(c *gin.Context) {
	principal, ok := h.currentPrincipal(c)
	if !ok {
		return
	}
	response.Success(c, principalProfileResponse(principal))
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 登录态修改密码
func (h *Handler) ChangePassword(c *gin.Context) {
	id, ok := getPrincipalID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "old password incorrect", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "account not found", nil)
		default:
			respondError(c, response.CodeInternal, "failed to change password", err)
		}
		return
	}

	response.Success(c, gin.H{"updated": true})
}

func principalProfileResponse(principal *models.Principal) gin.H {
	if principal == nil {
		return gin.H{}
	}
	profile := gin.H{
		"id":              principal.ID,
		"name":            principal.Name,
		"email":           principal.Email,
		"phone":           principal.Phone,
		"address":         principal.Address,
		"role":            principal.Role,
		"approved":        principal.Approved,
		"active":          principal.Active,
		"commission_rate": principal.CommissionRate,
		"created_at":      principal.CreatedAt,
	}
	if principal.AgentCode != nil {
		profile["agent_code"] = *principal.AgentCode
	}
	if principal.ParentID != nil {
		profile["parent_id"] = *principal.ParentID
	}
	return profile
}
