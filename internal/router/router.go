package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fundlink-next/internal/authz"
	"github.com/fundlink-next/internal/cache"
	"github.com/fundlink-next/internal/config"
	adminhandlers "github.com/fundlink-next/internal/http/handlers/admin"
	publichandlers "github.com/fundlink-next/internal/http/handlers/public"
	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/logger"
	"github.com/fundlink-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "fl"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.GET("/captcha", publicHandler.GetImageCaptcha)
		}

		apiV1.GET("/agents", publicHandler.ListAgents)
		apiV1.GET("/agents/lookup", publicHandler.LookupAgentCode)
		apiV1.POST("/contact", publicHandler.SubmitContact)

		market := apiV1.Group("/market")
		{
			market.GET("/schemes", publicHandler.SearchSchemes)
			market.GET("/schemes/:code/nav", publicHandler.GetLatestNAV)
			market.GET("/news", publicHandler.GetMarketNews)
		}

		// 登录后接口（JWT + RBAC）
		authorized := apiV1.Group("")
		authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.PrincipalRepo), RBACMiddleware(c.AuthzService))
		{
			authorized.GET("/auth/me", publicHandler.GetCurrentPrincipal)
			authorized.PUT("/auth/password", publicHandler.ChangePassword)

			authorized.POST("/leads", publicHandler.CreateLead)
			authorized.GET("/leads", publicHandler.ListMyLeads)
			authorized.GET("/leads/:id", publicHandler.GetLead)

			authorized.GET("/payouts", publicHandler.ListMyPayouts)
			authorized.GET("/payouts/statistics", publicHandler.GetMyPayoutStatistics)

			authorized.GET("/dashboard", publicHandler.GetDashboard)

			authorized.GET("/agent/sub-agents", publicHandler.ListSubAgents)
			authorized.GET("/agent/sub-agents/stats", publicHandler.GetSubAgentStats)
			authorized.PUT("/agent/sub-agents/:id/rate", publicHandler.UpdateSubAgentRate)
			authorized.PUT("/agent/sub-agents/:id/active", publicHandler.ToggleSubAgentActive)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/auth/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			adminAuthorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.PrincipalRepo), RBACMiddleware(c.AuthzService))
			{
				adminAuthorized.PUT("/auth/password", adminHandler.UpdateAdminPassword)

				// 平台总览与代理看板
				adminAuthorized.GET("/overview", adminHandler.GetAdminOverview)
				adminAuthorized.GET("/agents/:id/dashboard", adminHandler.GetAgentDashboardAsAdmin)

				// 代理与子代理管理
				adminAuthorized.GET("/principals", adminHandler.ListPrincipals)
				adminAuthorized.GET("/principals/:id", adminHandler.GetPrincipal)
				adminAuthorized.POST("/principals/:id/approve", adminHandler.ApprovePrincipal)
				adminAuthorized.PUT("/principals/:id/rate", adminHandler.SetCommissionRate)

				// 线索审批
				adminAuthorized.GET("/leads", adminHandler.ListLeads)
				adminAuthorized.POST("/leads/:id/decision", adminHandler.DecideLead)

				// 佣金与结算
				adminAuthorized.GET("/payouts", adminHandler.ListPayouts)
				adminAuthorized.GET("/payouts/statistics", adminHandler.GetPayoutStatistics)
				adminAuthorized.POST("/payouts/:id/pay", adminHandler.MarkPayoutPaid)

				// 联系消息
				adminAuthorized.GET("/contact-messages", adminHandler.ListContactMessages)
				adminAuthorized.POST("/contact-messages/:id/handle", adminHandler.MarkContactMessageHandled)

				// 权限视图（只读）
				adminAuthorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				adminAuthorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				adminAuthorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildPermissionCatalog(r))
				})

				// 邮件联通性测试
				adminAuthorized.POST("/email/test", adminHandler.SendTestEmail)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type permissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildPermissionCatalog(engine *gin.Engine) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/") {
			continue
		}
		if item.Path == "/api/v1/auth/login" || item.Path == "/api/v1/admin/auth/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Module:     derivePermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func derivePermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
