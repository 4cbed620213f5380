package router

import (
	"fmt"
	"strings"
	"time"

	"github.com/fundlink-next/internal/authz"
	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/logger"
	"github.com/fundlink-next/internal/repository"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

func getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	allowAll := len(allowedOrigins) == 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}

	allowedMethods := strings.Join(cfg.AllowedMethods, ", ")
	if allowedMethods == "" {
		allowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	}
	allowedHeaders := strings.Join(cfg.AllowedHeaders, ", ")
	if allowedHeaders == "" {
		allowedHeaders = "Origin, Content-Type, Authorization, X-Request-ID"
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		resolved := resolveAllowedOrigin(origin, allowedOrigins, allowAll, cfg.AllowCredentials)
		if resolved != "" {
			c.Header("Access-Control-Allow-Origin", resolved)
			if resolved != "*" {
				c.Header("Vary", "Origin")
			}
			if cfg.AllowCredentials && resolved != "*" {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}
		c.Header("Access-Control-Allow-Methods", allowedMethods)
		c.Header("Access-Control-Allow-Headers", allowedHeaders)
		if cfg.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", fmt.Sprintf("%d", cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowAll bool, allowCredentials bool) string {
	if allowAll {
		if allowCredentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", latency.Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			log.Error("http_request", fields...)
			return
		}
		log.Info("http_request", fields...)
	}
}

// JWTAuthMiddleware JWT 鉴权中间件，验证通过后写入 principal_id 与 role
func JWTAuthMiddleware(secretKey string, principalRepo repository.PrincipalRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}

		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		claims := &service.JWTClaims{}
		token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		})
		if err != nil || !token.Valid || claims.PrincipalID == 0 {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		principal, err := principalRepo.GetByID(claims.PrincipalID)
		if err != nil {
			response.Error(c, response.CodeInternal, "internal server error")
			c.Abort()
			return
		}
		if principal == nil {
			response.Unauthorized(c, "account not found")
			c.Abort()
			return
		}
		if !principal.Active {
			response.Forbidden(c, "account disabled")
			c.Abort()
			return
		}

		// 角色以数据库为准，令牌中的 role 仅用于日志排查
		c.Set("principal_id", principal.ID)
		c.Set("role", principal.Role)
		c.Next()
	}
}

// RBACMiddleware 基于角色的访问控制中间件
func RBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			response.Error(c, response.CodeInternal, "authorization unavailable")
			c.Abort()
			return
		}

		role, _ := c.Get("role")
		roleName, _ := role.(string)
		if strings.TrimSpace(roleName) == "" {
			response.Forbidden(c, "permission denied")
			c.Abort()
			return
		}

		resource := c.FullPath()
		if resource == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceRole(roleName, resource, c.Request.Method)
		if err != nil {
			logger.S().Errorw("rbac_enforce_failed",
				"request_id", getRequestID(c),
				"role", roleName,
				"resource", resource,
				"method", c.Request.Method,
				"error", err,
			)
			response.Error(c, response.CodeInternal, "internal server error")
			c.Abort()
			return
		}
		if !allowed {
			logger.S().Warnw("rbac_permission_denied",
				"request_id", getRequestID(c),
				"role", roleName,
				"resource", resource,
				"method", c.Request.Method,
			)
			response.Forbidden(c, "permission denied")
			c.Abort()
			return
		}

		c.Next()
	}
}
