package service

import (
	"errors"
	"time"

	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/constants"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务
type AuthService struct {
	cfg           *config.Config
	principalRepo repository.PrincipalRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, principalRepo repository.PrincipalRepository) *AuthService {
	return &AuthService{
		cfg:           cfg,
		principalRepo: principalRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// JWTClaims JWT 声明
type JWTClaims struct {
	PrincipalID uint   `json:"principal_id"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(principal *models.Principal) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		PrincipalID: principal.ID,
		Role:        principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// Login 邮箱密码登录
// 代理类角色未过审不可登录，停用账号一律拒绝。
func (s *AuthService) Login(email, password string) (*models.Principal, string, time.Time, error) {
	principal, err := s.principalRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if principal == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(principal.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if !principal.Active {
		return nil, "", time.Time{}, ErrAccountDisabled
	}
	if constants.IsAgentLikeRole(principal.Role) && !principal.Approved {
		return nil, "", time.Time{}, ErrAccountNotApproved
	}

	token, expiresAt, err := s.GenerateJWT(principal)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	return principal, token, expiresAt, nil
}

// ChangePassword 修改密码
func (s *AuthService) ChangePassword(principalID uint, oldPassword, newPassword string) error {
	principal, err := s.principalRepo.GetByID(principalID)
	if err != nil {
		return err
	}
	if principal == nil {
		return ErrNotFound
	}

	if err := s.VerifyPassword(principal.PasswordHash, oldPassword); err != nil {
		return ErrInvalidPassword
	}

	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	principal.PasswordHash = hashedPassword
	return s.principalRepo.Update(principal)
}
