package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nbcards/internal/config"
)

// ErrInvalidCredentials 表示登录凭证不匹配。
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService 实现后台唯一管理员的登录占位：
// 凭证来自环境变量，签发短时效 HMAC JWT，不维护会话或刷新令牌。
type AuthService struct {
	adminEmail        string
	adminPasswordHash string
	secret            []byte
	tokenTTL          time.Duration
}

// TokenClaims 表示 JWT 中的业务字段，便于中间件读取登录主体。
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewAuthService 校验配置并构造服务实例。
func NewAuthService(cfg config.AuthConfig) (*AuthService, error) {
	if cfg.AdminEmail == "" {
		return nil, errors.New("admin email is required")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, errors.New("admin password hash is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.TokenTTLMinutes <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	return &AuthService{
		adminEmail:        cfg.AdminEmail,
		adminPasswordHash: cfg.AdminPasswordHash,
		secret:            []byte(cfg.JWTSecret),
		tokenTTL:          time.Duration(cfg.TokenTTLMinutes) * time.Minute,
	}, nil
}

// Login 校验管理员凭证并签发访问令牌。
func (s *AuthService) Login(email, password string) (string, error) {
	if !strings.EqualFold(strings.TrimSpace(email), s.adminEmail) {
		return "", ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, s.adminPasswordHash) {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := TokenClaims{
		Email: s.adminEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.adminEmail,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// VerifyToken 校验访问令牌并返回登录主体。
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	var claims TokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.Email, nil
}
