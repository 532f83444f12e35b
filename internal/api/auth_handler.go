package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"nbcards/internal/auth"
)

const loginRateLimitKeyPrefix = "auth:login:rate:"

// AuthHandler 处理后台管理员登录。
type AuthHandler struct {
	authService           *auth.AuthService
	redis                 redis.UniversalClient
	logger                *slog.Logger
	loginRateLimitPerHour int
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(authService *auth.AuthService, redisClient redis.UniversalClient, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:           authService,
		redis:                 redisClient,
		logger:                logger,
		loginRateLimitPerHour: 30,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验管理员凭证并返回访问令牌。
// 按来源 IP 做小时级限流；Redis 不可用时放行（限流仅是尽力而为）。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if h.redis != nil && h.loginRateLimitPerHour > 0 {
		key := loginRateLimitKeyPrefix + c.ClientIP()
		count, err := incrWithTTL(c.Request.Context(), h.redis, key, time.Hour)
		if err != nil {
			h.logger.Warn("login rate counter", slog.String("error", err.Error()))
		} else if count > int64(h.loginRateLimitPerHour) {
			Error(c, http.StatusTooManyRequests, "too many login attempts")
			return
		}
	}

	token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			Unauthorized(c)
			return
		}
		h.logger.Error("login", slog.String("error", err.Error()))
		Internal(c, "failed to sign in")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
