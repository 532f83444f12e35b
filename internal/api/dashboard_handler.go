package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"nbcards/internal/cards"
)

const (
	dashboardStatsCacheKey = "dashboard:stats"
	dashboardStatsCacheTTL = 30 * time.Second
)

// DashboardHandler 提供仪表盘的只读聚合数据。
type DashboardHandler struct {
	svc    *cards.Service
	redis  redis.UniversalClient
	logger *slog.Logger
}

// NewDashboardHandler 构造 DashboardHandler。
func NewDashboardHandler(svc *cards.Service, redisClient redis.UniversalClient, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		svc:    svc,
		redis:  redisClient,
		logger: logger,
	}
}

// Stats 返回总数、本月/本周新增与最近 3 张名片。
// 结果在 Redis 中缓存 30 秒；缓存不可用时直接回源查询。
func (h *DashboardHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	if h.redis != nil {
		cached, err := h.redis.Get(ctx, dashboardStatsCacheKey).Bytes()
		if err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("dashboard stats cache read", slog.String("error", err.Error()))
		}
	}

	stats, err := h.svc.DashboardStats(ctx)
	if err != nil {
		h.logger.Error("dashboard stats", slog.String("error", err.Error()))
		Internal(c, "failed to load dashboard stats")
		return
	}

	if h.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := h.redis.Set(ctx, dashboardStatsCacheKey, payload, dashboardStatsCacheTTL).Err(); err != nil {
				h.logger.Warn("dashboard stats cache write", slog.String("error", err.Error()))
			}
		}
	}

	c.JSON(http.StatusOK, stats)
}

// Weekly 返回按 ISO 周序号聚合的柱状图数据。
func (h *DashboardHandler) Weekly(c *gin.Context) {
	buckets, err := h.svc.WeeklyHistogram(c.Request.Context())
	if err != nil {
		h.logger.Error("weekly histogram", slog.String("error", err.Error()))
		Internal(c, "failed to load weekly histogram")
		return
	}
	c.JSON(http.StatusOK, buckets)
}
