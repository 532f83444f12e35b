package cards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"nbcards/internal/database"
)

// GenerateSlug 根据公司名生成 URL 安全的 slug：
// 去除首尾空白、转小写，仅保留 [a-z0-9]。
// 结果为空（含输入为空）时退回 company-<毫秒时间戳> 形式，保证非空。
func GenerateSlug(companyName string) string {
	normalized := strings.ToLower(strings.TrimSpace(companyName))

	var b strings.Builder
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return fmt.Sprintf("company-%d", time.Now().UnixMilli())
	}
	return b.String()
}

// ensureUniqueSlug 以先查后写的方式解决 slug 冲突：
// 已存在同名 slug 时追加一次 -<毫秒时间戳> 后缀，不做循环重试。
// 并发创建仍可能撞到唯一索引，由插入时的持久化错误兜底。
func (s *Service) ensureUniqueSlug(ctx context.Context, candidate string) (string, error) {
	var existing database.BusinessCard
	err := s.db.WithContext(ctx).
		Select("slug").
		Where("slug = ?", candidate).
		First(&existing).Error
	switch {
	case err == nil:
		return fmt.Sprintf("%s-%d", candidate, time.Now().UnixMilli()), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return candidate, nil
	default:
		return "", fmt.Errorf("check slug %q: %w", candidate, err)
	}
}
