package cards

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nbcards/internal/database"
)

// Stats 是仪表盘顶部的汇总数据。
type Stats struct {
	Total     int                     `json:"total"`
	ThisMonth int                     `json:"this_month"`
	ThisWeek  int                     `json:"this_week"`
	Recent    []database.BusinessCard `json:"recent"`
}

// WeekBucket 是按 ISO 周序号聚合出的一根柱子。
type WeekBucket struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// DashboardStats 加载全部名片并在内存中统计总数、本月与本周新增，
// 再单独查询最近创建的 3 张。集合规模按后台管理量级设计，不分页。
func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	cardList, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := statsFromCards(cardList, time.Now())

	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(3).
		Find(&stats.Recent).Error; err != nil {
		return nil, fmt.Errorf("query recent business cards: %w", err)
	}

	return stats, nil
}

// WeeklyHistogram 把每张名片按 ISO 周序号分桶，桶按周序号升序排列。
// 跨年时同号不同年的周会落进同一个桶，维持与图表一致的已知局限。
func (s *Service) WeeklyHistogram(ctx context.Context) ([]WeekBucket, error) {
	cardList, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return weeklyBuckets(cardList), nil
}

func (s *Service) loadAll(ctx context.Context) ([]database.BusinessCard, error) {
	var cardList []database.BusinessCard
	if err := s.db.WithContext(ctx).Find(&cardList).Error; err != nil {
		return nil, fmt.Errorf("load business cards: %w", err)
	}
	return cardList, nil
}

// statsFromCards 以 now 为基准计算汇总。
// 本周起点 = now 减去当前星期序号（周日为 0）对应的天数，
// 不截断到零点，与既有仪表盘口径保持一致。
func statsFromCards(cardList []database.BusinessCard, now time.Time) *Stats {
	startOfWeek := now.AddDate(0, 0, -int(now.Weekday()))

	stats := &Stats{Total: len(cardList)}
	for _, card := range cardList {
		createdAt := card.CreatedAt.In(now.Location())
		if createdAt.Month() == now.Month() && createdAt.Year() == now.Year() {
			stats.ThisMonth++
		}
		if !createdAt.Before(startOfWeek) {
			stats.ThisWeek++
		}
	}
	return stats
}

func weeklyBuckets(cardList []database.BusinessCard) []WeekBucket {
	counts := make(map[int]int)
	for _, card := range cardList {
		counts[WeekNumber(card.CreatedAt)]++
	}

	weeks := make([]int, 0, len(counts))
	for week := range counts {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)

	buckets := make([]WeekBucket, 0, len(weeks))
	for _, week := range weeks {
		buckets = append(buckets, WeekBucket{
			Week:  fmt.Sprintf("Week %d", week),
			Count: counts[week],
		})
	}
	return buckets
}

// WeekNumber 计算 ISO-8601 风格的周序号：
// 把日期平移到所在周的星期四，再以该星期四所属年份的 1 月 1 日起算周数。
func WeekNumber(t time.Time) int {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	thursday := day.AddDate(0, 0, 4-weekday)

	return (thursday.YearDay() + 6) / 7
}
