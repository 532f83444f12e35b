package cards

import (
	"context"
	"testing"
	"time"

	"nbcards/internal/database"
)

func TestWeekNumber(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		// Wednesday, first ISO week of 2025.
		{time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), 1},
		// Monday, ISO week 2.
		{time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), 2},
		// Monday Dec 30 2024 belongs to ISO week 1 of 2025.
		{time.Date(2024, 12, 30, 8, 0, 0, 0, time.UTC), 1},
		// Friday Jan 1 2021 belongs to ISO week 53 of 2020.
		{time.Date(2021, 1, 1, 23, 59, 0, 0, time.UTC), 53},
		// Sunday closes its ISO week.
		{time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), 2},
	}
	for _, tc := range cases {
		if got := WeekNumber(tc.date); got != tc.want {
			t.Errorf("WeekNumber(%s) = %d, want %d", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}

func cardCreatedAt(ts time.Time) database.BusinessCard {
	return database.BusinessCard{Company: "Acme", CreatedAt: ts}
}

func TestStatsFromCards(t *testing.T) {
	// Wednesday afternoon; the week started Sunday Mar 16 at the same
	// time of day (the boundary is deliberately not midnight-aligned).
	now := time.Date(2025, 3, 19, 15, 30, 0, 0, time.UTC)
	startOfWeek := now.AddDate(0, 0, -3)

	cardList := []database.BusinessCard{
		cardCreatedAt(startOfWeek.Add(-time.Hour)),                  // this month, before week start
		cardCreatedAt(startOfWeek),                                  // exactly on the boundary: included
		cardCreatedAt(startOfWeek.Add(2 * time.Hour)),               // this week
		cardCreatedAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),  // this month only
		cardCreatedAt(time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)), // previous month
	}

	stats := statsFromCards(cardList, now)
	if stats.Total != 5 {
		t.Fatalf("total = %d, want 5", stats.Total)
	}
	if stats.ThisMonth != 4 {
		t.Fatalf("this month = %d, want 4", stats.ThisMonth)
	}
	if stats.ThisWeek != 2 {
		t.Fatalf("this week = %d, want 2", stats.ThisWeek)
	}
}

func TestWeeklyBuckets(t *testing.T) {
	cardList := []database.BusinessCard{
		cardCreatedAt(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)), // week 1
		cardCreatedAt(time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)), // week 2
		cardCreatedAt(time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)), // week 2
	}

	buckets := weeklyBuckets(cardList)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %v", len(buckets), buckets)
	}
	if buckets[0].Week != "Week 1" || buckets[0].Count != 1 {
		t.Fatalf("first bucket = %+v, want Week 1 x1", buckets[0])
	}
	if buckets[1].Week != "Week 2" || buckets[1].Count != 2 {
		t.Fatalf("second bucket = %+v, want Week 2 x2", buckets[1])
	}
}

func TestDashboardStats_Recent(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	base := time.Now().Add(-48 * time.Hour)
	for i := 0; i < 5; i++ {
		card := database.BusinessCard{
			Company:   "Acme",
			Slug:      GenerateSlug("acme") + string(rune('a'+i)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&card).Error; err != nil {
			t.Fatalf("seed card: %v", err)
		}
	}

	stats, err := svc.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("dashboard stats: %v", err)
	}
	if stats.Total != 5 {
		t.Fatalf("total = %d, want 5", stats.Total)
	}
	if len(stats.Recent) != 3 {
		t.Fatalf("recent = %d cards, want 3", len(stats.Recent))
	}
	for i := 1; i < len(stats.Recent); i++ {
		if stats.Recent[i].CreatedAt.After(stats.Recent[i-1].CreatedAt) {
			t.Fatalf("recent cards not in descending created_at order: %v", stats.Recent)
		}
	}
}
