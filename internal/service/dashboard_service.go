package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eduhub/api/internal/models"
)

const (
	dashboardCacheKey = "dashboard:summary"
	dashboardCacheTTL = 5 * time.Minute
	trendDays         = 14
)

type LeadStats interface {
	CountByStatus(ctx context.Context) (map[models.LeadStatus]int, error)
	DailyCounts(ctx context.Context, since time.Time) (map[string]int, error)
	AvgResponseHours(ctx context.Context) (float64, error)
}

type DayCount struct {
	Day          string `json:"day"`
	Applications int    `json:"applications"`
	Contacts     int    `json:"contacts"`
}

type Summary struct {
	Applications     map[models.LeadStatus]int `json:"applications"`
	Contacts         map[models.LeadStatus]int `json:"contacts"`
	Trend            []DayCount                `json:"trend"`
	AvgResponseHours float64                   `json:"avgResponseHours"`
	GeneratedAt      time.Time                 `json:"generatedAt"`
}

// DashboardService aggregates lead stats for the admin overview and
// keeps the result in redis for a few minutes.
type DashboardService struct {
	applications LeadStats
	contacts     LeadStats
	cache        *redis.Client
	log          zerolog.Logger
	now          func() time.Time
}

func NewDashboardService(applications, contacts LeadStats, cache *redis.Client, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		applications: applications,
		contacts:     contacts,
		cache:        cache,
		log:          log,
		now:          time.Now,
	}
}

func (s *DashboardService) Summary(ctx context.Context) (Summary, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var cached Summary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the summary and replaces the cached copy.
func (s *DashboardService) Refresh(ctx context.Context) (Summary, error) {
	now := s.now().UTC()

	appCounts, err := s.applications.CountByStatus(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("application counts: %w", err)
	}
	contactCounts, err := s.contacts.CountByStatus(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("contact counts: %w", err)
	}

	since := now.AddDate(0, 0, -(trendDays - 1)).Truncate(24 * time.Hour)
	appDaily, err := s.applications.DailyCounts(ctx, since)
	if err != nil {
		return Summary{}, fmt.Errorf("application trend: %w", err)
	}
	contactDaily, err := s.contacts.DailyCounts(ctx, since)
	if err != nil {
		return Summary{}, fmt.Errorf("contact trend: %w", err)
	}

	trend := make([]DayCount, 0, trendDays)
	for i := 0; i < trendDays; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		trend = append(trend, DayCount{
			Day:          day,
			Applications: appDaily[day],
			Contacts:     contactDaily[day],
		})
	}

	appHours, err := s.applications.AvgResponseHours(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("application response time: %w", err)
	}
	contactHours, err := s.contacts.AvgResponseHours(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("contact response time: %w", err)
	}

	avg := 0.0
	switch {
	case appHours > 0 && contactHours > 0:
		avg = (appHours + contactHours) / 2
	case appHours > 0:
		avg = appHours
	default:
		avg = contactHours
	}

	summary := Summary{
		Applications:     appCounts,
		Contacts:         contactCounts,
		Trend:            trend,
		AvgResponseHours: avg,
		GeneratedAt:      now,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("dashboard cache write failed")
			}
		}
	}

	return summary, nil
}
