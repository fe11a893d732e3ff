package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"eduhub/api/internal/models"
)

type fakeLeadStats struct {
	counts    map[models.LeadStatus]int
	countsErr error
	daily     map[string]int
	avgHours  float64
}

func (s *fakeLeadStats) CountByStatus(ctx context.Context) (map[models.LeadStatus]int, error) {
	return s.counts, s.countsErr
}

func (s *fakeLeadStats) DailyCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	return s.daily, nil
}

func (s *fakeLeadStats) AvgResponseHours(ctx context.Context) (float64, error) {
	return s.avgHours, nil
}

func TestDashboardRefreshBuildsFourteenDayTrend(t *testing.T) {
	now := time.Date(2026, time.April, 20, 16, 45, 0, 0, time.UTC)
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format("2006-01-02")
	}

	apps := &fakeLeadStats{
		counts:   map[models.LeadStatus]int{models.LeadStatusNew: 5, models.LeadStatusCompleted: 2},
		daily:    map[string]int{day(0): 3, day(-13): 1},
		avgHours: 10,
	}
	contacts := &fakeLeadStats{
		counts:   map[models.LeadStatus]int{models.LeadStatusInProgress: 1},
		daily:    map[string]int{day(-1): 4},
		avgHours: 6,
	}

	svc := NewDashboardService(apps, contacts, nil, zerolog.Nop())
	svc.now = func() time.Time { return now }

	summary, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Equal(t, apps.counts, summary.Applications)
	require.Equal(t, contacts.counts, summary.Contacts)
	require.Equal(t, 8.0, summary.AvgResponseHours)
	require.Equal(t, now, summary.GeneratedAt)

	require.Len(t, summary.Trend, 14)
	require.Equal(t, day(-13), summary.Trend[0].Day)
	require.Equal(t, day(0), summary.Trend[13].Day)
	require.Equal(t, 1, summary.Trend[0].Applications)
	require.Equal(t, 3, summary.Trend[13].Applications)
	require.Equal(t, 4, summary.Trend[12].Contacts)
	// days without submissions still appear, as zeros
	require.Equal(t, 0, summary.Trend[5].Applications)
	require.Equal(t, 0, summary.Trend[5].Contacts)
}

func TestDashboardRefreshAveragesOnlyPopulatedSides(t *testing.T) {
	apps := &fakeLeadStats{counts: map[models.LeadStatus]int{}, avgHours: 12}
	contacts := &fakeLeadStats{counts: map[models.LeadStatus]int{}, avgHours: 0}

	svc := NewDashboardService(apps, contacts, nil, zerolog.Nop())
	summary, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12.0, summary.AvgResponseHours)
}

func TestDashboardRefreshPropagatesStatsFailure(t *testing.T) {
	apps := &fakeLeadStats{countsErr: errors.New("query failed")}
	contacts := &fakeLeadStats{counts: map[models.LeadStatus]int{}}

	svc := NewDashboardService(apps, contacts, nil, zerolog.Nop())
	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
}

func TestDashboardSummaryFallsBackToRefreshWithoutCache(t *testing.T) {
	apps := &fakeLeadStats{counts: map[models.LeadStatus]int{models.LeadStatusNew: 1}}
	contacts := &fakeLeadStats{counts: map[models.LeadStatus]int{}}

	svc := NewDashboardService(apps, contacts, nil, zerolog.Nop())
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Applications[models.LeadStatusNew])
}
