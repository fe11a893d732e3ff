package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLeadStatus(t *testing.T) {
	for _, s := range []string{"new", "in_progress", "completed"} {
		status, err := ParseLeadStatus(s)
		require.NoError(t, err)
		require.Equal(t, LeadStatus(s), status)
	}

	for _, s := range []string{"", "open", "NEW", "done"} {
		_, err := ParseLeadStatus(s)
		require.ErrorIs(t, err, ErrInvalidLeadStatus)
	}
}

func TestLeadFilterWindowPresets(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		window string
		from   time.Time
	}{
		{"7days", now.AddDate(0, 0, -7)},
		{"30days", now.AddDate(0, 0, -30)},
		{"90days", now.AddDate(0, 0, -90)},
		{"yearly", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"all", time.Time{}},
		{"", time.Time{}},
	}

	for _, tc := range cases {
		from, to := LeadFilter{Window: tc.window}.Range(now)
		require.Equal(t, tc.from, from, "window %q", tc.window)
		require.Equal(t, now, to, "window %q", tc.window)
	}
}

func TestLeadFilterExplicitRangeOverridesWindow(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)
	from := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)

	gotFrom, gotTo := LeadFilter{Window: "7days", From: &from, To: &to}.Range(now)
	require.Equal(t, from, gotFrom)
	// To is inclusive of the whole day it names.
	require.Equal(t, to.Add(24*time.Hour-time.Nanosecond), gotTo)
}

func TestLeadFilterToWithoutFromKeepsWindowStart(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	gotFrom, gotTo := LeadFilter{Window: "30days", To: &to}.Range(now)
	require.Equal(t, now.AddDate(0, 0, -30), gotFrom)
	require.Equal(t, to.Add(24*time.Hour-time.Nanosecond), gotTo)
}
