// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bikecount/pkg/types"
)

func reading(station, total, date string) types.Reading {
	return types.Reading{Station: station, Total: total, Date: date}
}

func TestAggregate_HalfYearMeans(t *testing.T) {
	readings := []types.Reading{
		reading("Ercolani", "100", "2023-01-10"),
		reading("Ercolani", "200", "2023-06-30"),
		reading("Sabotino", "300", "2023-07-01"),
		reading("San Donato", "500", "2023-12-31T00:00:00+01:00"),
		reading("Ercolani", "50", "2024-02-01"),
	}

	report, err := Aggregate(readings, types.TrendConfig{})
	require.NoError(t, err)
	require.Len(t, report.Points, 3)

	assert.Equal(t, "2023-H1", report.Points[0].Period)
	assert.InDelta(t, 150, report.Points[0].Mean, 1e-9)
	assert.Equal(t, 2, report.Points[0].Samples)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), report.Points[0].Start)

	assert.Equal(t, "2023-H2", report.Points[1].Period)
	assert.InDelta(t, 400, report.Points[1].Mean, 1e-9)
	assert.Equal(t, time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), report.Points[1].Start)

	assert.Equal(t, "2024-H1", report.Points[2].Period)
	assert.InDelta(t, 50, report.Points[2].Mean, 1e-9)
	assert.Zero(t, report.Skipped)
}

func TestAggregate_Filters(t *testing.T) {
	readings := []types.Reading{
		reading("Ercolani", "10", "2018-12-31"),   // before start
		reading("Other", "10", "2020-01-01"),      // unknown station
		reading("Ercolani", "0", "2020-01-01"),    // zero total
		reading("Ercolani", "", "2020-01-01"),     // empty total
		reading("Ercolani", "abc", "2020-01-01"),  // not a number
		reading("Ercolani", "10", "01/01/2020"),   // bad date
		reading("Sabotino", "30", "2020-01-02"),   // kept
		reading("San Donato", "10", "2020-03-02"), // kept
	}
	cfg := types.TrendConfig{
		Stations: []string{"Ercolani", "Sabotino", "San Donato"},
		Start:    "2019-01-01",
	}

	report, err := Aggregate(readings, cfg)
	require.NoError(t, err)
	require.Len(t, report.Points, 1)
	assert.Equal(t, 2, report.Points[0].Samples)
	assert.InDelta(t, 20, report.Points[0].Mean, 1e-9)
	assert.Equal(t, 6, report.Skipped)
}

func TestAggregate_TrendLine(t *testing.T) {
	// Means rise by 100 per half-year; the fit goes through every point
	// up to the uneven spacing of half-years (181 vs 184 days).
	readings := []types.Reading{
		reading("S", "100", "2022-01-15"),
		reading("S", "200", "2022-07-15"),
		reading("S", "300", "2023-01-15"),
	}

	report, err := Aggregate(readings, types.TrendConfig{})
	require.NoError(t, err)
	require.NotNil(t, report.Trend)

	assert.Equal(t, "2022-H1", report.Trend.From.Period)
	assert.Equal(t, "2023-H1", report.Trend.To.Period)
	assert.InDelta(t, 100, report.Trend.From.Mean, 2)
	assert.InDelta(t, 300, report.Trend.To.Mean, 2)
	assert.Greater(t, report.Trend.To.Mean, report.Trend.From.Mean)
}

func TestAggregate_SinglePointIsFlat(t *testing.T) {
	report, err := Aggregate([]types.Reading{reading("S", "42", "2021-03-01")}, types.TrendConfig{})
	require.NoError(t, err)
	require.NotNil(t, report.Trend)
	assert.InDelta(t, 42, report.Trend.From.Mean, 1e-9)
	assert.InDelta(t, 42, report.Trend.To.Mean, 1e-9)
}

func TestAggregate_Marker(t *testing.T) {
	readings := []types.Reading{
		reading("S", "1", "2023-02-01"),
		reading("S", "1", "2024-08-01"),
	}

	tests := []struct {
		marker  string
		inRange bool
	}{
		{marker: "2024-01-01", inRange: true},
		{marker: "2023-01-01", inRange: true},
		{marker: "2024-07-02", inRange: false},
		{marker: "2020-01-01", inRange: false},
	}
	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			report, err := Aggregate(readings, types.TrendConfig{Marker: tt.marker})
			require.NoError(t, err)
			assert.Equal(t, tt.marker, report.Marker)
			assert.Equal(t, tt.inRange, report.MarkerInRange)
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	report, err := Aggregate(nil, types.DefaultConfig().Trend)
	require.NoError(t, err)
	assert.Empty(t, report.Points)
	assert.Nil(t, report.Trend)
	assert.False(t, report.MarkerInRange)
}

func TestAggregate_InvalidConfig(t *testing.T) {
	_, err := Aggregate(nil, types.TrendConfig{Start: "yesterday"})
	assert.ErrorContains(t, err, "invalid trend start")

	_, err = Aggregate(nil, types.TrendConfig{Marker: "2024/01/01"})
	assert.ErrorContains(t, err, "invalid trend marker")
}
