// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trend aggregates converted readings into half-year averages and
// fits a least-squares line through them. It is the numeric side of the
// "bicycle traffic per semester" chart built from the CSV output.
package trend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/bikecount/pkg/types"
)

const dateLayout = "2006-01-02"

// Point is one half-year bucket.
type Point struct {
	// Period is the bucket label, e.g. "2023-H2".
	Period string `json:"period" yaml:"period"`

	// Start is the first day of the half-year (Jan 1 or Jul 1, UTC).
	Start time.Time `json:"start" yaml:"start"`

	// Mean is the average daily total over the bucket's readings.
	Mean float64 `json:"mean" yaml:"mean"`

	// Samples is the number of readings in the bucket.
	Samples int `json:"samples" yaml:"samples"`
}

// Line is the least-squares fit evaluated at the first and last period.
type Line struct {
	From Point `json:"from" yaml:"from"`
	To   Point `json:"to" yaml:"to"`
}

// Report is the outcome of Aggregate.
type Report struct {
	Points []Point `json:"points" yaml:"points"`

	// Trend is nil when there are no points.
	Trend *Line `json:"trend,omitempty" yaml:"trend,omitempty"`

	// Marker echoes the configured marker day; MarkerInRange reports whether
	// it lies between the first and last period start.
	Marker        string `json:"marker,omitempty" yaml:"marker,omitempty"`
	MarkerInRange bool   `json:"marker_in_range" yaml:"marker_in_range"`

	// Skipped counts readings dropped by the filters or unparseable values.
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Aggregate filters readings by station, start day and a positive total,
// groups them by half-year, and fits the trend line.
func Aggregate(readings []types.Reading, cfg types.TrendConfig) (Report, error) {
	var start, marker time.Time
	var err error
	if cfg.Start != "" {
		if start, err = time.Parse(dateLayout, cfg.Start); err != nil {
			return Report{}, fmt.Errorf("invalid trend start %q: %w", cfg.Start, err)
		}
	}
	if cfg.Marker != "" {
		if marker, err = time.Parse(dateLayout, cfg.Marker); err != nil {
			return Report{}, fmt.Errorf("invalid trend marker %q: %w", cfg.Marker, err)
		}
	}

	stations := make(map[string]bool, len(cfg.Stations))
	for _, s := range cfg.Stations {
		stations[s] = true
	}

	type bucket struct {
		start time.Time
		sum   float64
		n     int
	}
	buckets := make(map[string]*bucket)
	var report Report

	for _, r := range readings {
		day, ok := parseDay(r.Date)
		if !ok || day.Before(start) {
			report.Skipped++
			continue
		}
		if len(stations) > 0 && !stations[r.Station] {
			report.Skipped++
			continue
		}
		total, err := strconv.ParseFloat(strings.TrimSpace(r.Total), 64)
		if err != nil || !(total > 0) {
			report.Skipped++
			continue
		}

		period, periodStart := halfYear(day)
		b, ok := buckets[period]
		if !ok {
			b = &bucket{start: periodStart}
			buckets[period] = b
		}
		b.sum += total
		b.n++
	}

	for period, b := range buckets {
		report.Points = append(report.Points, Point{
			Period:  period,
			Start:   b.start,
			Mean:    b.sum / float64(b.n),
			Samples: b.n,
		})
	}
	sort.Slice(report.Points, func(i, j int) bool {
		return report.Points[i].Start.Before(report.Points[j].Start)
	})

	if len(report.Points) == 0 {
		return report, nil
	}

	report.Trend = fit(report.Points)
	if !marker.IsZero() {
		report.Marker = cfg.Marker
		first, last := report.Points[0].Start, report.Points[len(report.Points)-1].Start
		report.MarkerInRange = !marker.Before(first) && !marker.After(last)
	}
	return report, nil
}

// fit computes an ordinary least-squares line over (period start, mean).
// With a single point the slope is zero.
func fit(points []Point) *Line {
	n := float64(len(points))
	var xm, ym float64
	for _, p := range points {
		xm += float64(p.Start.Unix())
		ym += p.Mean
	}
	xm /= n
	ym /= n

	var num, den float64
	for _, p := range points {
		dx := float64(p.Start.Unix()) - xm
		num += dx * (p.Mean - ym)
		den += dx * dx
	}
	var slope float64
	if den != 0 {
		slope = num / den
	}
	at := func(p Point) Point {
		return Point{
			Period: p.Period,
			Start:  p.Start,
			Mean:   ym + slope*(float64(p.Start.Unix())-xm),
		}
	}
	return &Line{From: at(points[0]), To: at(points[len(points)-1])}
}

// parseDay accepts YYYY-MM-DD, optionally followed by a time part.
func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return time.Time{}, false
	}
	day, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func halfYear(day time.Time) (string, time.Time) {
	half := 1
	month := time.January
	if day.Month() >= time.July {
		half = 2
		month = time.July
	}
	return fmt.Sprintf("%d-H%d", day.Year(), half), time.Date(day.Year(), month, 1, 0, 0, 0, 0, time.UTC)
}
