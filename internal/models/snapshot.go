// Package models defines data structures and domain types.
package models

import "time"

// UsageSnapshot is a bucketed point-in-time usage reading (DB model).
// Readings within the same bucket are averaged so long sessions do not
// bloat the history table.
type UsageSnapshot struct {
	ID             int64
	BucketTime     time.Time
	SessionPercent float64
	WeeklyPercent  float64
	SonnetPercent  float64
	SessionStatus  Status
	WeeklyStatus   Status
	SampleCount    int
}

// SnapshotRange identifies a history query window.
type SnapshotRange int

const (
	RangeDay SnapshotRange = iota
	RangeWeek
	RangeMonth
)

// String returns a short label for the range.
func (r SnapshotRange) String() string {
	switch r {
	case RangeDay:
		return "24h"
	case RangeWeek:
		return "7d"
	case RangeMonth:
		return "30d"
	default:
		return "all"
	}
}

// Duration returns the span covered by the range.
func (r SnapshotRange) Duration() time.Duration {
	switch r {
	case RangeDay:
		return 24 * time.Hour
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Next cycles to the following range, wrapping around.
func (r SnapshotRange) Next() SnapshotRange {
	switch r {
	case RangeDay:
		return RangeWeek
	case RangeWeek:
		return RangeMonth
	default:
		return RangeDay
	}
}

// HistoryStats summarizes a queried snapshot window for the history tab.
type HistoryStats struct {
	FirstBucket    time.Time
	LastBucket     time.Time
	BucketCount    int
	PeakSession    float64
	AvgSession     float64
	PeakWeekly     float64
	CriticalEvents int
}
