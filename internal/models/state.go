// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Input bounds enforced at edit/import time. The calculators apply their
// own defensive defaults on top of these.
const (
	MaxWindowHours  = 24
	MinWorkDays     = 1
	MaxWorkDays     = 7
	DefaultWorkDays = 5
)

// QuotaState is the user-supplied quota snapshot that every calculator
// consumes. It is treated as a read-only value per call; the only place
// it mutates is the settings form and the import watcher, both of which
// persist a fresh copy.
type QuotaState struct {
	ResetTime       string    `json:"resetTime"`       // "HH:MM", daily session reset
	SessionPercent  float64   `json:"sessionPercent"`  // 0-100
	WindowHours     float64   `json:"windowHours"`     // rolling window length, capped at 24
	WeeklyPercent   float64   `json:"weeklyPercent"`   // 0-100
	WeeklyResetDate time.Time `json:"weeklyResetDate"` // end of the 7-day window
	WeeklyWorkDays  int       `json:"weeklyWorkDays"`  // 1-7
	SonnetPercent   float64   `json:"sonnetPercent"`   // model-specific sub-quota, 0-100
	SonnetResetDate time.Time `json:"sonnetResetDate"` // optional override, zero = weekly reset
	LastPaymentDate time.Time `json:"lastPaymentDate"` // monthly cycle anchor
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Clone returns a copy of the state.
func (s *QuotaState) Clone() QuotaState {
	return *s
}

// SonnetReset returns the reset date for the Sonnet sub-quota, falling
// back to the weekly reset date when no override is set.
func (s *QuotaState) SonnetReset() time.Time {
	if !s.SonnetResetDate.IsZero() {
		return s.SonnetResetDate
	}
	return s.WeeklyResetDate
}

// ClampInputs applies the edit-time bounds: percents capped to [0,100],
// window length to (0,24], workdays to [1,7]. It does not invent values
// for empty fields; that is the calculators' job.
func (s *QuotaState) ClampInputs() {
	s.SessionPercent = ClampPercent(s.SessionPercent)
	s.WeeklyPercent = ClampPercent(s.WeeklyPercent)
	s.SonnetPercent = ClampPercent(s.SonnetPercent)

	if s.WindowHours > MaxWindowHours {
		s.WindowHours = MaxWindowHours
	}
	if s.WindowHours < 0 {
		s.WindowHours = 0
	}

	if s.WeeklyWorkDays > MaxWorkDays {
		s.WeeklyWorkDays = MaxWorkDays
	}
	if s.WeeklyWorkDays < 0 {
		s.WeeklyWorkDays = 0
	}
}

// ClampPercent clamps a percentage to [0,100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// CoerceFloat converts a user-entered numeric string to a float64.
// Non-numeric or empty input coerces to 0.
func CoerceFloat(raw string) float64 {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// CoerceWorkDays converts a user-entered workdays value. Non-numeric or
// non-positive input falls back to the default of 5; anything above 7 is
// clamped to 7.
func CoerceWorkDays(raw string) int {
	v := int(CoerceFloat(raw))
	if v <= 0 {
		return DefaultWorkDays
	}
	if v > MaxWorkDays {
		return MaxWorkDays
	}
	return v
}

// RawState is the tolerant JSON shape accepted from the import file and
// legacy persisted state. Numeric fields may arrive as numbers or as
// strings; dates may be RFC3339 strings or unix timestamps. Fields that
// are absent keep their previous value when merged.
type RawState struct {
	ResetTime       *string         `json:"resetTime,omitempty"`
	SessionPercent  json.RawMessage `json:"sessionPercent,omitempty"`
	WindowHours     json.RawMessage `json:"windowHours,omitempty"`
	WeeklyPercent   json.RawMessage `json:"weeklyPercent,omitempty"`
	WeeklyResetDate json.RawMessage `json:"weeklyResetDate,omitempty"`
	WeeklyWorkDays  json.RawMessage `json:"weeklyWorkDays,omitempty"`
	SonnetPercent   json.RawMessage `json:"sonnetPercent,omitempty"`
	SonnetResetDate json.RawMessage `json:"sonnetResetDate,omitempty"`
	LastPaymentDate json.RawMessage `json:"lastPaymentDate,omitempty"`
	LastUpdated     json.RawMessage `json:"lastUpdated,omitempty"`
}

// MergeInto applies the fields present in the raw state onto dst,
// coercing defensively. Returns the number of fields applied.
func (r *RawState) MergeInto(dst *QuotaState) int {
	applied := 0

	if r.ResetTime != nil {
		dst.ResetTime = strings.TrimSpace(*r.ResetTime)
		applied++
	}
	if v, ok := parseNumberField(r.SessionPercent); ok {
		dst.SessionPercent = v
		applied++
	}
	if v, ok := parseNumberField(r.WindowHours); ok {
		dst.WindowHours = v
		applied++
	}
	if v, ok := parseNumberField(r.WeeklyPercent); ok {
		dst.WeeklyPercent = v
		applied++
	}
	if t, ok := parseTimeField(r.WeeklyResetDate); ok {
		dst.WeeklyResetDate = t
		applied++
	}
	if v, ok := parseNumberField(r.WeeklyWorkDays); ok {
		dst.WeeklyWorkDays = int(v)
		applied++
	}
	if v, ok := parseNumberField(r.SonnetPercent); ok {
		dst.SonnetPercent = v
		applied++
	}
	if t, ok := parseTimeField(r.SonnetResetDate); ok {
		dst.SonnetResetDate = t
		applied++
	}
	if t, ok := parseTimeField(r.LastPaymentDate); ok {
		dst.LastPaymentDate = t
		applied++
	}
	if t, ok := parseTimeField(r.LastUpdated); ok {
		dst.LastUpdated = t
		applied++
	}

	if applied > 0 {
		dst.ClampInputs()
	}
	return applied
}

// parseNumberField accepts a JSON number or a numeric string.
// Anything else coerces to 0 per the degradation rules.
func parseNumberField(data json.RawMessage) (float64, bool) {
	if len(data) == 0 {
		return 0, false
	}

	var numVal float64
	if err := json.Unmarshal(data, &numVal); err == nil {
		return numVal, true
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		return CoerceFloat(strVal), true
	}

	return 0, true
}

// parseTimeField accepts an ISO 8601 string or a unix timestamp
// (seconds or milliseconds).
func parseTimeField(data json.RawMessage) (time.Time, bool) {
	if len(data) == 0 {
		return time.Time{}, false
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
			if t, err := time.Parse(layout, strVal); err == nil {
				return t, true
			}
		}
		return time.Time{}, true
	}

	var numVal float64
	if err := json.Unmarshal(data, &numVal); err == nil {
		if numVal <= 0 {
			return time.Time{}, true
		}
		if numVal > 1e12 {
			return time.UnixMilli(int64(numVal)), true
		}
		return time.Unix(int64(numVal), 0), true
	}

	return time.Time{}, true
}
