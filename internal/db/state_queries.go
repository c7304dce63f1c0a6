package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mgrendel/quotapace/internal/logger"
	"github.com/mgrendel/quotapace/internal/models"
)

// StaleSessionAge is how old a persisted state may get before its
// session percent is considered meaningless and zeroed on load. The
// session window is at most 24h, so a half-day-old reading is from a
// window that has long since reset.
const StaleSessionAge = 12 * time.Hour

// SaveState upserts the single persisted quota state row.
func (db *DB) SaveState(state *models.QuotaState) error {
	query := `
		INSERT INTO quota_state (
			id, reset_time, session_percent, window_hours,
			weekly_percent, weekly_reset_date, weekly_work_days,
			sonnet_percent, sonnet_reset_date, last_payment_date, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			reset_time = excluded.reset_time,
			session_percent = excluded.session_percent,
			window_hours = excluded.window_hours,
			weekly_percent = excluded.weekly_percent,
			weekly_reset_date = excluded.weekly_reset_date,
			weekly_work_days = excluded.weekly_work_days,
			sonnet_percent = excluded.sonnet_percent,
			sonnet_reset_date = excluded.sonnet_reset_date,
			last_payment_date = excluded.last_payment_date,
			updated_at = excluded.updated_at
	`

	updatedAt := state.LastUpdated
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := db.ExecContext(context.Background(), query,
		state.ResetTime,
		state.SessionPercent,
		state.WindowHours,
		state.WeeklyPercent,
		nullTime(state.WeeklyResetDate),
		state.WeeklyWorkDays,
		state.SonnetPercent,
		nullTime(state.SonnetResetDate),
		nullTime(state.LastPaymentDate),
		updatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to save quota state: %w", err)
	}
	return nil
}

// LoadState reads the persisted quota state and applies the load-time
// invalidation rules relative to now:
//   - a weekly or sonnet reset date in the past zeroes that percent
//     (the window it was measured in is over);
//   - a state older than StaleSessionAge zeroes the session percent.
//
// Returns (nil, nil) when no state has ever been saved. The calculators
// rely on these rules having run; they never re-check them.
func (db *DB) LoadState(now time.Time) (*models.QuotaState, error) {
	query := `
		SELECT reset_time, session_percent, window_hours,
			   weekly_percent, weekly_reset_date, weekly_work_days,
			   sonnet_percent, sonnet_reset_date, last_payment_date, updated_at
		FROM quota_state WHERE id = 1
	`

	var state models.QuotaState
	var weeklyReset, sonnetReset, lastPayment, updatedAt sql.NullString

	err := db.QueryRowContext(context.Background(), query).Scan(
		&state.ResetTime,
		&state.SessionPercent,
		&state.WindowHours,
		&state.WeeklyPercent,
		&weeklyReset,
		&state.WeeklyWorkDays,
		&state.SonnetPercent,
		&sonnetReset,
		&lastPayment,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quota state: %w", err)
	}

	state.WeeklyResetDate = scanTime(weeklyReset)
	state.SonnetResetDate = scanTime(sonnetReset)
	state.LastPaymentDate = scanTime(lastPayment)
	state.LastUpdated = scanTime(updatedAt)

	db.invalidateStale(&state, now)

	return &state, nil
}

func (db *DB) invalidateStale(state *models.QuotaState, now time.Time) {
	if !state.WeeklyResetDate.IsZero() && state.WeeklyResetDate.Before(now) && state.WeeklyPercent != 0 {
		logger.Info("weekly reset date passed, zeroing weekly percent",
			"resetDate", state.WeeklyResetDate)
		state.WeeklyPercent = 0
	}

	if sonnetReset := state.SonnetReset(); !sonnetReset.IsZero() && sonnetReset.Before(now) && state.SonnetPercent != 0 {
		logger.Info("sonnet reset date passed, zeroing sonnet percent",
			"resetDate", sonnetReset)
		state.SonnetPercent = 0
	}

	if !state.LastUpdated.IsZero() && now.Sub(state.LastUpdated) > StaleSessionAge && state.SessionPercent != 0 {
		logger.Info("persisted state is stale, zeroing session percent",
			"age", now.Sub(state.LastUpdated))
		state.SessionPercent = 0
	}
}

// nullTime formats a timestamp for storage, mapping the zero value to NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeFormat)
}

// scanTime parses a stored timestamp, mapping NULL and junk to zero.
func scanTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(timeFormat, s.String, time.UTC)
	if err != nil {
		logger.Warn("unparseable timestamp in database", "value", s.String, "error", err)
		return time.Time{}
	}
	return t
}
