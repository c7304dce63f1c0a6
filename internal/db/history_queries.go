package db

import (
	"context"
	"fmt"
	"time"

	"github.com/mgrendel/quotapace/internal/models"
)

// UpsertUsageSnapshot inserts a bucketed usage reading, folding repeat
// samples for the same bucket into a running average. Statuses keep the
// most recent sample's value.
func (db *DB) UpsertUsageSnapshot(snap *models.UsageSnapshot) error {
	query := `
		INSERT INTO usage_snapshots (
			bucket_time, session_percent, weekly_percent, sonnet_percent,
			session_status, weekly_status, sample_count
		) VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(bucket_time) DO UPDATE SET
			session_percent = (usage_snapshots.session_percent * usage_snapshots.sample_count + excluded.session_percent)
				/ (usage_snapshots.sample_count + 1),
			weekly_percent = (usage_snapshots.weekly_percent * usage_snapshots.sample_count + excluded.weekly_percent)
				/ (usage_snapshots.sample_count + 1),
			sonnet_percent = (usage_snapshots.sonnet_percent * usage_snapshots.sample_count + excluded.sonnet_percent)
				/ (usage_snapshots.sample_count + 1),
			session_status = excluded.session_status,
			weekly_status = excluded.weekly_status,
			sample_count = usage_snapshots.sample_count + 1
	`

	_, err := db.ExecContext(context.Background(), query,
		snap.BucketTime.UTC().Format(timeFormat),
		snap.SessionPercent,
		snap.WeeklyPercent,
		snap.SonnetPercent,
		string(snap.SessionStatus),
		string(snap.WeeklyStatus),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert usage snapshot: %w", err)
	}
	return nil
}

// GetSnapshotsSince returns snapshots with buckets at or after the given
// instant, oldest first.
func (db *DB) GetSnapshotsSince(since time.Time) ([]models.UsageSnapshot, error) {
	query := `
		SELECT id, bucket_time, session_percent, weekly_percent, sonnet_percent,
			   session_status, weekly_status, sample_count
		FROM usage_snapshots
		WHERE bucket_time >= ?
		ORDER BY bucket_time ASC
	`

	rows, err := db.QueryContext(context.Background(), query, since.UTC().Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query usage snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []models.UsageSnapshot
	for rows.Next() {
		var snap models.UsageSnapshot
		var bucket, sessionStatus, weeklyStatus string

		if err := rows.Scan(
			&snap.ID,
			&bucket,
			&snap.SessionPercent,
			&snap.WeeklyPercent,
			&snap.SonnetPercent,
			&sessionStatus,
			&weeklyStatus,
			&snap.SampleCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage snapshot: %w", err)
		}

		if t, err := time.ParseInLocation(timeFormat, bucket, time.UTC); err == nil {
			snap.BucketTime = t
		}
		snap.SessionStatus = models.Status(sessionStatus)
		snap.WeeklyStatus = models.Status(weeklyStatus)
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// GetLastSnapshot returns the most recent snapshot, or nil when the
// history is empty.
func (db *DB) GetLastSnapshot() (*models.UsageSnapshot, error) {
	snaps, err := db.GetSnapshotsSince(time.Time{})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[len(snaps)-1], nil
}

// GetHistoryStats summarizes the snapshots at or after since.
func (db *DB) GetHistoryStats(since time.Time) (*models.HistoryStats, error) {
	query := `
		SELECT COUNT(*),
			   COALESCE(MIN(bucket_time), ''),
			   COALESCE(MAX(bucket_time), ''),
			   COALESCE(MAX(session_percent), 0),
			   COALESCE(AVG(session_percent), 0),
			   COALESCE(MAX(weekly_percent), 0),
			   COALESCE(SUM(CASE WHEN session_status = 'CRITICAL' OR weekly_status = 'CRITICAL' THEN 1 ELSE 0 END), 0)
		FROM usage_snapshots
		WHERE bucket_time >= ?
	`

	var stats models.HistoryStats
	var first, last string

	err := db.QueryRowContext(context.Background(), query, since.UTC().Format(timeFormat)).Scan(
		&stats.BucketCount,
		&first,
		&last,
		&stats.PeakSession,
		&stats.AvgSession,
		&stats.PeakWeekly,
		&stats.CriticalEvents,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history stats: %w", err)
	}

	if t, err := time.ParseInLocation(timeFormat, first, time.UTC); err == nil {
		stats.FirstBucket = t
	}
	if t, err := time.ParseInLocation(timeFormat, last, time.UTC); err == nil {
		stats.LastBucket = t
	}

	return &stats, nil
}

// PruneSnapshots deletes snapshots with buckets older than the cutoff
// and returns how many rows were removed.
func (db *DB) PruneSnapshots(before time.Time) (int64, error) {
	result, err := db.ExecContext(context.Background(),
		`DELETE FROM usage_snapshots WHERE bucket_time < ?`,
		before.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage snapshots: %w", err)
	}
	return result.RowsAffected()
}
