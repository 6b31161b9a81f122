package db

import (
	"time"

	"life-coach-chat/internal/models"
)

// GetUserStats retrieves the stats row for a user.
// Returns sql.ErrNoRows when none exists yet.
func (d *DB) GetUserStats(userID int64) (*models.UserStats, error) {
	return WithLockResult(d, func() (*models.UserStats, error) {
		return d.getUserStatsLocked(userID)
	})
}

func (d *DB) getUserStatsLocked(userID int64) (*models.UserStats, error) {
	row := d.db.QueryRow(
		`SELECT user_id, current_streak, longest_streak, total_challenges_completed, total_messages, last_active
		 FROM user_stats WHERE user_id = ?`,
		userID,
	)

	var stats models.UserStats
	err := row.Scan(
		&stats.UserID,
		&stats.CurrentStreak,
		&stats.LongestStreak,
		&stats.TotalChallengesCompleted,
		&stats.TotalMessages,
		&stats.LastActive,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetOrCreateUserStats retrieves a user's stats, lazily creating a zeroed
// row with last_active = now on first activity
func (d *DB) GetOrCreateUserStats(userID int64, now time.Time) (*models.UserStats, error) {
	return WithLockResult(d, func() (*models.UserStats, error) {
		// INSERT OR IGNORE leaves an existing row untouched
		_, err := d.db.Exec(
			`INSERT OR IGNORE INTO user_stats
			 (user_id, current_streak, longest_streak, total_challenges_completed, total_messages, last_active)
			 VALUES (?, 0, 0, 0, 0, ?)`,
			userID, now,
		)
		if err != nil {
			return nil, err
		}

		return d.getUserStatsLocked(userID)
	})
}

// UpdateUserActivityGuarded applies a streak transition as a conditional
// update: the write only lands if last_active still matches the value the
// caller read, so two concurrent recordings for the same user cannot both
// apply against the same stale streak. Returns whether a row was updated.
func (d *DB) UpdateUserActivityGuarded(userID int64, newStreak, newLongest int, now, expectedLastActive time.Time) (bool, error) {
	return WithLockResult(d, func() (bool, error) {
		result, err := d.db.Exec(
			`UPDATE user_stats
			 SET current_streak = ?, longest_streak = ?, total_messages = total_messages + 1, last_active = ?
			 WHERE user_id = ? AND last_active = ?`,
			newStreak, newLongest, now, userID, expectedLastActive,
		)
		if err != nil {
			return false, err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return false, err
		}
		return affected > 0, nil
	})
}

// IncrementChallengesCompleted bumps the completed-challenge counter in a
// single atomic statement
func (d *DB) IncrementChallengesCompleted(userID int64) error {
	return d.WithLock(func() error {
		_, err := d.db.Exec(
			`UPDATE user_stats SET total_challenges_completed = total_challenges_completed + 1 WHERE user_id = ?`,
			userID,
		)
		return err
	})
}
