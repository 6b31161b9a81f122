package db

import (
	"database/sql"
	"time"

	"life-coach-chat/internal/models"
)

// ListUserOverviews retrieves every account joined with its engagement
// stats, newest account first. Users with no activity yet get a nil
// Stats.
func (d *DB) ListUserOverviews() ([]models.UserOverview, error) {
	return WithLockResult(d, func() ([]models.UserOverview, error) {
		rows, err := d.db.Query(
			`SELECT u.id, u.name, u.email, u.is_admin, u.created_at,
			        s.current_streak, s.longest_streak, s.total_challenges_completed, s.total_messages, s.last_active
			 FROM users u
			 LEFT JOIN user_stats s ON s.user_id = u.id
			 ORDER BY u.created_at DESC, u.id DESC`,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var overviews []models.UserOverview
		for rows.Next() {
			var o models.UserOverview
			var currentStreak, longestStreak, challengesCompleted, totalMessages sql.NullInt64
			var lastActive sql.NullTime

			err := rows.Scan(
				&o.ID, &o.Name, &o.Email, &o.IsAdmin, &o.CreatedAt,
				&currentStreak, &longestStreak, &challengesCompleted, &totalMessages, &lastActive,
			)
			if err != nil {
				return nil, err
			}

			if lastActive.Valid {
				o.Stats = &models.UserStats{
					UserID:                   o.ID,
					CurrentStreak:            int(currentStreak.Int64),
					LongestStreak:            int(longestStreak.Int64),
					TotalChallengesCompleted: int(challengesCompleted.Int64),
					TotalMessages:            int(totalMessages.Int64),
					LastActive:               lastActive.Time,
				}
			}

			overviews = append(overviews, o)
		}

		return overviews, rows.Err()
	})
}

// GetPlatformStats aggregates the dashboard counters in one query.
// activeSince bounds the active-user window.
func (d *DB) GetPlatformStats(activeSince time.Time) (*models.PlatformStats, error) {
	return WithLockResult(d, func() (*models.PlatformStats, error) {
		row := d.db.QueryRow(
			`SELECT
				(SELECT COUNT(*) FROM users),
				(SELECT COUNT(*) FROM user_stats WHERE last_active >= ?),
				(SELECT COUNT(*) FROM crisis_alerts WHERE reviewed = 0),
				(SELECT COUNT(*) FROM messages),
				(SELECT COUNT(*) FROM challenges)`,
			activeSince,
		)

		var stats models.PlatformStats
		err := row.Scan(
			&stats.TotalUsers,
			&stats.ActiveToday,
			&stats.UnreviewedAlerts,
			&stats.TotalMessages,
			&stats.TotalChallenges,
		)
		if err != nil {
			return nil, err
		}

		return &stats, nil
	})
}
