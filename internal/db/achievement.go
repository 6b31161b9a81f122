package db

import (
	"life-coach-chat/internal/models"
)

// ListAchievements retrieves the full achievement catalog ordered by
// requirement value
func (d *DB) ListAchievements() ([]models.Achievement, error) {
	return WithLockResult(d, func() ([]models.Achievement, error) {
		rows, err := d.db.Query(
			`SELECT id, name, description, icon, requirement_type, requirement_value
			 FROM achievements ORDER BY requirement_value ASC`,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var achievements []models.Achievement
		for rows.Next() {
			var a models.Achievement
			var reqType string
			if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &reqType, &a.RequirementValue); err != nil {
				return nil, err
			}
			a.RequirementType = models.RequirementType(reqType)
			achievements = append(achievements, a)
		}

		return achievements, rows.Err()
	})
}

// ListUserAchievements retrieves the achievements a user has earned
func (d *DB) ListUserAchievements(userID int64) ([]models.UserAchievement, error) {
	return WithLockResult(d, func() ([]models.UserAchievement, error) {
		rows, err := d.db.Query(
			`SELECT user_id, achievement_id, earned_at FROM user_achievements
			 WHERE user_id = ? ORDER BY earned_at DESC`,
			userID,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var earned []models.UserAchievement
		for rows.Next() {
			var ua models.UserAchievement
			if err := rows.Scan(&ua.UserID, &ua.AchievementID, &ua.EarnedAt); err != nil {
				return nil, err
			}
			earned = append(earned, ua)
		}

		return earned, rows.Err()
	})
}

// InsertUserAchievement awards an achievement to a user. The (user,
// achievement) primary key plus INSERT OR IGNORE make the award
// idempotent; the return value reports whether a new row was created.
func (d *DB) InsertUserAchievement(userID, achievementID int64) (bool, error) {
	return WithLockResult(d, func() (bool, error) {
		result, err := d.db.Exec(
			`INSERT OR IGNORE INTO user_achievements (user_id, achievement_id) VALUES (?, ?)`,
			userID, achievementID,
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
