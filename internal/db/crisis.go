package db

import (
	"database/sql"
	"time"

	"life-coach-chat/internal/models"
)

// CreateCrisisAlert records an alert for a flagged message. Callers are
// expected to truncate content before storage.
func (d *DB) CreateCrisisAlert(messageID, userID int64, content string) (*models.CrisisAlert, error) {
	return WithLockResult(d, func() (*models.CrisisAlert, error) {
		result, err := d.db.Exec(
			`INSERT INTO crisis_alerts (message_id, user_id, content, reviewed) VALUES (?, ?, ?, 0)`,
			messageID, userID, content,
		)
		if err != nil {
			return nil, err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}

		return &models.CrisisAlert{
			ID:        id,
			MessageID: messageID,
			UserID:    userID,
			Content:   content,
			Reviewed:  false,
			CreatedAt: time.Now(),
		}, nil
	})
}

// ListCrisisAlerts retrieves alerts by reviewed state, newest first
func (d *DB) ListCrisisAlerts(reviewed bool) ([]models.CrisisAlert, error) {
	return WithLockResult(d, func() ([]models.CrisisAlert, error) {
		rows, err := d.db.Query(
			`SELECT id, message_id, user_id, content, reviewed, created_at FROM crisis_alerts
			 WHERE reviewed = ? ORDER BY created_at DESC, id DESC`,
			reviewed,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var alerts []models.CrisisAlert
		for rows.Next() {
			var a models.CrisisAlert
			if err := rows.Scan(&a.ID, &a.MessageID, &a.UserID, &a.Content, &a.Reviewed, &a.CreatedAt); err != nil {
				return nil, err
			}
			alerts = append(alerts, a)
		}

		return alerts, rows.Err()
	})
}

// MarkAlertReviewed flips an alert's reviewed flag. The flag only moves
// in one direction; there is no way to un-review.
func (d *DB) MarkAlertReviewed(id int64) error {
	return d.WithLock(func() error {
		result, err := d.db.Exec(
			`UPDATE crisis_alerts SET reviewed = 1 WHERE id = ?`,
			id,
		)
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}
