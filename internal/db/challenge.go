package db

import (
	"database/sql"
	"time"

	"life-coach-chat/internal/models"
)

// CreateChallenge inserts a new active challenge for a user
func (d *DB) CreateChallenge(userID int64, title, description string, detectedFromChat bool) (*models.Challenge, error) {
	return WithLockResult(d, func() (*models.Challenge, error) {
		result, err := d.db.Exec(
			`INSERT INTO challenges (user_id, title, description, status, detected_from_chat)
			 VALUES (?, ?, ?, ?, ?)`,
			userID, title, description, string(models.ChallengeActive), detectedFromChat,
		)
		if err != nil {
			return nil, err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}

		return &models.Challenge{
			ID:               id,
			UserID:           userID,
			Title:            title,
			Description:      description,
			Status:           models.ChallengeActive,
			DetectedFromChat: detectedFromChat,
			CreatedAt:        time.Now(),
		}, nil
	})
}

// GetUserChallenge retrieves a challenge only if it belongs to the user
func (d *DB) GetUserChallenge(id, userID int64) (*models.Challenge, error) {
	return WithLockResult(d, func() (*models.Challenge, error) {
		row := d.db.QueryRow(
			`SELECT id, user_id, title, description, status, detected_from_chat, created_at, completed_at
			 FROM challenges WHERE id = ? AND user_id = ?`,
			id, userID,
		)
		return scanChallenge(row)
	})
}

// ListChallenges retrieves a user's challenges, newest first, optionally
// filtered by status
func (d *DB) ListChallenges(userID int64, status models.ChallengeStatus) ([]models.Challenge, error) {
	return WithLockResult(d, func() ([]models.Challenge, error) {
		query := `SELECT id, user_id, title, description, status, detected_from_chat, created_at, completed_at
			 FROM challenges WHERE user_id = ?`
		args := []any{userID}
		if status != "" {
			query += ` AND status = ?`
			args = append(args, string(status))
		}
		query += ` ORDER BY created_at DESC, id DESC`

		rows, err := d.db.Query(query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var challenges []models.Challenge
		for rows.Next() {
			ch, err := scanChallenge(rows)
			if err != nil {
				return nil, err
			}
			challenges = append(challenges, *ch)
		}

		return challenges, rows.Err()
	})
}

// UpdateChallenge saves the mutable fields of a challenge
func (d *DB) UpdateChallenge(ch *models.Challenge) error {
	return d.WithLock(func() error {
		var completedAt any
		if ch.CompletedAt != nil {
			completedAt = *ch.CompletedAt
		}

		result, err := d.db.Exec(
			`UPDATE challenges SET title = ?, description = ?, status = ?, completed_at = ?
			 WHERE id = ? AND user_id = ?`,
			ch.Title, ch.Description, string(ch.Status), completedAt, ch.ID, ch.UserID,
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

// DeleteChallenge removes a user's challenge
func (d *DB) DeleteChallenge(id, userID int64) error {
	return d.WithLock(func() error {
		result, err := d.db.Exec(
			`DELETE FROM challenges WHERE id = ? AND user_id = ?`,
			id, userID,
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row rowScanner) (*models.Challenge, error) {
	var ch models.Challenge
	var status string
	var completedAt sql.NullTime
	err := row.Scan(&ch.ID, &ch.UserID, &ch.Title, &ch.Description, &status, &ch.DetectedFromChat, &ch.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	ch.Status = models.ChallengeStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		ch.CompletedAt = &t
	}

	return &ch, nil
}
