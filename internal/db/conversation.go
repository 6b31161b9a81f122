package db

import (
	"database/sql"
	"time"

	"life-coach-chat/internal/models"
)

// CreateConversation creates a new conversation for a user
func (d *DB) CreateConversation(userID int64, title string) (*models.Conversation, error) {
	return WithLockResult(d, func() (*models.Conversation, error) {
		result, err := d.db.Exec(
			`INSERT INTO conversations (user_id, title) VALUES (?, ?)`,
			userID, title,
		)
		if err != nil {
			return nil, err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}

		now := time.Now()
		return &models.Conversation{
			ID:        id,
			UserID:    userID,
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	})
}

// GetUserConversation retrieves a conversation only if it belongs to the
// given user. Returns sql.ErrNoRows otherwise, so callers fail closed.
func (d *DB) GetUserConversation(id, userID int64) (*models.Conversation, error) {
	return WithLockResult(d, func() (*models.Conversation, error) {
		row := d.db.QueryRow(
			`SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = ? AND user_id = ?`,
			id, userID,
		)

		var conv models.Conversation
		err := row.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
		if err != nil {
			return nil, err
		}

		return &conv, nil
	})
}

// ListConversations retrieves all conversations for a user, most recently
// updated first
func (d *DB) ListConversations(userID int64) ([]models.Conversation, error) {
	return WithLockResult(d, func() ([]models.Conversation, error) {
		rows, err := d.db.Query(
			`SELECT id, user_id, title, created_at, updated_at FROM conversations
			 WHERE user_id = ? ORDER BY updated_at DESC`,
			userID,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var conversations []models.Conversation
		for rows.Next() {
			var conv models.Conversation
			if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
				return nil, err
			}
			conversations = append(conversations, conv)
		}

		return conversations, rows.Err()
	})
}

// TouchConversation bumps the conversation's updated_at timestamp
func (d *DB) TouchConversation(id int64, now time.Time) error {
	return d.WithLock(func() error {
		_, err := d.db.Exec(
			`UPDATE conversations SET updated_at = ? WHERE id = ?`,
			now, id,
		)
		return err
	})
}

// DeleteConversation removes a user's conversation and its messages
func (d *DB) DeleteConversation(id, userID int64) error {
	return d.WithLock(func() error {
		result, err := d.db.Exec(
			`DELETE FROM conversations WHERE id = ? AND user_id = ?`,
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

		// Messages cascade via foreign key, but delete explicitly in case
		// the connection was opened without foreign_keys=on
		_, err = d.db.Exec(`DELETE FROM messages WHERE conversation_id = ?`, id)
		return err
	})
}
