package db

import (
	"time"

	"life-coach-chat/internal/models"
)

// CreateMessage appends a message to a conversation
func (d *DB) CreateMessage(conversationID int64, role models.Role, content string, flaggedCrisis bool) (*models.Message, error) {
	return WithLockResult(d, func() (*models.Message, error) {
		result, err := d.db.Exec(
			`INSERT INTO messages (conversation_id, role, content, flagged_crisis) VALUES (?, ?, ?, ?)`,
			conversationID, string(role), content, flaggedCrisis,
		)
		if err != nil {
			return nil, err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}

		return &models.Message{
			ID:             id,
			ConversationID: conversationID,
			Role:           role,
			Content:        content,
			FlaggedCrisis:  flaggedCrisis,
			CreatedAt:      time.Now(),
		}, nil
	})
}

// GetMessages retrieves all messages for a conversation in chronological order
func (d *DB) GetMessages(conversationID int64) ([]models.Message, error) {
	return WithLockResult(d, func() ([]models.Message, error) {
		rows, err := d.db.Query(
			`SELECT id, conversation_id, role, content, flagged_crisis, created_at FROM messages
			 WHERE conversation_id = ? ORDER BY id ASC`,
			conversationID,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var messages []models.Message
		for rows.Next() {
			var msg models.Message
			var role string
			if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &msg.FlaggedCrisis, &msg.CreatedAt); err != nil {
				return nil, err
			}
			msg.Role = models.Role(role)
			messages = append(messages, msg)
		}

		return messages, rows.Err()
	})
}
