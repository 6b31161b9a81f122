package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"life-coach-chat/internal/models"
)

// CreateUser inserts a new user
func (d *DB) CreateUser(name, email string, isAdmin bool) (*models.User, error) {
	return WithLockResult(d, func() (*models.User, error) {
		result, err := d.db.Exec(
			`INSERT INTO users (name, email, is_admin) VALUES (?, ?, ?)`,
			name, email, isAdmin,
		)
		if err != nil {
			return nil, err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}

		return &models.User{
			ID:        id,
			Name:      name,
			Email:     email,
			IsAdmin:   isAdmin,
			CreatedAt: time.Now(),
		}, nil
	})
}

// GetUser retrieves a user by ID
func (d *DB) GetUser(id int64) (*models.User, error) {
	return WithLockResult(d, func() (*models.User, error) {
		row := d.db.QueryRow(
			`SELECT id, name, email, is_admin, created_at FROM users WHERE id = ?`,
			id,
		)

		var user models.User
		err := row.Scan(&user.ID, &user.Name, &user.Email, &user.IsAdmin, &user.CreatedAt)
		if err != nil {
			return nil, err
		}

		return &user, nil
	})
}

// GetUserContext retrieves the personalization context stored on the user
// profile. Returns (nil, nil) when the user has no context yet; a missing
// user surfaces as sql.ErrNoRows.
func (d *DB) GetUserContext(userID int64) (*models.SystemPromptContext, error) {
	return WithLockResult(d, func() (*models.SystemPromptContext, error) {
		row := d.db.QueryRow(
			`SELECT system_prompt_context FROM users WHERE id = ?`,
			userID,
		)

		var raw sql.NullString
		if err := row.Scan(&raw); err != nil {
			return nil, err
		}

		if !raw.Valid || raw.String == "" {
			return nil, nil
		}

		var ctx models.SystemPromptContext
		if err := json.Unmarshal([]byte(raw.String), &ctx); err != nil {
			return nil, err
		}

		return &ctx, nil
	})
}

// SetUserContext stores the personalization context as JSON on the user row
func (d *DB) SetUserContext(userID int64, ctx *models.SystemPromptContext) error {
	return d.WithLock(func() error {
		var raw any
		if ctx != nil {
			data, err := json.Marshal(ctx)
			if err != nil {
				return err
			}
			raw = string(data)
		}

		result, err := d.db.Exec(
			`UPDATE users SET system_prompt_context = ? WHERE id = ?`,
			raw, userID,
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
