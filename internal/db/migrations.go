package db

// Migrate runs all database migrations
func (d *DB) Migrate() error {
	return d.WithLock(func() error {
		// Create users table
		_, err := d.db.Exec(`
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				system_prompt_context TEXT,
				is_admin INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return err
		}

		// Create conversations table
		_, err = d.db.Exec(`
			CREATE TABLE IF NOT EXISTS conversations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				title TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)
		`)
		if err != nil {
			return err
		}

		// Create messages table
		_, err = d.db.Exec(`
			CREATE TABLE IF NOT EXISTS messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				conversation_id INTEGER NOT NULL,
				role TEXT NOT NULL CHECK(role IN ('user', 'assistant')),
				content TEXT NOT NULL,
				flagged_crisis INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
			)
		`)
		if err != nil {
			return err
		}

		// Create user_stats table
		_, err = d.db.Exec(`
			CREATE TABLE IF NOT EXISTS user_stats (
				user_id INTEGER PRIMARY KEY,
				current_streak INTEGER NOT NULL DEFAULT 0,
				longest_streak INTEGER NOT NULL DEFAULT 0,
				total_challenges_completed INTEGER NOT NULL DEFAULT 0,
				total_messages INTEGER NOT NULL DEFAULT 0,
				last_active DATETIME NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)
		`)
		if err != nil {
			return err
		}

		// Create achievements catalog table
		_, err = d.db.Exec(`
			CREATE TABLE IF NOT EXISTS achievements (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				description TEXT NOT NULL DEFAULT '',
				icon TEXT NOT NULL DEFAULT '',
				requirement_type TEXT NOT NULL CHECK(requirement_type IN ('streak', 'challenges', 'messages')),
				requirement_value INTEGER NOT NULL
			)
		`)
		if err != nil {
			return err
		}

		// Create user_achievements join table
		_, err = d.db.Exec(`
			CREATE TABLE IF NOT EXISTS user_achievements (
				user_id INTEGER NOT NULL,
				achievement_id INTEGER NOT NULL,
				earned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (user_id, achievement_id),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (achievement_id) REFERENCES achievements(id) ON DELETE CASCADE
			)
		`)
		if err != nil {
			return err
		}

		// Create challenges table
		_, err = d.db.Exec(`
			CREATE TABLE IF NOT EXISTS challenges (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL CHECK(status IN ('active', 'completed', 'failed')),
				detected_from_chat INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				completed_at DATETIME,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)
		`)
		if err != nil {
			return err
		}

		// Create crisis_alerts table
		_, err = d.db.Exec(`
			CREATE TABLE IF NOT EXISTS crisis_alerts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				message_id INTEGER NOT NULL,
				user_id INTEGER NOT NULL,
				content TEXT NOT NULL,
				reviewed INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)
		`)
		if err != nil {
			return err
		}

		// Create indexes for better query performance
		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id)",
			"CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id)",
			"CREATE INDEX IF NOT EXISTS idx_challenges_user ON challenges(user_id)",
			"CREATE INDEX IF NOT EXISTS idx_crisis_alerts_reviewed ON crisis_alerts(reviewed)",
		}

		for _, idx := range indexes {
			if _, err := d.db.Exec(idx); err != nil {
				return err
			}
		}

		return d.seedAchievements()
	})
}

// seedAchievements populates the static achievement catalog.
// INSERT OR IGNORE keeps re-runs idempotent.
func (d *DB) seedAchievements() error {
	seed := []struct {
		name        string
		description string
		icon        string
		reqType     string
		reqValue    int
	}{
		{"First Steps", "Send your first message to the coach", "👋", "messages", 1},
		{"Regular", "Send 50 messages", "💬", "messages", 50},
		{"Century Club", "Send 100 messages", "🏆", "messages", 100},
		{"Three in a Row", "Stay active 3 days in a row", "🔥", "streak", 3},
		{"Week Warrior", "Stay active 7 days in a row", "⚡", "streak", 7},
		{"Monthly Master", "Stay active 30 days in a row", "🌟", "streak", 30},
		{"Challenge Accepted", "Complete your first challenge", "✅", "challenges", 1},
		{"Go-Getter", "Complete 5 challenges", "🎯", "challenges", 5},
		{"Overachiever", "Complete 10 challenges", "🚀", "challenges", 10},
	}

	for _, a := range seed {
		_, err := d.db.Exec(
			`INSERT OR IGNORE INTO achievements (name, description, icon, requirement_type, requirement_value)
			 VALUES (?, ?, ?, ?, ?)`,
			a.name, a.description, a.icon, a.reqType, a.reqValue,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
