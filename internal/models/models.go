package models

import "time"

// Role defines who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
// Messages are immutable once created.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	FlaggedCrisis  bool      `json:"flagged_crisis"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation represents a coaching chat session owned by a user
type Conversation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preferences holds the user's coaching preferences
type Preferences struct {
	CommunicationStyle string   `json:"communication_style"`
	FocusAreas         []string `json:"focus_areas"`
}

// SystemPromptContext is the personalization slice of a user profile
// used to build the coach's system instruction
type SystemPromptContext struct {
	Goals       []string    `json:"goals"`
	Challenges  []string    `json:"challenges"`
	Preferences Preferences `json:"preferences"`
}

// User represents an account. Only the fields the pipeline and the
// admin surface need are modeled here.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStats tracks engagement per user. One row per user, created
// lazily on first activity.
type UserStats struct {
	UserID                   int64     `json:"user_id"`
	CurrentStreak            int       `json:"current_streak"`
	LongestStreak            int       `json:"longest_streak"`
	TotalChallengesCompleted int       `json:"total_challenges_completed"`
	TotalMessages            int       `json:"total_messages"`
	LastActive               time.Time `json:"last_active"`
}

// RequirementType defines which stat metric an achievement tests
type RequirementType string

const (
	RequirementStreak     RequirementType = "streak"
	RequirementChallenges RequirementType = "challenges"
	RequirementMessages   RequirementType = "messages"
)

// Achievement is a static catalog entry describing an unlockable milestone
type Achievement struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Icon             string          `json:"icon"`
	RequirementType  RequirementType `json:"requirement_type"`
	RequirementValue int             `json:"requirement_value"`
}

// UserAchievement records that a user earned an achievement.
// Created at most once per (user, achievement) pair.
type UserAchievement struct {
	UserID        int64     `json:"user_id"`
	AchievementID int64     `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
}

// ChallengeStatus defines the lifecycle state of a challenge
type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeFailed    ChallengeStatus = "failed"
)

// Challenge is a user-declared or chat-inferred personal goal
type Challenge struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Status           ChallengeStatus `json:"status"`
	DetectedFromChat bool            `json:"detected_from_chat"`
	CreatedAt        time.Time       `json:"created_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// UserOverview pairs an account with its engagement stats for the admin
// dashboard. Stats is nil for users with no recorded activity yet.
type UserOverview struct {
	User
	Stats *UserStats `json:"stats,omitempty"`
}

// PlatformStats holds the aggregate counters shown on the admin dashboard
type PlatformStats struct {
	TotalUsers       int `json:"total_users"`
	ActiveToday      int `json:"active_today"`
	UnreviewedAlerts int `json:"unreviewed_alerts"`
	TotalMessages    int `json:"total_messages"`
	TotalChallenges  int `json:"total_challenges"`
}

// CrisisAlert records a message flagged by crisis screening for review
type CrisisAlert struct {
	ID        int64     `json:"id"`
	MessageID int64     `json:"message_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	Reviewed  bool      `json:"reviewed"`
	CreatedAt time.Time `json:"created_at"`
}
