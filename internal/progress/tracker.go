package progress

import (
	"fmt"
	"log"
	"time"

	"life-coach-chat/internal/db"
	"life-coach-chat/internal/models"
)

// maxActivityAttempts bounds the optimistic-update retry loop in
// RecordActivity. Conflicts only happen when two recordings for the
// same user race, so a small budget is plenty.
const maxActivityAttempts = 3

// Tracker maintains per-user engagement state: streaks, counters, and
// achievement awards. It is the only writer of user_stats rows.
type Tracker struct {
	db *db.DB

	// now is swappable for tests
	now func() time.Time
}

// NewTracker creates a progression tracker backed by the store
func NewTracker(database *db.DB) *Tracker {
	return &Tracker{
		db:  database,
		now: time.Now,
	}
}

// nextStreak applies the streak transition rule: same day keeps the
// streak, the next day extends it, a longer gap resets it to 1.
func nextStreak(current, daysSinceLastActive int) int {
	switch {
	case daysSinceLastActive <= 0:
		return current
	case daysSinceLastActive == 1:
		return current + 1
	default:
		return 1
	}
}

// RecordActivity registers one qualifying activity for the user: it
// lazily creates stats, applies the streak transition, bumps the message
// counter, and evaluates achievements inline. The stats write is a
// conditional update guarded on last_active, retried on conflict, so
// concurrent recordings for the same user never double-apply a stale
// streak. Returns the updated stats and any newly earned achievements.
func (t *Tracker) RecordActivity(userID int64) (*models.UserStats, []models.Achievement, error) {
	for attempt := 0; attempt < maxActivityAttempts; attempt++ {
		now := t.now()

		stats, err := t.db.GetOrCreateUserStats(userID, now)
		if err != nil {
			return nil, nil, fmt.Errorf("load stats: %w", err)
		}

		daysSince := int(now.Sub(stats.LastActive).Hours() / 24)
		newStreak := nextStreak(stats.CurrentStreak, daysSince)
		newLongest := stats.LongestStreak
		if newStreak > newLongest {
			newLongest = newStreak
		}

		updated, err := t.db.UpdateUserActivityGuarded(userID, newStreak, newLongest, now, stats.LastActive)
		if err != nil {
			return nil, nil, fmt.Errorf("update activity: %w", err)
		}
		if !updated {
			log.Printf("[Progress] RecordActivity conflict, retrying user_id=%d attempt=%d", userID, attempt+1)
			continue
		}

		current, err := t.db.GetUserStats(userID)
		if err != nil {
			return nil, nil, fmt.Errorf("reload stats: %w", err)
		}

		earned, err := t.EvaluateAchievements(userID, current)
		if err != nil {
			return nil, nil, err
		}

		log.Printf("[Progress] RecordActivity completed user_id=%d streak=%d total_messages=%d new_achievements=%d",
			userID, current.CurrentStreak, current.TotalMessages, len(earned))
		return current, earned, nil
	}

	return nil, nil, fmt.Errorf("record activity for user %d: too many concurrent updates", userID)
}

// RecordChallengeCompleted increments the completed-challenge counter
// and evaluates achievements against the fresh stats
func (t *Tracker) RecordChallengeCompleted(userID int64) ([]models.Achievement, error) {
	if _, err := t.db.GetOrCreateUserStats(userID, t.now()); err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	if err := t.db.IncrementChallengesCompleted(userID); err != nil {
		return nil, fmt.Errorf("increment challenges: %w", err)
	}

	stats, err := t.db.GetUserStats(userID)
	if err != nil {
		return nil, fmt.Errorf("reload stats: %w", err)
	}

	earned, err := t.EvaluateAchievements(userID, stats)
	if err != nil {
		return nil, err
	}

	log.Printf("[Progress] RecordChallengeCompleted user_id=%d total_completed=%d new_achievements=%d",
		userID, stats.TotalChallengesCompleted, len(earned))
	return earned, nil
}

// EvaluateAchievements tests every catalog entry the user has not
// earned yet against the given stats snapshot and awards the ones whose
// threshold is met. Awards are idempotent: already-earned ids are
// excluded up front and the insert itself ignores duplicates.
func (t *Tracker) EvaluateAchievements(userID int64, stats *models.UserStats) ([]models.Achievement, error) {
	catalog, err := t.db.ListAchievements()
	if err != nil {
		return nil, fmt.Errorf("load achievement catalog: %w", err)
	}

	existing, err := t.db.ListUserAchievements(userID)
	if err != nil {
		return nil, fmt.Errorf("load earned achievements: %w", err)
	}

	earnedIDs := make(map[int64]bool, len(existing))
	for _, ua := range existing {
		earnedIDs[ua.AchievementID] = true
	}

	var newlyEarned []models.Achievement
	for _, a := range catalog {
		if earnedIDs[a.ID] {
			continue
		}

		var metric int
		switch a.RequirementType {
		case models.RequirementStreak:
			metric = stats.CurrentStreak
		case models.RequirementChallenges:
			metric = stats.TotalChallengesCompleted
		case models.RequirementMessages:
			metric = stats.TotalMessages
		default:
			continue
		}

		if metric < a.RequirementValue {
			continue
		}

		inserted, err := t.db.InsertUserAchievement(userID, a.ID)
		if err != nil {
			return nil, fmt.Errorf("award achievement %q: %w", a.Name, err)
		}
		if inserted {
			log.Printf("[Progress] Achievement earned user_id=%d achievement=%q", userID, a.Name)
			newlyEarned = append(newlyEarned, a)
		}
	}

	return newlyEarned, nil
}

// GetOrCreateStats exposes lazy stats creation for the read-only stats
// endpoint
func (t *Tracker) GetOrCreateStats(userID int64) (*models.UserStats, error) {
	return t.db.GetOrCreateUserStats(userID, t.now())
}
