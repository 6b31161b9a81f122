package db

import (
	"testing"

	"life-coach-chat/internal/models"
)

func TestListAchievements_OrderedByRequirement(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	achievements, err := database.ListAchievements()
	if err != nil {
		t.Fatalf("failed to list achievements: %v", err)
	}
	if len(achievements) == 0 {
		t.Fatal("expected seeded achievement catalog")
	}

	for i := 1; i < len(achievements); i++ {
		if achievements[i].RequirementValue < achievements[i-1].RequirementValue {
			t.Errorf("catalog not ordered by requirement value at index %d", i)
		}
	}
}

func TestInsertUserAchievement_Idempotent(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createTestUser(t, database)

	achievements, err := database.ListAchievements()
	if err != nil {
		t.Fatalf("failed to list achievements: %v", err)
	}
	target := achievements[0].ID

	awarded, err := database.InsertUserAchievement(userID, target)
	if err != nil {
		t.Fatalf("failed to award achievement: %v", err)
	}
	if !awarded {
		t.Error("expected first award to report a new row")
	}

	awarded, err = database.InsertUserAchievement(userID, target)
	if err != nil {
		t.Fatalf("failed to re-award achievement: %v", err)
	}
	if awarded {
		t.Error("expected repeat award to be ignored")
	}

	earned, err := database.ListUserAchievements(userID)
	if err != nil {
		t.Fatalf("failed to list user achievements: %v", err)
	}
	if len(earned) != 1 {
		t.Errorf("expected 1 earned achievement, got %d", len(earned))
	}
}

func TestListUserAchievements_Empty(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createTestUser(t, database)

	earned, err := database.ListUserAchievements(userID)
	if err != nil {
		t.Fatalf("failed to list user achievements: %v", err)
	}
	if len(earned) != 0 {
		t.Errorf("expected no earned achievements, got %d", len(earned))
	}
}

func TestAchievementCatalog_RequirementTypes(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	achievements, err := database.ListAchievements()
	if err != nil {
		t.Fatalf("failed to list achievements: %v", err)
	}

	valid := map[models.RequirementType]bool{
		models.RequirementStreak:     true,
		models.RequirementChallenges: true,
		models.RequirementMessages:   true,
	}
	for _, a := range achievements {
		if !valid[a.RequirementType] {
			t.Errorf("achievement %q has unknown requirement type %q", a.Name, a.RequirementType)
		}
	}
}
