package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"life-coach-chat/internal/db"
	"life-coach-chat/internal/models"
)

func seedAlert(t *testing.T, database *db.DB, userID int64) *models.CrisisAlert {
	t.Helper()

	conv, err := database.CreateConversation(userID, "Chat")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	msg, err := database.CreateMessage(conv.ID, models.RoleUser, "flagged content", true)
	if err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	alert, err := database.CreateCrisisAlert(msg.ID, userID, "flagged content")
	if err != nil {
		t.Fatalf("failed to create alert: %v", err)
	}
	return alert
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	server, database := setupServer(t, &stubGenerator{})
	regular := createTestUser(t, database, false)

	paths := []string{
		"/api/admin/alerts",
		"/api/admin/users",
		"/api/admin/stats",
		fmt.Sprintf("/api/admin/users/%d/conversations", regular),
	}
	for _, path := range paths {
		resp := doRequest(t, server, http.MethodGet, path, regular, nil, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("GET %s: expected status 403 for non-admin, got %d", path, resp.StatusCode)
		}
	}
}

func TestAdminListUsers(t *testing.T) {
	server, database := setupServer(t, &stubGenerator{})
	admin := createTestUser(t, database, true)
	user := createTestUser(t, database, false)

	if _, err := database.GetOrCreateUserStats(user, time.Now()); err != nil {
		t.Fatalf("failed to create stats: %v", err)
	}

	var users []models.UserOverview
	resp := doRequest(t, server, http.MethodGet, "/api/admin/users", admin, nil, &users)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	for _, u := range users {
		switch u.ID {
		case user:
			if u.Stats == nil {
				t.Error("expected stats for the active user")
			}
		case admin:
			if u.Stats != nil {
				t.Error("expected nil stats for the admin with no activity")
			}
		}
	}
}

func TestAdminPlatformStats(t *testing.T) {
	server, database := setupServer(t, &stubGenerator{})
	admin := createTestUser(t, database, true)
	user := createTestUser(t, database, false)

	seedAlert(t, database, user)
	if _, err := database.GetOrCreateUserStats(user, time.Now()); err != nil {
		t.Fatalf("failed to create stats: %v", err)
	}

	var stats models.PlatformStats
	resp := doRequest(t, server, http.MethodGet, "/api/admin/stats", admin, nil, &stats)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if stats.TotalUsers != 2 {
		t.Errorf("expected 2 users, got %d", stats.TotalUsers)
	}
	if stats.ActiveToday != 1 {
		t.Errorf("expected 1 active user, got %d", stats.ActiveToday)
	}
	if stats.UnreviewedAlerts != 1 {
		t.Errorf("expected 1 unreviewed alert, got %d", stats.UnreviewedAlerts)
	}
	if stats.TotalMessages != 1 {
		t.Errorf("expected 1 message, got %d", stats.TotalMessages)
	}
}

func TestAdminUserConversations(t *testing.T) {
	server, database := setupServer(t, &stubGenerator{})
	admin := createTestUser(t, database, true)
	user := createTestUser(t, database, false)

	conv, err := database.CreateConversation(user, "Reviewed chat")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	if _, err := database.CreateMessage(conv.ID, models.RoleUser, "flagged content", true); err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	if _, err := database.CreateMessage(conv.ID, models.RoleAssistant, "reply", false); err != nil {
		t.Fatalf("failed to create message: %v", err)
	}

	var conversations []ConversationReview
	path := fmt.Sprintf("/api/admin/users/%d/conversations", user)
	resp := doRequest(t, server, http.MethodGet, path, admin, nil, &conversations)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
	if conversations[0].Title != "Reviewed chat" {
		t.Errorf("expected title 'Reviewed chat', got %q", conversations[0].Title)
	}
	if len(conversations[0].Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conversations[0].Messages))
	}
	if !conversations[0].Messages[0].FlaggedCrisis {
		t.Error("expected the flagged message visible in review")
	}
}

func TestAdminUserConversations_UnknownUser(t *testing.T) {
	server, database := setupServer(t, &stubGenerator{})
	admin := createTestUser(t, database, true)

	resp := doRequest(t, server, http.MethodGet, "/api/admin/users/99999/conversations", admin, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", resp.StatusCode)
	}
}

func TestListAlerts_AdminSeesPending(t *testing.T) {
	server, database := setupServer(t, &stubGenerator{})
	admin := createTestUser(t, database, true)
	user := createTestUser(t, database, false)

	alert := seedAlert(t, database, user)

	var alerts []models.CrisisAlert
	resp := doRequest(t, server, http.MethodGet, "/api/admin/alerts", admin, nil, &alerts)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if len(alerts) != 1 || alerts[0].ID != alert.ID {
		t.Fatalf("expected the pending alert, got %d alerts", len(alerts))
	}
	if alerts[0].Reviewed {
		t.Error("expected alert unreviewed")
	}
}

func TestReviewAlert(t *testing.T) {
	server, database := setupServer(t, &stubGenerator{})
	admin := createTestUser(t, database, true)
	user := createTestUser(t, database, false)

	alert := seedAlert(t, database, user)

	path := fmt.Sprintf("/api/admin/alerts/%d/review", alert.ID)
	resp := doRequest(t, server, http.MethodPut, path, admin, nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.StatusCode)
	}

	// The alert moved to the reviewed list
	var pending []models.CrisisAlert
	doRequest(t, server, http.MethodGet, "/api/admin/alerts", admin, nil, &pending)
	if len(pending) != 0 {
		t.Errorf("expected no pending alerts, got %d", len(pending))
	}

	var reviewed []models.CrisisAlert
	doRequest(t, server, http.MethodGet, "/api/admin/alerts?reviewed=true", admin, nil, &reviewed)
	if len(reviewed) != 1 || !reviewed[0].Reviewed {
		t.Errorf("expected 1 reviewed alert, got %d", len(reviewed))
	}
}

func TestReviewAlert_NotFound(t *testing.T) {
	server, database := setupServer(t, &stubGenerator{})
	admin := createTestUser(t, database, true)

	resp := doRequest(t, server, http.MethodPut, "/api/admin/alerts/99999/review", admin, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", resp.StatusCode)
	}
}

func TestReviewAlert_RequiresAdmin(t *testing.T) {
	server, database := setupServer(t, &stubGenerator{})
	regular := createTestUser(t, database, false)
	alert := seedAlert(t, database, regular)

	path := fmt.Sprintf("/api/admin/alerts/%d/review", alert.ID)
	resp := doRequest(t, server, http.MethodPut, path, regular, nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403 for non-admin, got %d", resp.StatusCode)
	}
}
