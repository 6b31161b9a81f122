package db

import (
	"database/sql"
	"testing"
	"time"
)

func TestCreateConversation(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createTestUser(t, database)

	conv, err := database.CreateConversation(userID, "Morning check-in")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}

	if conv.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if conv.UserID != userID {
		t.Errorf("expected user ID %d, got %d", userID, conv.UserID)
	}
	if conv.Title != "Morning check-in" {
		t.Errorf("expected title 'Morning check-in', got '%s'", conv.Title)
	}
}

func TestGetUserConversation(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createTestUser(t, database)

	created, err := database.CreateConversation(userID, "Goals")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}

	conv, err := database.GetUserConversation(created.ID, userID)
	if err != nil {
		t.Fatalf("failed to get conversation: %v", err)
	}

	if conv.Title != "Goals" {
		t.Errorf("expected title 'Goals', got '%s'", conv.Title)
	}
}

func TestGetUserConversation_WrongOwner(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	owner := createTestUser(t, database)
	other := createTestUser(t, database)

	created, err := database.CreateConversation(owner, "Private")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}

	_, err = database.GetUserConversation(created.ID, other)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows for non-owner, got %v", err)
	}
}

func TestGetUserConversation_NotFound(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createTestUser(t, database)

	_, err := database.GetUserConversation(99999, userID)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListConversations_OrderedByUpdatedAt(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createTestUser(t, database)

	first, err := database.CreateConversation(userID, "First")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	_, err = database.CreateConversation(userID, "Second")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}

	// Touch the first conversation so it sorts to the top
	if err := database.TouchConversation(first.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("failed to touch conversation: %v", err)
	}

	conversations, err := database.ListConversations(userID)
	if err != nil {
		t.Fatalf("failed to list conversations: %v", err)
	}

	if len(conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(conversations))
	}
	if conversations[0].ID != first.ID {
		t.Errorf("expected touched conversation first, got id %d", conversations[0].ID)
	}
}

func TestListConversations_ScopedToUser(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	userA := createTestUser(t, database)
	userB := createTestUser(t, database)

	if _, err := database.CreateConversation(userA, "Mine"); err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	if _, err := database.CreateConversation(userB, "Theirs"); err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}

	conversations, err := database.ListConversations(userA)
	if err != nil {
		t.Fatalf("failed to list conversations: %v", err)
	}

	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
	if conversations[0].Title != "Mine" {
		t.Errorf("expected 'Mine', got '%s'", conversations[0].Title)
	}
}

func TestDeleteConversation_RemovesMessages(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	userID := createTestUser(t, database)

	conv, err := database.CreateConversation(userID, "Doomed")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	if _, err := database.CreateMessage(conv.ID, "user", "hello", false); err != nil {
		t.Fatalf("failed to create message: %v", err)
	}

	if err := database.DeleteConversation(conv.ID, userID); err != nil {
		t.Fatalf("failed to delete conversation: %v", err)
	}

	messages, err := database.GetMessages(conv.ID)
	if err != nil {
		t.Fatalf("failed to get messages: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected 0 messages after delete, got %d", len(messages))
	}
}

func TestDeleteConversation_WrongOwner(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	owner := createTestUser(t, database)
	other := createTestUser(t, database)

	conv, err := database.CreateConversation(owner, "Protected")
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}

	if err := database.DeleteConversation(conv.ID, other); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows for non-owner delete, got %v", err)
	}
}
