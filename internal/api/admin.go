package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"life-coach-chat/internal/db"
	"life-coach-chat/internal/models"
)

// AdminHandler handles administrative HTTP requests
type AdminHandler struct {
	db *db.DB
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(database *db.DB) *AdminHandler {
	return &AdminHandler{db: database}
}

// requireAdmin verifies the caller's user record has the admin flag.
// Writes a 403 and returns false otherwise.
func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID, ok := callerID(w, r)
	if !ok {
		return false
	}

	user, err := h.db.GetUser(userID)
	if err != nil || !user.IsAdmin {
		http.Error(w, "Admin access required", http.StatusForbidden)
		return false
	}

	return true
}

// ListUsers handles GET /api/admin/users: the user overview with
// per-user engagement stats
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	users, err := h.db.ListUserOverviews()
	if err != nil {
		log.Printf("[API] ListUsers failed: DB error err=%v", err)
		http.Error(w, "Failed to get users", http.StatusInternalServerError)
		return
	}

	if users == nil {
		users = []models.UserOverview{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// GetStats handles GET /api/admin/stats: platform-wide counters
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	activeSince := time.Now().Add(-24 * time.Hour)
	stats, err := h.db.GetPlatformStats(activeSince)
	if err != nil {
		log.Printf("[API] GetStats failed: DB error err=%v", err)
		http.Error(w, "Failed to get platform stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// ConversationReview is a conversation with its full message history,
// as shown in the admin review view
type ConversationReview struct {
	models.Conversation
	Messages []models.Message `json:"messages"`
}

// GetUserConversations handles GET /api/admin/users/{id}/conversations:
// a user's conversations with their messages, for crisis review
func (h *AdminHandler) GetUserConversations(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if _, err := h.db.GetUser(userID); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Printf("[API] GetUserConversations failed: DB error user_id=%d err=%v", userID, err)
		http.Error(w, "Failed to get user", http.StatusInternalServerError)
		return
	}

	conversations, err := h.db.ListConversations(userID)
	if err != nil {
		log.Printf("[API] GetUserConversations failed: DB error user_id=%d err=%v", userID, err)
		http.Error(w, "Failed to get conversations", http.StatusInternalServerError)
		return
	}

	response := make([]ConversationReview, len(conversations))
	for i, conv := range conversations {
		messages, err := h.db.GetMessages(conv.ID)
		if err != nil {
			log.Printf("[API] GetUserConversations failed: DB error conversation_id=%d err=%v", conv.ID, err)
			http.Error(w, "Failed to get messages", http.StatusInternalServerError)
			return
		}
		if messages == nil {
			messages = []models.Message{}
		}
		response[i] = ConversationReview{Conversation: conv, Messages: messages}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ListAlerts handles GET /api/admin/alerts with an optional ?reviewed= filter
func (h *AdminHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	reviewed := r.URL.Query().Get("reviewed") == "true"

	alerts, err := h.db.ListCrisisAlerts(reviewed)
	if err != nil {
		log.Printf("[API] ListAlerts failed: DB error err=%v", err)
		http.Error(w, "Failed to get crisis alerts", http.StatusInternalServerError)
		return
	}

	if alerts == nil {
		alerts = []models.CrisisAlert{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}

// ReviewAlert handles PUT /api/admin/alerts/{id}/review
func (h *AdminHandler) ReviewAlert(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	if err := h.db.MarkAlertReviewed(id); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		log.Printf("[API] ReviewAlert failed: DB error alert_id=%d err=%v", id, err)
		http.Error(w, "Failed to review alert", http.StatusInternalServerError)
		return
	}

	log.Printf("[API] Crisis alert reviewed alert_id=%d", id)
	w.WriteHeader(http.StatusNoContent)
}
