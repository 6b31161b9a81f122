package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"life-coach-chat/internal/db"
	"life-coach-chat/internal/models"
	"life-coach-chat/internal/progress"
)

// ChallengeHandler handles challenge HTTP requests
type ChallengeHandler struct {
	db      *db.DB
	tracker *progress.Tracker
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(database *db.DB, tracker *progress.Tracker) *ChallengeHandler {
	return &ChallengeHandler{
		db:      database,
		tracker: tracker,
	}
}

// List handles GET /api/challenges with an optional ?status= filter
func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	status := models.ChallengeStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.ChallengeActive, models.ChallengeCompleted, models.ChallengeFailed:
	default:
		http.Error(w, "Invalid status filter", http.StatusBadRequest)
		return
	}

	challenges, err := h.db.ListChallenges(userID, status)
	if err != nil {
		log.Printf("[API] List challenges failed: DB error err=%v", err)
		http.Error(w, "Failed to get challenges", http.StatusInternalServerError)
		return
	}

	if challenges == nil {
		challenges = []models.Challenge{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(challenges)
}

// CreateChallengeRequest represents the request body for creating a challenge
type CreateChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create handles POST /api/challenges
func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "Challenge title is required", http.StatusBadRequest)
		return
	}

	challenge, err := h.db.CreateChallenge(userID, req.Title, req.Description, false)
	if err != nil {
		log.Printf("[API] Create challenge failed: DB error err=%v", err)
		http.Error(w, "Failed to create challenge", http.StatusInternalServerError)
		return
	}
	log.Printf("[API] Challenge created challenge_id=%d user_id=%d title=%q", challenge.ID, userID, challenge.Title)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(challenge)
}

// UpdateChallengeRequest represents the request body for updating a challenge
type UpdateChallengeRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Update handles PUT /api/challenges/{id}
func (h *ChallengeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid challenge ID", http.StatusBadRequest)
		return
	}

	var req UpdateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	existing, err := h.db.GetUserChallenge(id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Challenge not found", http.StatusNotFound)
			return
		}
		log.Printf("[API] Update challenge failed: DB error challenge_id=%d err=%v", id, err)
		http.Error(w, "Failed to get challenge", http.StatusInternalServerError)
		return
	}

	if req.Title != nil && *req.Title != "" {
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}

	completedNow := false
	if req.Status != nil {
		status := models.ChallengeStatus(*req.Status)
		switch status {
		case models.ChallengeActive, models.ChallengeCompleted, models.ChallengeFailed:
		default:
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}

		// completed_at is set exactly once, on the transition into completed
		if status == models.ChallengeCompleted && existing.Status != models.ChallengeCompleted {
			now := time.Now()
			existing.CompletedAt = &now
			completedNow = true
		}
		existing.Status = status
	}

	if err := h.db.UpdateChallenge(existing); err != nil {
		log.Printf("[API] Update challenge failed: DB error challenge_id=%d err=%v", id, err)
		http.Error(w, "Failed to update challenge", http.StatusInternalServerError)
		return
	}

	if completedNow {
		if _, err := h.tracker.RecordChallengeCompleted(userID); err != nil {
			log.Printf("[API] Warning: failed to record challenge completion user_id=%d err=%v", userID, err)
		}
	}

	log.Printf("[API] Challenge updated challenge_id=%d user_id=%d status=%s", id, userID, existing.Status)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(existing)
}

// Delete handles DELETE /api/challenges/{id}
func (h *ChallengeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid challenge ID", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteChallenge(id, userID); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Challenge not found", http.StatusNotFound)
			return
		}
		log.Printf("[API] Delete challenge failed: DB error challenge_id=%d err=%v", id, err)
		http.Error(w, "Failed to delete challenge", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
