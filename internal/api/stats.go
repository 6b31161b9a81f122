package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"life-coach-chat/internal/db"
	"life-coach-chat/internal/models"
	"life-coach-chat/internal/progress"
)

// StatsHandler handles stats and achievement HTTP requests
type StatsHandler struct {
	db      *db.DB
	tracker *progress.Tracker
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(database *db.DB, tracker *progress.Tracker) *StatsHandler {
	return &StatsHandler{
		db:      database,
		tracker: tracker,
	}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	stats, err := h.tracker.GetOrCreateStats(userID)
	if err != nil {
		log.Printf("[API] GetStats failed: DB error user_id=%d err=%v", userID, err)
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// AchievementResponse annotates a catalog entry with the caller's earned state
type AchievementResponse struct {
	models.Achievement
	Earned   bool   `json:"earned"`
	EarnedAt string `json:"earned_at,omitempty"`
}

// GetAchievements handles GET /api/achievements
func (h *StatsHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	catalog, err := h.db.ListAchievements()
	if err != nil {
		log.Printf("[API] GetAchievements failed: DB error err=%v", err)
		http.Error(w, "Failed to get achievements", http.StatusInternalServerError)
		return
	}

	earned, err := h.db.ListUserAchievements(userID)
	if err != nil {
		log.Printf("[API] GetAchievements failed: DB error user_id=%d err=%v", userID, err)
		http.Error(w, "Failed to get achievements", http.StatusInternalServerError)
		return
	}

	earnedAt := make(map[int64]time.Time, len(earned))
	for _, ua := range earned {
		earnedAt[ua.AchievementID] = ua.EarnedAt
	}

	response := make([]AchievementResponse, len(catalog))
	for i, a := range catalog {
		response[i] = AchievementResponse{Achievement: a}
		if t, ok := earnedAt[a.ID]; ok {
			response[i].Earned = true
			response[i].EarnedAt = t.Format(time.RFC3339)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
