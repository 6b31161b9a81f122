package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"life-coach-chat/internal/chat"
	"life-coach-chat/internal/db"
	"life-coach-chat/internal/models"
)

// ConversationHandler handles conversation and message HTTP requests
type ConversationHandler struct {
	db       *db.DB
	pipeline *chat.Pipeline
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(database *db.DB, pipeline *chat.Pipeline) *ConversationHandler {
	return &ConversationHandler{
		db:       database,
		pipeline: pipeline,
	}
}

// CreateConversationRequest represents the request body for creating a conversation
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// ConversationResponse represents a conversation in API responses
type ConversationResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toConversationResponse(conv models.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt.Format(time.RFC3339),
		UpdatedAt: conv.UpdatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /api/conversations
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		log.Printf("[API] Create conversation failed: invalid request body err=%v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	title := req.Title
	if title == "" {
		title = "New Conversation"
	}

	conv, err := h.db.CreateConversation(userID, title)
	if err != nil {
		log.Printf("[API] Create conversation failed: DB error err=%v", err)
		http.Error(w, "Failed to create conversation", http.StatusInternalServerError)
		return
	}
	log.Printf("[API] Conversation created conversation_id=%d user_id=%d title=%q", conv.ID, userID, conv.Title)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toConversationResponse(*conv))
}

// List handles GET /api/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	conversations, err := h.db.ListConversations(userID)
	if err != nil {
		log.Printf("[API] List conversations failed: DB error err=%v", err)
		http.Error(w, "Failed to get conversations", http.StatusInternalServerError)
		return
	}

	response := make([]ConversationResponse, len(conversations))
	for i, conv := range conversations {
		response[i] = toConversationResponse(conv)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Delete handles DELETE /api/conversations/{id}
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteConversation(id, userID); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		log.Printf("[API] Delete conversation failed: DB error conversation_id=%d err=%v", id, err)
		http.Error(w, "Failed to delete conversation", http.StatusInternalServerError)
		return
	}

	log.Printf("[API] Conversation deleted conversation_id=%d user_id=%d", id, userID)
	w.WriteHeader(http.StatusNoContent)
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID             int64  `json:"id"`
	ConversationID int64  `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	FlaggedCrisis  bool   `json:"flagged_crisis"`
	CreatedAt      string `json:"created_at"`
}

func toMessageResponse(msg *models.Message) *MessageResponse {
	if msg == nil {
		return nil
	}
	return &MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		FlaggedCrisis:  msg.FlaggedCrisis,
		CreatedAt:      msg.CreatedAt.Format(time.RFC3339),
	}
}

// GetMessages handles GET /api/conversations/{id}/messages
func (h *ConversationHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	// Ownership check before reading messages
	if _, err := h.db.GetUserConversation(id, userID); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		log.Printf("[API] GetMessages failed: DB error conversation_id=%d err=%v", id, err)
		http.Error(w, "Failed to get conversation", http.StatusInternalServerError)
		return
	}

	messages, err := h.db.GetMessages(id)
	if err != nil {
		log.Printf("[API] GetMessages failed: DB error conversation_id=%d err=%v", id, err)
		http.Error(w, "Failed to get messages", http.StatusInternalServerError)
		return
	}

	response := make([]MessageResponse, len(messages))
	for i := range messages {
		response[i] = *toMessageResponse(&messages[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse is the payload returned for one completed chat turn
type SendMessageResponse struct {
	UserMessage      *MessageResponse     `json:"user_message"`
	AssistantMessage *MessageResponse     `json:"assistant_message"`
	CrisisDetected   bool                 `json:"crisis_detected"`
	SafetyResources  any                  `json:"safety_resources,omitempty"`
	NewAchievements  []models.Achievement `json:"new_achievements,omitempty"`
}

// SendMessage handles POST /api/conversations/{id}/messages
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.SendMessage(r.Context(), userID, id, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			http.Error(w, "Message content is required", http.StatusBadRequest)
		case errors.Is(err, chat.ErrConversationNotFound):
			http.Error(w, "Conversation not found", http.StatusNotFound)
		case errors.Is(err, chat.ErrGenerationFailed):
			http.Error(w, "Failed to generate response", http.StatusBadGateway)
		default:
			log.Printf("[API] SendMessage failed conversation_id=%d err=%v", id, err)
			http.Error(w, "Failed to send message", http.StatusInternalServerError)
		}
		return
	}

	response := SendMessageResponse{
		UserMessage:      toMessageResponse(result.UserMessage),
		AssistantMessage: toMessageResponse(result.AssistantMessage),
		CrisisDetected:   result.CrisisDetected,
		NewAchievements:  result.NewAchievements,
	}
	if result.SafetyResources != nil {
		response.SafetyResources = result.SafetyResources
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}
