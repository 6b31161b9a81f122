package api

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"life-coach-chat/internal/chat"
	"life-coach-chat/internal/db"
	"life-coach-chat/internal/progress"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Router holds the HTTP multiplexer and dependencies
type Router struct {
	mux                 *http.ServeMux
	conversationHandler *ConversationHandler
	challengeHandler    *ChallengeHandler
	statsHandler        *StatsHandler
	adminHandler        *AdminHandler
	staticDir           string
}

// NewRouter creates a new router with all routes configured
func NewRouter(database *db.DB, pipeline *chat.Pipeline, tracker *progress.Tracker, staticDir string) *Router {
	r := &Router{
		mux:                 http.NewServeMux(),
		conversationHandler: NewConversationHandler(database, pipeline),
		challengeHandler:    NewChallengeHandler(database, tracker),
		statsHandler:        NewStatsHandler(database, tracker),
		adminHandler:        NewAdminHandler(database),
		staticDir:           staticDir,
	}
	r.setupRoutes()
	return r
}

// setupRoutes configures all HTTP routes
func (r *Router) setupRoutes() {
	// Health check
	r.mux.HandleFunc("GET /health", HealthHandler)

	// Conversation routes
	r.mux.HandleFunc("GET /api/conversations", r.conversationHandler.List)
	r.mux.HandleFunc("POST /api/conversations", r.conversationHandler.Create)
	r.mux.HandleFunc("DELETE /api/conversations/{id}", r.conversationHandler.Delete)

	// Message routes
	r.mux.HandleFunc("GET /api/conversations/{id}/messages", r.conversationHandler.GetMessages)
	r.mux.HandleFunc("POST /api/conversations/{id}/messages", r.conversationHandler.SendMessage)

	// Challenge routes
	r.mux.HandleFunc("GET /api/challenges", r.challengeHandler.List)
	r.mux.HandleFunc("POST /api/challenges", r.challengeHandler.Create)
	r.mux.HandleFunc("PUT /api/challenges/{id}", r.challengeHandler.Update)
	r.mux.HandleFunc("DELETE /api/challenges/{id}", r.challengeHandler.Delete)

	// Stats and achievement routes
	r.mux.HandleFunc("GET /api/stats", r.statsHandler.GetStats)
	r.mux.HandleFunc("GET /api/achievements", r.statsHandler.GetAchievements)

	// Admin routes
	r.mux.HandleFunc("GET /api/admin/users", r.adminHandler.ListUsers)
	r.mux.HandleFunc("GET /api/admin/users/{id}/conversations", r.adminHandler.GetUserConversations)
	r.mux.HandleFunc("GET /api/admin/stats", r.adminHandler.GetStats)
	r.mux.HandleFunc("GET /api/admin/alerts", r.adminHandler.ListAlerts)
	r.mux.HandleFunc("PUT /api/admin/alerts/{id}/review", r.adminHandler.ReviewAlert)

	// Static file serving (for frontend)
	if r.staticDir != "" {
		r.mux.HandleFunc("GET /", r.serveStatic)
	}
}

// serveStatic serves static files from the static directory
func (r *Router) serveStatic(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	filePath := filepath.Join(r.staticDir, path)

	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		// Serve index.html for SPA routing
		filePath = filepath.Join(r.staticDir, "index.html")
	}

	http.ServeFile(w, req, filePath)
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()

	// Add CORS headers for development
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+userIDHeader)

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	shouldLog := strings.HasPrefix(req.URL.Path, "/api/")

	if shouldLog {
		log.Printf("[HTTP] Request started method=%s path=%s", req.Method, req.URL.Path)
	}

	// Wrap response writer to capture status code
	wrapped := newResponseWriter(w)
	r.mux.ServeHTTP(wrapped, req)

	if shouldLog {
		log.Printf("[HTTP] Request completed method=%s path=%s status=%d duration=%v",
			req.Method, req.URL.Path, wrapped.statusCode, time.Since(start))
	}
}
