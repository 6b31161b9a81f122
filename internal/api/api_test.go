package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"life-coach-chat/internal/chat"
	"life-coach-chat/internal/coach"
	"life-coach-chat/internal/db"
	"life-coach-chat/internal/models"
	"life-coach-chat/internal/progress"
	"life-coach-chat/internal/safety"
)

// stubGenerator stands in for the language-model client in handler tests
type stubGenerator struct {
	reply       string
	generateErr error
	detection   coach.ChallengeDetection
}

func (s *stubGenerator) Generate(_ context.Context, _ string, _ []models.Message) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return s.reply, nil
}

func (s *stubGenerator) DetectChallenge(_ context.Context, _ string) (coach.ChallengeDetection, error) {
	return s.detection, nil
}

var userSeq int64

// setupServer wires a full router against a temp database and the given
// generator stub, and returns the test server plus the database for
// direct seeding and assertions.
func setupServer(t *testing.T, generator chat.Generator) (*httptest.Server, *db.DB) {
	t.Helper()

	database, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	tracker := progress.NewTracker(database)
	pipeline := chat.NewPipeline(database, generator, safety.NewDetector(), tracker, nil)
	router := NewRouter(database, pipeline, tracker, "")

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, database
}

func createTestUser(t *testing.T, database *db.DB, isAdmin bool) int64 {
	t.Helper()

	n := atomic.AddInt64(&userSeq, 1)
	user, err := database.CreateUser("Test User", fmt.Sprintf("api%d@example.com", n), isAdmin)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user.ID
}

// doRequest performs an HTTP request as the given user and decodes the
// JSON response into out when out is non-nil.
func doRequest(t *testing.T, server *httptest.Server, method, path string, userID int64, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if userID > 0 {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", userID))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := setupServer(t, &stubGenerator{})

	var body map[string]string
	resp := doRequest(t, server, http.MethodGet, "/health", 0, nil, &body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestAPIRequiresUserHeader(t *testing.T) {
	server, _ := setupServer(t, &stubGenerator{})

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/conversations"},
		{http.MethodGet, "/api/challenges"},
		{http.MethodGet, "/api/stats"},
		{http.MethodGet, "/api/achievements"},
	}
	for _, p := range paths {
		resp := doRequest(t, server, p.method, p.path, 0, nil, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without user header, got %d", p.method, p.path, resp.StatusCode)
		}
	}
}

func TestAPIRejectsMalformedUserHeader(t *testing.T) {
	server, _ := setupServer(t, &stubGenerator{})

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/conversations", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("X-User-ID", "not-a-number")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for malformed header, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	server, _ := setupServer(t, &stubGenerator{})

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/conversations", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for preflight, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS origin header")
	}
}
