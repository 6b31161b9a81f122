package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"life-coach-chat/internal/coach"
	"life-coach-chat/internal/db"
	"life-coach-chat/internal/models"
	"life-coach-chat/internal/progress"
	"life-coach-chat/internal/safety"
)

var (
	// ErrEmptyMessage rejects blank content before any side effect
	ErrEmptyMessage = errors.New("message content is required")
	// ErrConversationNotFound is returned when the conversation does not
	// exist or is not owned by the caller
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrGenerationFailed wraps provider errors; the user message stays
	// persisted when this is returned
	ErrGenerationFailed = errors.New("failed to generate coach response")
)

// Generator is the language-model capability the pipeline depends on
type Generator interface {
	Generate(ctx context.Context, instruction string, history []models.Message) (string, error)
	DetectChallenge(ctx context.Context, text string) (coach.ChallengeDetection, error)
}

// SendResult is the outcome of one pipeline turn
type SendResult struct {
	UserMessage      *models.Message         `json:"user_message"`
	AssistantMessage *models.Message         `json:"assistant_message"`
	CrisisDetected   bool                    `json:"crisis_detected"`
	SafetyResources  *safety.SafetyResources `json:"safety_resources,omitempty"`
	NewAchievements  []models.Achievement    `json:"new_achievements,omitempty"`
}

// Pipeline sequences the handling of one inbound chat message:
// screening, persistence, generation, and progression bookkeeping.
type Pipeline struct {
	db        *db.DB
	generator Generator
	detector  *safety.Detector
	tracker   *progress.Tracker
	extractor *ExtractorWorker
}

// NewPipeline creates a message pipeline. The extractor may be nil, in
// which case challenge detection is skipped entirely.
func NewPipeline(database *db.DB, generator Generator, detector *safety.Detector, tracker *progress.Tracker, extractor *ExtractorWorker) *Pipeline {
	return &Pipeline{
		db:        database,
		generator: generator,
		detector:  detector,
		tracker:   tracker,
		extractor: extractor,
	}
}

// SendMessage processes one user message through the full pipeline.
// Steps run in a fixed order: validation, ownership check, crisis
// screening, user-message persistence, alert logging, context building,
// generation, assistant-message persistence, and progression tracking.
// Challenge extraction is handed to the background worker and never
// awaited. On generation failure the user message remains persisted and
// ErrGenerationFailed is returned.
func (p *Pipeline) SendMessage(ctx context.Context, userID, conversationID int64, content string) (*SendResult, error) {
	turnID := uuid.NewString()
	log.Printf("[Pipeline] Turn started turn_id=%s user_id=%d conversation_id=%d", turnID, userID, conversationID)

	if strings.TrimSpace(content) == "" {
		log.Printf("[Pipeline] Turn rejected: empty content turn_id=%s", turnID)
		return nil, ErrEmptyMessage
	}

	// Ownership check fails closed before any write
	if _, err := p.db.GetUserConversation(conversationID, userID); err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[Pipeline] Turn rejected: conversation not found turn_id=%s conversation_id=%d", turnID, conversationID)
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	// Screening runs on the untruncated text, before persistence, because
	// the flag gates both storage and prompt augmentation
	crisisDetected := p.detector.Detect(content)
	if crisisDetected {
		log.Printf("[Pipeline] Crisis language detected turn_id=%s user_id=%d", turnID, userID)
	}

	userMessage, err := p.db.CreateMessage(conversationID, models.RoleUser, content, crisisDetected)
	if err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}
	log.Printf("[Pipeline] User message persisted turn_id=%s message_id=%d flagged=%v", turnID, userMessage.ID, crisisDetected)

	if crisisDetected {
		if _, err := p.db.CreateCrisisAlert(userMessage.ID, userID, safety.TruncateForAlert(content)); err != nil {
			return nil, fmt.Errorf("create crisis alert: %w", err)
		}
		log.Printf("[Pipeline] Crisis alert created turn_id=%s message_id=%d", turnID, userMessage.ID)
	}

	profileCtx, err := p.db.GetUserContext(userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load user context: %w", err)
	}
	instruction := coach.BuildSystemInstruction(profileCtx, crisisDetected)

	// History includes the just-persisted user message
	history, err := p.db.GetMessages(conversationID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	reply, err := p.generator.Generate(ctx, instruction, history)
	if err != nil {
		log.Printf("[Pipeline] Generation failed turn_id=%s err=%v", turnID, err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	// The coach's own text is never re-screened
	assistantMessage, err := p.db.CreateMessage(conversationID, models.RoleAssistant, reply, false)
	if err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}
	log.Printf("[Pipeline] Assistant message persisted turn_id=%s message_id=%d", turnID, assistantMessage.ID)

	if err := p.db.TouchConversation(conversationID, time.Now()); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	_, earned, err := p.tracker.RecordActivity(userID)
	if err != nil {
		return nil, fmt.Errorf("record activity: %w", err)
	}

	if p.extractor != nil {
		p.extractor.Enqueue(userID, content)
	}

	result := &SendResult{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		CrisisDetected:   crisisDetected,
		NewAchievements:  earned,
	}
	if crisisDetected {
		resources := safety.Resources()
		result.SafetyResources = &resources
	}

	log.Printf("[Pipeline] Turn completed turn_id=%s crisis=%v new_achievements=%d", turnID, crisisDetected, len(earned))
	return result, nil
}
