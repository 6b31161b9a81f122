package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// extractionPrompt instructs the model to classify whether the user set
// a goal or challenge and to answer with a strict JSON payload.
const extractionPrompt = `You analyze messages to detect if a user is setting a goal or challenge for themselves.
If detected, extract the goal/challenge title and description.
Respond ONLY in this JSON format:
{"detected": true/false, "title": "short title", "description": "brief description"}

Examples of goals/challenges:
- "I want to exercise more" -> detected
- "I'm going to read 20 books this year" -> detected
- "My goal is to wake up earlier" -> detected
- "I had a nice day" -> not detected
- "Thanks for the advice" -> not detected`

// ChallengeDetection is the structured result of a challenge-extraction call
type ChallengeDetection struct {
	Detected    bool   `json:"detected"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// DetectChallenge asks the model whether the user stated a new personal
// goal or challenge. A malformed payload degrades to not-detected;
// provider errors are returned for logging but callers treat either
// outcome as best-effort.
func (c *Client) DetectChallenge(ctx context.Context, text string) (ChallengeDetection, error) {
	log.Printf("[Coach] DetectChallenge started model=%s text_length=%d", c.extractionModel, len(text))

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.extractionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens: extractionMaxTokens,
	})
	if err != nil {
		return ChallengeDetection{}, fmt.Errorf("challenge detection: %w", err)
	}

	if len(resp.Choices) == 0 {
		log.Printf("[Coach] DetectChallenge completed: no choices, treating as not detected")
		return ChallengeDetection{}, nil
	}

	var detection ChallengeDetection
	payload := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(payload), &detection); err != nil {
		log.Printf("[Coach] DetectChallenge completed: unparseable payload, treating as not detected err=%v", err)
		return ChallengeDetection{}, nil
	}

	log.Printf("[Coach] DetectChallenge completed detected=%v title=%q", detection.Detected, detection.Title)
	return detection, nil
}
