package coach

import (
	"context"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"life-coach-chat/internal/models"
)

const (
	// DefaultModel is used for coach responses
	DefaultModel = "gpt-4o"
	// DefaultExtractionModel is used for the cheaper challenge-detection calls
	DefaultExtractionModel = "gpt-4o-mini"
	// defaultTimeout bounds a single provider call
	defaultTimeout = 60 * time.Second

	responseMaxTokens   = 1024
	extractionMaxTokens = 256
)

// Client wraps the OpenAI API for response generation and challenge
// extraction
type Client struct {
	client          *openai.Client
	model           string
	extractionModel string
	timeout         time.Duration
	baseURL         string
}

// Option configures the client
type Option func(*Client)

// WithModel sets a custom model for coach responses
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithExtractionModel sets a custom model for challenge detection
func WithExtractionModel(model string) Option {
	return func(c *Client) {
		c.extractionModel = model
	}
}

// WithTimeout sets a custom per-call timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithBaseURL points the client at a different API endpoint (used by tests)
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates a new coach client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		model:           DefaultModel,
		extractionModel: DefaultExtractionModel,
		timeout:         defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	c.client = openai.NewClientWithConfig(cfg)

	return c
}

// Generate produces the coach's reply for a conversation. History is
// mapped to role-tagged chat messages in chronological order with the
// instruction as the system message. A response with no extractable
// text is an error, not an empty success, so a blank coach message is
// never persisted downstream.
func (c *Client) Generate(ctx context.Context, instruction string, history []models.Message) (string, error) {
	log.Printf("[Coach] Generate started model=%s history_len=%d", c.model, len(history))

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: instruction,
	})
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  chatMessages,
		MaxTokens: responseMaxTokens,
	})
	if err != nil {
		log.Printf("[Coach] Generate failed: provider error err=%v", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		log.Printf("[Coach] Generate failed: empty response choices=%d", len(resp.Choices))
		return "", fmt.Errorf("empty response from provider")
	}

	content := resp.Choices[0].Message.Content
	log.Printf("[Coach] Generate completed response_length=%d", len(content))
	return content, nil
}
