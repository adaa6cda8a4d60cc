package assistant

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// Defaults for the Gemini backend.
const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.7
)

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// GeminiClient opens chats against the Gemini API. The underlying genai
// client is created on first use.
type GeminiClient struct {
	cfg GeminiConfig

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	return &GeminiClient{cfg: cfg}
}

func (c *GeminiClient) genaiClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.client = client
	return client, nil
}

// NewChat starts a conversation primed with the Mochi persona.
func (c *GeminiClient) NewChat(ctx context.Context) (Chat, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := c.genaiClient(ctx)
	if err != nil {
		return nil, err
	}

	chat, err := client.Chats.Create(ctx, c.cfg.Model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(c.cfg.Temperature),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create gemini chat: %w", err)
	}
	return &geminiChat{chat: chat}, nil
}

type geminiChat struct {
	chat *genai.Chat
}

func (g *geminiChat) Send(ctx context.Context, message string) (string, error) {
	resp, err := g.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("gemini send message: %w", err)
	}
	return resp.Text(), nil
}
