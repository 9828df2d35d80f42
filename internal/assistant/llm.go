// internal/assistant/llm.go

package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Message is one turn of an assistant conversation
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

// Provider generates an assistant reply from a system prompt and the
// conversation so far.
type Provider interface {
	Generate(ctx context.Context, systemPrompt string, history []Message) (string, error)
}

// NewProvider builds the configured provider. "gemini" talks to the
// hosted Gemini API; "mock" answers locally and is used in development
// and tests.
func NewProvider(provider, apiKey, model string) (Provider, error) {
	switch provider {
	case "gemini":
		return newGeminiProvider(apiKey, model)
	case "mock", "":
		return &mockProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown assistant provider: %s", provider)
	}
}

type geminiProvider struct {
	client *genai.Client
	model  string
}

func newGeminiProvider(apiKey, model string) (*geminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiProvider{client: client, model: model}, nil
}

// genaiRole maps a conversation role onto the wire role the Gemini
// API expects. Unknown roles are treated as the user speaking.
func genaiRole(role string) genai.Role {
	if role == "assistant" {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func (p *geminiProvider) Generate(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		contents = append(contents, genai.NewContentFromText(m.Content, genaiRole(m.Role)))
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("Gemini generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from Gemini")
	}
	return text, nil
}

// mockProvider echoes the stats snapshot back, which is enough to
// exercise the chat plumbing without an API key.
type mockProvider struct{}

func (mockProvider) Generate(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	lastUser := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			lastUser = history[i].Content
			break
		}
	}

	var b strings.Builder
	b.WriteString("Here is the current platform snapshot I was given:\n\n")
	if idx := strings.Index(systemPrompt, "{"); idx >= 0 {
		b.WriteString(systemPrompt[idx:])
	}
	if lastUser != "" {
		b.WriteString("\n\nYou asked: ")
		b.WriteString(lastUser)
	}
	return b.String(), nil
}
