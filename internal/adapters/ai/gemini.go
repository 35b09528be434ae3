package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when ACADEMY_GEMINI_MODEL is unset.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiDrafter drafts answers with the Gemini API.
type GeminiDrafter struct {
	client *genai.Client
	model  string
}

var _ Drafter = (*GeminiDrafter)(nil)

// NewGeminiDrafter creates a Gemini-backed drafter.
// PRE: apiKey non-empty
func NewGeminiDrafter(ctx context.Context, apiKey, model string) (*GeminiDrafter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiDrafter{client: client, model: model}, nil
}

func (g *GeminiDrafter) Draft(ctx context.Context, p Prompt) (Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(UserMessage(p)), config)
	if err != nil {
		return Draft{}, fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return Draft{}, ErrEmptyResponse
	}
	return Draft{Text: text, Model: g.model}, nil
}
