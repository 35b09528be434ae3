package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultRoboRangerModel is sent when no model is configured.
const DefaultRoboRangerModel = "robo-ranger-1"

// RoboRangerClient calls the academy's chat completion service.
type RoboRangerClient struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

var _ Drafter = (*RoboRangerClient)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewRoboRangerClient creates a client for the chat endpoint at url.
// PRE: url is an absolute http(s) URL
// POST: requests time out after DefaultTimeout unless client overrides it
func NewRoboRangerClient(url, apiKey, model string, client *http.Client) *RoboRangerClient {
	if model == "" {
		model = DefaultRoboRangerModel
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &RoboRangerClient{url: url, apiKey: apiKey, model: model, client: client}
}

// Draft asks the service for an answer. Any transport error, non-200 status or empty
// reply is returned as an error.
func (c *RoboRangerClient) Draft(ctx context.Context, p Prompt) (Draft, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: UserMessage(p)},
		},
	})
	if err != nil {
		return Draft{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Draft{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Draft{}, fmt.Errorf("robo-ranger request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var apiErr chatError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return Draft{}, fmt.Errorf("robo-ranger returned %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return Draft{}, fmt.Errorf("robo-ranger returned %d: %s", resp.StatusCode, string(respBody))
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return Draft{}, fmt.Errorf("parse robo-ranger response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return Draft{}, ErrEmptyResponse
	}

	model := out.Model
	if model == "" {
		model = c.model
	}
	return Draft{Text: strings.TrimSpace(out.Choices[0].Message.Content), Model: model}, nil
}
