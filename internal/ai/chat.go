package ai

import (
	"context"
	"fmt"
)

// Message is one turn in a chat-completion request.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends messages to the chat model and returns the first
// choice's text. Temperature is passed through even when zero; the voice
// interpreter depends on deterministic output.
func (c *Client) ChatCompletion(ctx context.Context, model string, messages []Message, maxTokens int, temperature float64) (string, error) {
	req := chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var resp chatResponse
	if err := c.postJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ai: chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
