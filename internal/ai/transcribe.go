package ai

import (
	"context"
	"io"
	"strings"
)

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads audio to the transcription endpoint and returns the
// recognized text, trimmed. The server-side stand-in for the browser's
// speech facility: clients that can't transcribe locally post raw audio.
func (c *Client) Transcribe(ctx context.Context, model, filename string, audio io.Reader) (string, error) {
	var resp transcriptionResponse
	err := c.postMultipart(ctx, "/audio/transcriptions", "file", filename, audio,
		map[string]string{"model": model}, &resp)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Text), nil
}
