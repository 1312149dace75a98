package ai

import (
	"context"
	"fmt"
)

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for one input string.
//
// The length is validated downstream against the index dimension
// (parse-don't-trust happens where the number matters); here we only
// reject an empty result.
func (c *Client) Embed(ctx context.Context, model, input string) ([]float32, error) {
	req := embeddingRequest{Model: model, Input: input}

	var resp embeddingResponse
	if err := c.postJSON(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("ai: embedding endpoint returned no vector")
	}

	return resp.Data[0].Embedding, nil
}
