// Package legacy keeps the retired asset product's registration surface
// alive: incoming game/token/collection/NFT metadata is archived as a JSON
// blob in the media store and mirrored to the remote ledger service.
// Mirroring is best-effort only.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// LedgerClient POSTs asset records to the remote ledger service.
type LedgerClient struct {
	baseURL string
	http    *http.Client
}

func NewLedgerClient(baseURL string, timeout time.Duration) *LedgerClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LedgerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Mirror POSTs record to the given ledger path ("/games", "/tokens", …).
func (c *LedgerClient) Mirror(ctx context.Context, path string, record any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("legacy: encoding ledger record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("legacy: building ledger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("legacy: calling ledger service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("legacy: ledger service returned status %d", resp.StatusCode)
	}
	return nil
}
