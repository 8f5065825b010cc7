package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jholhewres/sumbot/pkg/sumbot/config"
)

// Client is the HTTP client for the signal-cli-rest-api relay.
type Client struct {
	cfg        config.RelayConfig
	groupID    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a relay client for the configured group.
func NewClient(cfg config.RelayConfig, groupID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:     cfg,
		groupID: groupID,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger.With("component", "signal"),
	}
}

// Fetch retrieves one batch of raw envelope items from the relay. A non-200
// response means there is nothing to process this cycle and is reported as
// an error for the caller's log sink; it never carries messages.
func (c *Client) Fetch(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ReceiveURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating receive request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("relay fetch: unexpected status %d: %s", resp.StatusCode, body)
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding receive response: %w", err)
	}
	return items, nil
}

// sendRequest is the relay's send endpoint body.
type sendRequest struct {
	Message    string   `json:"message"`
	Number     string   `json:"number"`
	Recipients []string `json:"recipients"`
	TextMode   string   `json:"text_mode"`
}

// SendText delivers a text message to the configured group. The single
// recipient is always the target group, addressed with the relay's "group."
// prefix.
func (c *Client) SendText(ctx context.Context, text string) error {
	body, err := json.Marshal(sendRequest{
		Message:    text,
		Number:     c.cfg.Number,
		Recipients: []string{"group." + c.groupID},
		TextMode:   "normal",
	})
	if err != nil {
		return fmt.Errorf("marshaling send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay send failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("relay send: unexpected status %d", resp.StatusCode)
	}

	c.logger.Debug("message sent", "bytes", len(text))
	return nil
}
