package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultEndpoint = "https://exp.host/--/api/v2/push/send"

// Expo limits a single push request to 100 messages.
const maxBatch = 100

// Client sends notifications through the Expo push API. Delivery transport
// beyond this HTTP handoff (APNs/FCM fan-out, receipts) is Expo's problem.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient() *Client {
	endpoint := strings.TrimSpace(os.Getenv("EXPO_PUSH_URL"))
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type pushMessage struct {
	To    []string          `json:"to"`
	Title string            `json:"title,omitempty"`
	Body  string            `json:"body,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
}

// Send posts one notification to a set of Expo push tokens, batching per the
// API limit. Callers treat failures as best-effort; nothing is retried.
func (c *Client) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	for start := 0; start < len(tokens); start += maxBatch {
		end := start + maxBatch
		if end > len(tokens) {
			end = len(tokens)
		}
		if err := c.sendBatch(ctx, tokens[start:end], title, body, data); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	payload, err := json.Marshal(pushMessage{
		To:    tokens,
		Title: title,
		Body:  body,
		Data:  data,
		Sound: "default",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("expo push: unexpected status %d", resp.StatusCode)
	}
	return nil
}
