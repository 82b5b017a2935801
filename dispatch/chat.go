package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ChatResponder produces an assistant reply for one chat turn
type ChatResponder interface {
	Respond(ctx context.Context, sessionID, message string) (string, error)
}

type httpChat struct {
	baseURL string
	client  *http.Client
}

// NewHTTPChat returns a responder backed by the assistant service at baseURL.
// Callers fall back to local guidance when the service is unavailable.
func NewHTTPChat(baseURL string) ChatResponder {
	return &httpChat{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (c *httpChat) Respond(ctx context.Context, sessionID, message string) (string, error) {
	body, err := json.Marshal(chatRequest{SessionID: sessionID, Message: message})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("chat service returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Reply == "" {
		return "", fmt.Errorf("chat service returned an empty reply")
	}
	return parsed.Reply, nil
}
