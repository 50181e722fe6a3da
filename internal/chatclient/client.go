package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrEmptyPrompt is returned for blank input. Callers validate first, but
// the guard stays so the client is safe to reuse elsewhere.
var ErrEmptyPrompt = errors.New("prompt is empty")

// fallbackMessage is shown when the proxy answered 2xx without a message
// field. It is rendered to the caller as-is.
const fallbackMessage = "Не удалось получить ответ"

// TransportError reports a non-success HTTP status from the proxy.
type TransportError struct {
	Status int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("chat proxy returned status %d", e.Status)
}

// Client calls the chat-completion proxy over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Complete sends the prompt to the proxy and returns the generated
// message. Implements ports.CompletionClient.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	body, err := json.Marshal(chatRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded chatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().
			Int("status", resp.StatusCode).
			Str("error", decoded.Error).
			Msg("chat proxy returned failure")
		return "", &TransportError{Status: resp.StatusCode}
	}

	if decodeErr != nil || decoded.Message == "" {
		return fallbackMessage, nil
	}
	return decoded.Message, nil
}
