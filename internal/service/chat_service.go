package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
)

var (
	// ErrPromptRequired rejects empty prompts before any upstream call.
	ErrPromptRequired = errors.New("prompt is required")
	// ErrRateLimited marks an upstream too-many-requests signal.
	ErrRateLimited = errors.New("upstream rate limit exceeded")
)

const (
	systemPreamble          = "You are a helpful assistant."
	emptyCompletionFallback = "No response received"
	maxErrorDetailLen       = 200
)

// UpstreamError is a generic provider failure with a bounded detail
// string safe to expose; the full error goes to the log only.
type UpstreamError struct {
	Detail string
}

func (e *UpstreamError) Error() string {
	return "failed to fetch response from upstream"
}

// ChatService forwards prompts to the upstream chat-completion model as
// a fixed two-message exchange and normalizes the result.
type ChatService struct {
	chatModel model.BaseChatModel
}

func NewChatService(chatModel model.BaseChatModel) *ChatService {
	return &ChatService{chatModel: chatModel}
}

// Complete returns the first choice's content, or a fixed fallback when
// the provider produced no content. Empty content is not an error.
func (s *ChatService) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrPromptRequired
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPreamble),
		schema.UserMessage(prompt),
	}

	resp, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		log.Error().Err(err).Msg("upstream completion failed")
		if isRateLimited(err) {
			return "", ErrRateLimited
		}
		return "", &UpstreamError{Detail: truncate(err.Error(), maxErrorDetailLen)}
	}

	if resp == nil || resp.Content == "" {
		return emptyCompletionFallback, nil
	}
	return resp.Content, nil
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
