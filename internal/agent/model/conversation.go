package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository persists conversational memory across requests.
// The workflow core only ever appends whole exchanges; truncation to the
// configured bound is the repository's responsibility so every backend
// enforces the same retention.
type ConversationRepository interface {
	// AddExchange appends the (user request, assistant answer) pair of one
	// completed request and drops the oldest exchanges beyond maxExchanges.
	AddExchange(ctx context.Context, conversationID string, user, assistant *schema.Message, maxExchanges int) error

	// LoadHistory retrieves the retained conversation history, oldest first.
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// ClearHistory removes all conversation history for a conversation.
	ClearHistory(ctx context.Context, conversationID string) error

	// MessageCount returns the number of retained messages (two per exchange).
	MessageCount(ctx context.Context, conversationID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}
