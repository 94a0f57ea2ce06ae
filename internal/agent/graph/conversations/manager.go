package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/hrassist-core-poc/server/internal/agent/model"
)

const (
	// historyWindow bounds how many recent messages are rendered into prompts.
	historyWindow = 6
	// assistantExcerptLen truncates assistant turns in rendered history.
	assistantExcerptLen = 300
)

// MessagesManager mediates between the graph nodes and the conversation
// repository: loading the bounded history snapshot, rendering it for prompts,
// and appending completed exchanges.
type MessagesManager struct {
	repo         model.ConversationRepository
	maxExchanges int
}

func NewMessagesManager(repo model.ConversationRepository, cfg model.ConversationConfig) *MessagesManager {
	max := cfg.MaxExchanges
	if max <= 0 {
		max = 10
	}
	return &MessagesManager{repo: repo, maxExchanges: max}
}

// MaxExchanges returns the configured history bound.
func (m *MessagesManager) MaxExchanges() int {
	return m.maxExchanges
}

// LoadRecent returns the retained history for a conversation, oldest first.
func (m *MessagesManager) LoadRecent(ctx context.Context, conversationID string) ([]*schema.Message, error) {
	history, err := m.repo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return history.Messages, nil
}

// AppendExchange records one completed request/answer pair. The repository
// drops the oldest exchanges beyond the bound.
func (m *MessagesManager) AppendExchange(ctx context.Context, conversationID, request, answer string) error {
	return m.repo.AddExchange(ctx, conversationID,
		schema.UserMessage(request),
		schema.AssistantMessage(answer, nil),
		m.maxExchanges,
	)
}

// FormatHistory renders the most recent messages as plain dialogue lines for
// prompt use. Assistant turns are excerpted so old answers do not dominate
// the prompt.
func (m *MessagesManager) FormatHistory(messages []*schema.Message) string {
	recent := tail(messages, historyWindow)

	var lines []string
	for _, msg := range recent {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			lines = append(lines, "User: "+msg.Content)
		case schema.Assistant:
			lines = append(lines, "Assistant: "+excerpt(msg.Content, assistantExcerptLen))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func tail(messages []*schema.Message, n int) []*schema.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
