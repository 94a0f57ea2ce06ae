package conversations

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrassist-core-poc/server/internal/agent/model"
	"github.com/hrassist-core-poc/server/internal/agent/repo"
)

func newTestManager(max int) *MessagesManager {
	return NewMessagesManager(
		repo.NewMemoryConversationRepository(0),
		model.ConversationConfig{MaxExchanges: max},
	)
}

func TestNewMessagesManagerDefaultsBound(t *testing.T) {
	assert.Equal(t, 10, newTestManager(0).MaxExchanges())
	assert.Equal(t, 3, newTestManager(3).MaxExchanges())
}

func TestAppendAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mm := newTestManager(10)

	require.NoError(t, mm.AppendExchange(ctx, "c1", "how much sick leave do I get?", "12 days per year."))

	msgs, err := mm.LoadRecent(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Equal(t, "how much sick leave do I get?", msgs[0].Content)
	assert.Equal(t, schema.Assistant, msgs[1].Role)
	assert.Equal(t, "12 days per year.", msgs[1].Content)
}

func TestHistoryBoundDropsOldestExchanges(t *testing.T) {
	ctx := context.Background()
	mm := newTestManager(3)

	for i := 0; i < 6; i++ {
		require.NoError(t, mm.AppendExchange(ctx, "c1", fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i)))
	}

	msgs, err := mm.LoadRecent(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 6) // 3 exchanges, 2 messages each
	assert.Equal(t, "question 3", msgs[0].Content)
	assert.Equal(t, "answer 5", msgs[5].Content)
}

func TestConversationsAreIsolated(t *testing.T) {
	ctx := context.Background()
	mm := newTestManager(10)

	require.NoError(t, mm.AppendExchange(ctx, "alice", "q", "a"))

	msgs, err := mm.LoadRecent(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestFormatHistoryRendersDialogueLines(t *testing.T) {
	mm := newTestManager(10)

	out := mm.FormatHistory([]*schema.Message{
		schema.UserMessage("what is the remote work policy?"),
		schema.AssistantMessage("Up to 3 remote days per week.", nil),
	})
	assert.Equal(t, "User: what is the remote work policy?\nAssistant: Up to 3 remote days per week.", out)
}

func TestFormatHistoryWindowAndExcerpt(t *testing.T) {
	mm := newTestManager(10)

	var msgs []*schema.Message
	for i := 0; i < 10; i++ {
		msgs = append(msgs,
			schema.UserMessage(fmt.Sprintf("q%d", i)),
			schema.AssistantMessage(strings.Repeat("a", 400), nil),
		)
	}

	out := mm.FormatHistory(msgs)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, historyWindow)
	assert.NotContains(t, out, "q0")
	for _, line := range lines {
		if strings.HasPrefix(line, "Assistant: ") {
			assert.True(t, strings.HasSuffix(line, "..."))
			assert.LessOrEqual(t, len(line), len("Assistant: ")+assistantExcerptLen+3)
		}
	}
}

func TestFormatHistorySkipsEmptyAndSystemMessages(t *testing.T) {
	mm := newTestManager(10)

	out := mm.FormatHistory([]*schema.Message{
		nil,
		schema.SystemMessage("internal instructions"),
		schema.UserMessage(""),
		schema.UserMessage("hello"),
	})
	assert.Equal(t, "User: hello", out)

	assert.Empty(t, mm.FormatHistory(nil))
}
