package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/toolcall_prompt.txt
var toolCallPrompt string

// RenderToolCallPrompt substitutes the rendered tool catalog and the current
// request into the tool-selection template. Same token-replacement approach
// as the other templates since the instruction contains literal JSON braces.
func RenderToolCallPrompt(ctx context.Context, toolCatalog, query string) (string, error) {
	content := strings.NewReplacer(
		"{tools}", toolCatalog,
		"{query}", query,
	).Replace(toolCallPrompt)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("user_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"user_messages": []*schema.Message{schema.UserMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("tool prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("tool prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
