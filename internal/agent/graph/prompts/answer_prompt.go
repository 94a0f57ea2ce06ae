package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/answer_prompt.txt
var answerPrompt string

// ContextSeparator delimits ranked chunks inside the assembled context block.
const ContextSeparator = "\n\n---\n\n"

// RenderAnswerPrompt substitutes the retrieved context, formatted history and
// question into the grounded-answer template. Known tokens are replaced
// directly (the context may itself contain braces, which would break FString
// interpolation) and the result is still run through the Eino prompt
// component so prompt callbacks fire.
func RenderAnswerPrompt(ctx context.Context, contextBlock, history, question string) (string, error) {
	if strings.TrimSpace(contextBlock) == "" {
		contextBlock = "No policy context retrieved."
	}
	if strings.TrimSpace(history) == "" {
		history = "No previous conversation."
	}

	content := strings.NewReplacer(
		"{context}", contextBlock,
		"{history}", history,
		"{question}", question,
	).Replace(answerPrompt)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("user_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"user_messages": []*schema.Message{schema.UserMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("answer prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("answer prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
