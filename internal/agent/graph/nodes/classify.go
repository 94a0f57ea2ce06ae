package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/hrassist-core-poc/server/internal/agent/graph/conversations"
	"github.com/hrassist-core-poc/server/internal/agent/graph/parsers"
	"github.com/hrassist-core-poc/server/internal/agent/graph/prompts"
	"github.com/hrassist-core-poc/server/internal/agent/llm"
	"github.com/hrassist-core-poc/server/internal/agent/model"
	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

// NewClassifyPreHandler seeds the per-request state before classification.
func NewClassifyPreHandler() func(context.Context, model.QueryInput, *model.State) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.State) (model.QueryInput, error) {
		if in.ConversationID == "" {
			in.ConversationID = uuid.NewString()
		}
		s.ConversationID = in.ConversationID
		s.CurrentRequest = in.Query

		// Reset per-request fields; State instances may be pooled by callers.
		s.Intent = ""
		s.RetrievedContext = nil
		s.ToolInvocations = nil
		s.DraftAnswer = ""
		s.FinalAnswer = ""
		s.Trace = nil
		s.Failure = model.FailureNone
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewClassifyNode creates the entry node. It loads the bounded history
// snapshot and asks the temperature-0 classifier model for an intent.
// Classification never fails the request: absent or unparseable model output
// downgrades to UNKNOWN.
func NewClassifyNode(completer llm.Completer, modelName string, mm *conversations.MessagesManager) *compose.Lambda {
	log := logx.Component(NodeClassify)

	return compose.InvokableLambda(func(ctx context.Context, in model.QueryInput) (model.Intent, error) {
		history, err := mm.LoadRecent(ctx, in.ConversationID)
		if err != nil {
			// Degraded but not fatal: classification works without memory.
			log.Warn().Err(err).Str("conversation_id", in.ConversationID).Msg("history load failed, classifying without memory")
			history = nil
		}
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
			s.History = history
			return nil
		}); err != nil {
			return model.IntentUnknown, err
		}

		systemPrompt, err := prompts.RenderClassifierSystem(ctx)
		if err != nil {
			log.Error().Err(err).Msg("classifier prompt render failed, defaulting to UNKNOWN")
			return model.IntentUnknown, nil
		}

		out, err := completer.Complete(ctx, []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(classifyUserMessage(in.Query, mm.FormatHistory(history))),
		})
		if err != nil {
			// Absent model output is a classification failure, silently
			// downgraded to UNKNOWN per the error policy.
			log.Warn().Err(err).Msg("classification completion failed, defaulting to UNKNOWN")
			return model.IntentUnknown, nil
		}

		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
			model.RecordUsage(s, out, modelName)
			return nil
		}); err != nil {
			return model.IntentUnknown, err
		}

		return parsers.ParseIntent(out.Content), nil
	})
}

// NewClassifyPostHandler records the decision; this is the only writer of
// state.Intent.
func NewClassifyPostHandler() func(context.Context, model.Intent, *model.State) (model.Intent, error) {
	return func(ctx context.Context, out model.Intent, s *model.State) (model.Intent, error) {
		s.Intent = out
		s.AppendTrace(NodeClassify, fmt.Sprintf("intent=%s", out))
		return out, nil
	}
}

func classifyUserMessage(query, history string) string {
	var sb strings.Builder
	if history != "" {
		sb.WriteString("Recent conversation:\n")
		sb.WriteString(history)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Classify this request: ")
	sb.WriteString(query)
	return sb.String()
}
