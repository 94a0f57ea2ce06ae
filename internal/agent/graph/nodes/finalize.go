package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/hrassist-core-poc/server/internal/agent/graph/conversations"
	"github.com/hrassist-core-poc/server/internal/agent/model"
	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

// SafeFailureMessage is the fixed answer for unrecoverable internal failures.
// Raw errors never reach the presentation layer; the trace carries the
// failure kind for diagnostics.
const SafeFailureMessage = "I wasn't able to process your request due to an internal problem. Please try again in a moment, or contact HR support directly if it keeps happening."

// NewFinalizeNode creates the terminal node: the sole writer of FinalAnswer
// and the sole mutator of conversational memory.
func NewFinalizeNode(mm *conversations.MessagesManager) *compose.Lambda {
	log := logx.Component(NodeFinalize)

	return compose.InvokableLambda(func(ctx context.Context, draft string) (*model.Result, error) {
		var result *model.Result

		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
			answer := strings.TrimSpace(s.DraftAnswer)
			summary := "answer delivered"
			if s.Failure != model.FailureNone || answer == "" {
				answer = SafeFailureMessage
				summary = fmt.Sprintf("safe failure answer (%s)", failureLabel(s.Failure))
			}
			s.FinalAnswer = answer

			// Memory append failure must not cost the user their answer.
			if err := mm.AppendExchange(ctx, s.ConversationID, s.CurrentRequest, answer); err != nil {
				log.Error().Err(err).Str("conversation_id", s.ConversationID).Msg("failed to persist exchange")
			} else {
				s.History = append(s.History,
					schema.UserMessage(s.CurrentRequest),
					schema.AssistantMessage(answer, nil),
				)
			}

			s.AppendTrace(NodeFinalize, summary)

			result = &model.Result{
				Answer:           s.FinalAnswer,
				Intent:           s.Intent,
				RetrievedContext: s.RetrievedContext,
				ToolInvocations:  s.ToolInvocations,
				Trace:            s.Trace,
				TotalCostUSD:     s.TotalCostUSD,
			}
			return nil
		}); err != nil {
			return nil, err
		}

		log.Debug().Str("intent", result.Intent.String()).Int("answer_chars", len(result.Answer)).Msg("request finalized")
		return result, nil
	})
}

func failureLabel(kind model.FailureKind) string {
	if kind == model.FailureNone {
		return "empty draft"
	}
	return string(kind)
}
