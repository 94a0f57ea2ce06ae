package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/hrassist-core-poc/server/internal/agent/graph/conversations"
	"github.com/hrassist-core-poc/server/internal/agent/graph/prompts"
	"github.com/hrassist-core-poc/server/internal/agent/llm"
	"github.com/hrassist-core-poc/server/internal/agent/model"
	"github.com/hrassist-core-poc/server/internal/retrieval"
	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

// NewRetrieveNode creates the retrieve_and_answer node: top-k similarity
// search over the policy index, then a completion grounded strictly in the
// retrieved context. Embedding/search failures and completion failures are
// unrecoverable for the request and fall through to finalize.
func NewRetrieveNode(engine *retrieval.Engine, completer llm.Completer, modelName string, mm *conversations.MessagesManager) *compose.Lambda {
	log := logx.Component(NodeRetrieveAndAnswer)

	return compose.InvokableLambda(func(ctx context.Context, _ model.Intent) (string, error) {
		var (
			query   string
			history []*schema.Message
		)
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
			query = s.CurrentRequest
			history = s.History
			return nil
		}); err != nil {
			return "", err
		}

		hits, err := engine.Search(ctx, query, 0)
		if err != nil {
			log.Error().Err(err).Msg("similarity search failed")
			return failNode(ctx, NodeRetrieveAndAnswer, model.FailureRetrieval, fmt.Sprintf("search failed: %v", err))
		}
		log.Debug().Int("hits", len(hits)).Str("query", query).Msg("retrieved context")

		chunks := make([]model.RetrievedChunk, 0, len(hits))
		parts := make([]string, 0, len(hits))
		for _, h := range hits {
			chunks = append(chunks, model.RetrievedChunk{
				Source: h.Chunk.SourceTitle,
				Text:   h.Chunk.Text,
				Score:  h.Score,
			})
			parts = append(parts, fmt.Sprintf("[%s]\n%s", h.Chunk.SourceTitle, h.Chunk.Text))
		}
		contextBlock := strings.Join(parts, prompts.ContextSeparator)

		rendered, err := prompts.RenderAnswerPrompt(ctx, contextBlock, mm.FormatHistory(history), query)
		if err != nil {
			log.Error().Err(err).Msg("answer prompt render failed")
			return failNode(ctx, NodeRetrieveAndAnswer, model.FailureCompletion, fmt.Sprintf("prompt render failed: %v", err))
		}

		out, err := completer.Complete(ctx, []*schema.Message{schema.UserMessage(rendered)})
		if err != nil {
			log.Error().Err(err).Msg("grounded answer completion failed")
			return failNode(ctx, NodeRetrieveAndAnswer, model.FailureCompletion, fmt.Sprintf("completion failed: %v", err))
		}

		draft := strings.TrimSpace(out.Content)
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
			model.RecordUsage(s, out, modelName)
			s.RetrievedContext = chunks
			s.DraftAnswer = draft
			s.AppendTrace(NodeRetrieveAndAnswer, fmt.Sprintf("retrieved %d chunks, drafted %d chars", len(chunks), len(draft)))
			return nil
		}); err != nil {
			return "", err
		}
		return draft, nil
	})
}

// failNode records an unrecoverable failure; the node yields an empty draft
// and execution falls through to finalize, which emits the safe answer.
func failNode(ctx context.Context, node string, kind model.FailureKind, summary string) (string, error) {
	err := compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
		s.Fail(kind)
		s.AppendTrace(node, summary)
		return nil
	})
	return "", err
}
