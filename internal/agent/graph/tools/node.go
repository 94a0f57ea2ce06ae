package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/hrassist-core-poc/server/internal/agent/graph/parsers"
	"github.com/hrassist-core-poc/server/internal/agent/graph/prompts"
	"github.com/hrassist-core-poc/server/internal/agent/llm"
	"github.com/hrassist-core-poc/server/internal/agent/model"
	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

// Deterministic fast paths for wordings that explicitly match a known action;
// these skip the completion call entirely.
var (
	reLeaveBalance = regexp.MustCompile(`(?i)\bleave\s+balance\b.*?\b(EMP\d+)\b`)
	reCreateTicket = regexp.MustCompile(`(?i)\b(?:create|raise|open)\b[^.]*?\bticket\b(?:\s+(?:for|about))?\s*(.+)`)
)

const clarifyUnknownTool = "I can only check leave balances or create HR support tickets. Could you rephrase what you need?"

// NewExecuteToolNode builds the execute_tool node. The tool registry is
// created here and captured by the closure; it is never stored anywhere else,
// so handlers are reachable from this node's execution path only.
func NewExecuteToolNode(completer llm.Completer, modelName string) *compose.Lambda {
	reg := newRegistry()
	catalog := reg.catalog()
	log := logx.Component("execute_tool")

	return compose.InvokableLambda(func(ctx context.Context, _ model.Intent) (string, error) {
		var query string
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
			query = s.CurrentRequest
			return nil
		}); err != nil {
			return "", err
		}

		call := matchExplicit(query)
		if call != nil {
			log.Debug().Str("tool", call.Tool).Msg("deterministic tool match")
		} else {
			extracted, failed := extractWithModel(ctx, completer, modelName, catalog, query)
			if failed {
				return failTool(ctx, "tool argument extraction failed")
			}
			call = extracted
		}

		// No tool selected: the extraction reply is a clarification, not an
		// error, and no handler runs.
		if call.Tool == "" {
			draft := call.Reply
			if draft == "" {
				draft = clarifyUnknownTool
			}
			return finishTool(ctx, draft, nil, "no tool selected, asked for clarification")
		}

		e := reg.lookup(call.Tool)
		if e == nil {
			log.Warn().Str("tool", call.Tool).Msg("unregistered tool requested")
			return finishTool(ctx, clarifyUnknownTool, nil, fmt.Sprintf("unknown tool %q rejected", call.Tool))
		}

		// Partial or invalid argument sets never reach a handler.
		if missing := e.missingArgs(call.Arguments); len(missing) > 0 {
			draft := fmt.Sprintf("To run %s I still need: %s. Could you provide that?", call.Tool, strings.Join(missing, ", "))
			return finishTool(ctx, draft, nil, fmt.Sprintf("%s missing arguments: %s", call.Tool, strings.Join(missing, ", ")))
		}

		result, err := e.invoke(ctx, call.Arguments)
		if err != nil {
			log.Error().Err(err).Str("tool", call.Tool).Msg("tool handler failed")
			return failTool(ctx, fmt.Sprintf("tool %s failed: %v", call.Tool, err))
		}

		invocation := &model.ToolInvocation{
			Tool:      call.Tool,
			Arguments: call.Arguments,
			Result:    result,
		}
		return finishTool(ctx, summarize(call.Tool, result), invocation, fmt.Sprintf("invoked %s", call.Tool))
	})
}

// matchExplicit maps explicitly worded requests straight to a tool call.
func matchExplicit(query string) *parsers.ToolCall {
	if m := reLeaveBalance.FindStringSubmatch(query); m != nil {
		return &parsers.ToolCall{
			Tool:      ToolCheckLeaveBalance,
			Arguments: map[string]string{"employee_id": strings.ToUpper(m[1])},
		}
	}
	if m := reCreateTicket.FindStringSubmatch(query); m != nil {
		issue := strings.TrimSpace(m[1])
		if issue != "" {
			return &parsers.ToolCall{
				Tool:      ToolCreateTicket,
				Arguments: map[string]string{"issue": issue},
			}
		}
	}
	return nil
}

// extractWithModel asks the completion service for a structured tool call.
// The second return value reports an unrecoverable extraction failure.
func extractWithModel(ctx context.Context, completer llm.Completer, modelName, catalog, query string) (*parsers.ToolCall, bool) {
	lg := logx.Component("execute_tool")
	rendered, err := prompts.RenderToolCallPrompt(ctx, catalog, query)
	if err != nil {
		lg.Error().Err(err).Msg("tool prompt render failed")
		return nil, true
	}

	out, err := completer.Complete(ctx, []*schema.Message{schema.UserMessage(rendered)})
	if err != nil {
		lg.Error().Err(err).Msg("tool extraction completion failed")
		return nil, true
	}
	_ = compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
		model.RecordUsage(s, out, modelName)
		return nil
	})

	call, err := parsers.ParseToolCall(out.Content)
	if err != nil {
		// Structured but invalid output is a validation problem, handled with
		// a clarification rather than a failure.
		return &parsers.ToolCall{Reply: clarifyUnknownTool}, false
	}
	if call == nil {
		// Plain-text output is the model asking for more information.
		return &parsers.ToolCall{Reply: strings.TrimSpace(out.Content)}, false
	}
	return call, false
}

// finishTool records the node outcome in state and returns the draft answer.
func finishTool(ctx context.Context, draft string, invocation *model.ToolInvocation, summary string) (string, error) {
	err := compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
		if invocation != nil {
			s.ToolInvocations = append(s.ToolInvocations, *invocation)
		}
		s.DraftAnswer = draft
		s.AppendTrace("execute_tool", summary)
		return nil
	})
	return draft, err
}

// failTool records an unrecoverable tool failure; finalize will emit the
// safe-failure answer.
func failTool(ctx context.Context, summary string) (string, error) {
	err := compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
		s.Fail(model.FailureTool)
		s.AppendTrace("execute_tool", summary)
		return nil
	})
	return "", err
}

func summarize(tool string, result map[string]any) string {
	if msg, ok := result["message"].(string); ok && msg != "" {
		return msg
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%s completed.", tool)
	}
	return fmt.Sprintf("%s completed: %s", tool, string(b))
}
