package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

// ToolCall is the structured tool-selection output of the completion service.
// Tool is empty when the model declined to pick one; Reply then carries its
// clarifying answer.
type ToolCall struct {
	Tool      string
	Arguments map[string]string
	Reply     string
}

type toolCallPayload struct {
	Tool      *string        `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Reply     string         `json:"reply"`
}

// ParseToolCall extracts a ToolCall from raw completion text. Markdown fences
// are stripped and the first JSON object is decoded. A nil result with nil
// error means no structured call was found; the caller treats the raw text as
// a plain reply.
func ParseToolCall(content string) (*ToolCall, error) {
	if len(content) > maxContentLen {
		content = content[:maxContentLen]
	}
	content = stripFences(content)

	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return nil, nil
	}

	var payload toolCallPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		lg := logx.Component("tool_parser")
		lg.Debug().
			Str("snippet", safeSnippet(content)).
			Err(err).
			Msg("tool selection output not valid JSON")
		return nil, nil
	}

	call := &ToolCall{
		Arguments: map[string]string{},
		Reply:     strings.TrimSpace(payload.Reply),
	}
	if payload.Tool != nil {
		call.Tool = strings.TrimSpace(*payload.Tool)
	}
	for k, v := range payload.Arguments {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		switch vv := v.(type) {
		case string:
			call.Arguments[key] = strings.TrimSpace(vv)
		default:
			// coerce non-string scalars; nested structures are rejected
			if _, isMap := v.(map[string]any); isMap {
				return nil, fmt.Errorf("argument %q is not a scalar", key)
			}
			call.Arguments[key] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return call, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
