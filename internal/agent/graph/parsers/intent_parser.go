// Package parsers maps raw model output to the structured values the graph
// routes on. Parsing is deliberately forgiving: malformed output degrades to
// safe defaults instead of failing the request.
package parsers

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/hrassist-core-poc/server/internal/agent/model"
	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024 // 64KB
	maxErrSnippet = 200       // limit logged snippet size
)

var reJSONObject = regexp.MustCompile(`\{[^{}]*\}`)

type intentPayload struct {
	Intent string `json:"intent"`
}

// ParseIntent maps raw completion text to exactly one enumeration member.
// Strategy, in order: direct JSON object, embedded JSON object, keyword scan.
// Anything else is IntentUnknown, which is the safety default, not an error.
func ParseIntent(content string) model.Intent {
	if len(content) > maxContentLen {
		lg := logx.Component("intent_parser")
		lg.Warn().
			Int("orig_len", len(content)).
			Int("max_len", maxContentLen).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return model.IntentUnknown
	}

	if in, ok := decodeIntent(content); ok {
		return in
	}

	if match := reJSONObject.FindString(content); match != "" {
		if in, ok := decodeIntent(match); ok {
			return in
		}
	}

	// Last resort: scan for an enumeration member in the raw text. Checked in
	// a fixed order so output mentioning several members stays deterministic.
	upper := strings.ToUpper(content)
	switch {
	case strings.Contains(upper, string(model.IntentPolicyQuery)):
		return model.IntentPolicyQuery
	case strings.Contains(upper, string(model.IntentActionRequest)):
		return model.IntentActionRequest
	}

	lg := logx.Component("intent_parser")
	lg.Debug().
		Str("snippet", safeSnippet(content)).
		Msg("unparseable classification output, defaulting to UNKNOWN")
	return model.IntentUnknown
}

// decodeIntent accepts only exact enumeration members; anything else reports
// failure so the caller can fall through to weaker strategies.
func decodeIntent(s string) (model.Intent, bool) {
	var payload intentPayload
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return model.IntentUnknown, false
	}
	in := model.Intent(strings.ToUpper(strings.TrimSpace(payload.Intent)))
	if !in.Valid() {
		return model.IntentUnknown, false
	}
	return in, true
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
