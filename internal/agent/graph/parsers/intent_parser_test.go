package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hrassist-core-poc/server/internal/agent/model"
)

func TestParseIntent(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    model.Intent
	}{
		{"clean json policy", `{"intent": "POLICY_QUERY"}`, model.IntentPolicyQuery},
		{"clean json action", `{"intent": "ACTION_REQUEST"}`, model.IntentActionRequest},
		{"clean json unknown", `{"intent": "UNKNOWN"}`, model.IntentUnknown},
		{"lowercase member", `{"intent": "policy_query"}`, model.IntentPolicyQuery},
		{"padded member", `{"intent": "  ACTION_REQUEST  "}`, model.IntentActionRequest},
		{"json embedded in prose", `Sure! The classification is {"intent": "POLICY_QUERY"} as requested.`, model.IntentPolicyQuery},
		{"fenced json", "```json\n{\"intent\": \"ACTION_REQUEST\"}\n```", model.IntentActionRequest},
		{"bare keyword", "The intent here is POLICY_QUERY.", model.IntentPolicyQuery},
		{"keyword priority is fixed", "Could be POLICY_QUERY or ACTION_REQUEST", model.IntentPolicyQuery},
		{"invalid member", `{"intent": "GREETING"}`, model.IntentUnknown},
		{"wrong field", `{"classification": "POLICY_QUERY"}`, model.IntentPolicyQuery}, // keyword scan catches it
		{"empty", "", model.IntentUnknown},
		{"whitespace", "   \n\t  ", model.IntentUnknown},
		{"plain prose", "I cannot classify this request.", model.IntentUnknown},
		{"broken json", `{"intent": "POLICY_QU`, model.IntentUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseIntent(tc.content))
		})
	}
}

func TestParseIntentOversizedInput(t *testing.T) {
	// the valid payload sits past the size cap and must be ignored
	content := strings.Repeat("x", maxContentLen) + `{"intent": "POLICY_QUERY"}`
	assert.Equal(t, model.IntentUnknown, ParseIntent(content))
}

func TestParseIntentNeverPanics(t *testing.T) {
	for _, content := range []string{"{}", "{{{", "null", "[]", `{"intent": 42}`, `{"intent": null}`} {
		assert.Equal(t, model.IntentUnknown, ParseIntent(content))
	}
}
