package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntentNormalises(t *testing.T) {
	cases := []struct {
		in   string
		want Intent
	}{
		{"POLICY_QUERY", IntentPolicyQuery},
		{"policy_query", IntentPolicyQuery},
		{"  Action_Request\n", IntentActionRequest},
		{"UNKNOWN", IntentUnknown},
		{"GREETING", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseIntent(tc.in), "input %q", tc.in)
	}
}

func TestIntentValid(t *testing.T) {
	assert.True(t, IntentPolicyQuery.Valid())
	assert.True(t, IntentActionRequest.Valid())
	assert.True(t, IntentUnknown.Valid())
	assert.False(t, Intent("").Valid())
	assert.False(t, Intent("policy_query").Valid()) // members are upper case
}
