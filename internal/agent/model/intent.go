package model

import "strings"

// Intent is the closed category a request is classified into. It is set
// exactly once per request by the classify node and is the only value the
// routing branch consults.
type Intent string

const (
	IntentPolicyQuery   Intent = "POLICY_QUERY"
	IntentActionRequest Intent = "ACTION_REQUEST"
	IntentUnknown       Intent = "UNKNOWN"
)

// Valid reports whether the intent is a member of the closed enumeration.
func (i Intent) Valid() bool {
	switch i {
	case IntentPolicyQuery, IntentActionRequest, IntentUnknown:
		return true
	}
	return false
}

func (i Intent) String() string {
	return string(i)
}

// ParseIntent normalises a raw string into an enumeration member.
// Anything outside the enumeration maps to IntentUnknown; callers treat that
// as the safety default, not an error.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToUpper(strings.TrimSpace(s))) {
	case IntentPolicyQuery:
		return IntentPolicyQuery
	case IntentActionRequest:
		return IntentActionRequest
	default:
		return IntentUnknown
	}
}
