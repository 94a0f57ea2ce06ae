package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// FailureKind classifies unrecoverable per-request failures recorded by nodes.
// A non-empty kind makes finalize emit the safe-failure answer instead of the
// routed node's draft.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureRetrieval  FailureKind = "retrieval_failure"
	FailureTool       FailureKind = "tool_failure"
	FailureCompletion FailureKind = "completion_failure"
)

// State stores per-request state for the workflow graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - Each request gets its own State; cross-request memory lives in the
//     ConversationRepository, not here.
type State struct {
	ConversationID string
	CurrentRequest string

	// Bounded history snapshot loaded at classify time. Finalize is the sole
	// writer of new exchanges (via the repository), never the specialists.
	History []*schema.Message

	// Set exactly once by the classify post-handler.
	Intent Intent

	// Populated only by the retrieve_and_answer node.
	RetrievedContext []RetrievedChunk

	// Populated only by the execute_tool node.
	ToolInvocations []ToolInvocation

	DraftAnswer string
	FinalAnswer string

	// Append-only; every node contributes exactly one entry. Never consulted
	// by routing logic.
	Trace []TraceEntry

	Failure FailureKind

	// Accumulated total LLM cost (USD) across model invocations for this request.
	TotalCostUSD float64
}

// AppendTrace records one node execution.
func (s *State) AppendTrace(node, summary string) {
	s.Trace = append(s.Trace, TraceEntry{
		Node:      node,
		Timestamp: time.Now().UTC(),
		Summary:   summary,
	})
}

// Fail records an unrecoverable failure so finalize emits the safe answer.
func (s *State) Fail(kind FailureKind) {
	s.Failure = kind
}

// TraceEntry is one diagnostic record of a node execution.
type TraceEntry struct {
	Node      string    `json:"node"`
	Timestamp time.Time `json:"timestamp"`
	Summary   string    `json:"summary"`
}

// RetrievedChunk is one ranked retrieval hit handed to the answer prompt.
type RetrievedChunk struct {
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// ToolInvocation records a single handler call made by the execute_tool node.
type ToolInvocation struct {
	Tool      string            `json:"tool"`
	Arguments map[string]string `json:"arguments"`
	Result    map[string]any    `json:"result"`
}

// QueryInput represents the input for processing user requests.
type QueryInput struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
}

// Result is the full structured outcome of one request, returned to the
// presentation layer so it can render routing and debug information alongside
// the answer.
type Result struct {
	Answer           string           `json:"answer"`
	Intent           Intent           `json:"intent"`
	RetrievedContext []RetrievedChunk `json:"retrieved_context,omitempty"`
	ToolInvocations  []ToolInvocation `json:"tool_invocations,omitempty"`
	Trace            []TraceEntry     `json:"trace"`
	TotalCostUSD     float64          `json:"total_cost_usd,omitempty"`
}
