package nodes

import (
	"context"

	"github.com/hrassist-core-poc/server/internal/agent/model"
	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

// Graph node identifiers. The graph is a fixed DAG: classify is the entry,
// finalize the single convergence point for all three specialized nodes.
const (
	NodeClassify          = "classify"
	NodeRetrieveAndAnswer = "retrieve_and_answer"
	NodeExecuteTool       = "execute_tool"
	NodeRefuse            = "refuse"
	NodeFinalize          = "finalize"
)

// RouteFor is the routing decision: a pure function of intent to the next
// node identifier. No hidden state, no fallthrough to anything but refuse.
func RouteFor(in model.Intent) string {
	switch in {
	case model.IntentPolicyQuery:
		return NodeRetrieveAndAnswer
	case model.IntentActionRequest:
		return NodeExecuteTool
	default:
		return NodeRefuse
	}
}

// NewRoutingCondition creates the condition function for the single branch
// point after classify.
func NewRoutingCondition() func(context.Context, model.Intent) (string, error) {
	return func(ctx context.Context, in model.Intent) (string, error) {
		next := RouteFor(in)
		logx.Debug().Str("intent", in.String()).Str("next", next).Msg("routing decision")
		return next, nil
	}
}
