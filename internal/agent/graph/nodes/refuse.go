package nodes

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/hrassist-core-poc/server/internal/agent/model"
)

// RefusalMessage is the fixed safe answer for requests outside the
// assistant's scope. Tests and the presentation layer rely on it verbatim.
const RefusalMessage = `I'm only able to assist with HR policies and specific HR actions like creating tickets or checking leave balance.

For HR policy questions, you can ask about:
- Leave policies (annual, sick, parental)
- Remote work policies
- Expense reimbursement
- IT security and password policies
- Code of conduct

For HR actions, you can:
- Check your leave balance (requires employee ID)
- Create an HR support ticket`

// NewRefuseNode creates the refuse node for UNKNOWN intents. No external
// calls, no retrieval, no tools: just the fixed scope statement.
func NewRefuseNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ model.Intent) (string, error) {
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.State) error {
			s.DraftAnswer = RefusalMessage
			s.AppendTrace(NodeRefuse, "out-of-scope request refused")
			return nil
		}); err != nil {
			return "", err
		}
		return RefusalMessage, nil
	})
}
