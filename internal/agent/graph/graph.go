package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/hrassist-core-poc/server/internal/agent/graph/conversations"
	"github.com/hrassist-core-poc/server/internal/agent/graph/nodes"
	"github.com/hrassist-core-poc/server/internal/agent/graph/observers"
	"github.com/hrassist-core-poc/server/internal/agent/graph/tools"
	"github.com/hrassist-core-poc/server/internal/agent/llm"
	"github.com/hrassist-core-poc/server/internal/agent/model"
	"github.com/hrassist-core-poc/server/internal/retrieval"
	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

// maxRunSteps bounds a single request traversal. The graph is acyclic
// (classify, one specialist, finalize) so this only guards against
// composition mistakes, never legitimate runs.
const maxRunSteps = 10

// Runner executes the compiled workflow for one request.
type Runner interface {
	Process(ctx context.Context, in model.QueryInput) (*model.Result, error)
}

// Config holds everything needed to compose the full workflow graph.
type Config struct {
	Classifier          llm.Completer
	ClassifierModelName string
	Answer              llm.Completer
	AnswerModelName     string
	Retrieval           *retrieval.Engine
	ConversationRepo    model.ConversationRepository
	Conversation        model.ConversationConfig
}

// GraphBuilder handles the construction of the workflow graph.
type GraphBuilder struct {
	config *Config
	mm     *conversations.MessagesManager
	graph  *compose.Graph[model.QueryInput, *model.Result]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.Result]
}

func (r *graphRunner) Process(ctx context.Context, in model.QueryInput) (*model.Result, error) {
	return r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
}

// BuildFromClients composes the workflow graph from pre-built model clients.
func BuildFromClients(ctx context.Context, clients *llm.Clients, engine *retrieval.Engine, repo model.ConversationRepository, conv model.ConversationConfig) (Runner, error) {
	if clients == nil {
		return nil, fmt.Errorf("model clients are nil")
	}
	return BuildWorkflowGraph(ctx, &Config{
		Classifier:          clients.Classifier,
		ClassifierModelName: clients.Classifier.ModelName(),
		Answer:              clients.Answer,
		AnswerModelName:     clients.Answer.ModelName(),
		Retrieval:           engine,
		ConversationRepo:    repo,
		Conversation:        conv,
	})
}

// BuildWorkflowGraph constructs and compiles the request workflow:
// classify routes each request to exactly one of the three specialists,
// and every path converges on finalize.
func BuildWorkflowGraph(ctx context.Context, config *Config) (Runner, error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Classifier == nil || config.Answer == nil {
		return nil, fmt.Errorf("model completers are not properly initialized")
	}
	if config.Retrieval == nil {
		return nil, fmt.Errorf("retrieval engine is nil")
	}
	if config.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}

	builder := &GraphBuilder{
		config: config,
		mm:     conversations.NewMessagesManager(config.ConversationRepo, config.Conversation),
		graph: compose.NewGraph[model.QueryInput, *model.Result](
			compose.WithGenLocalState(func(ctx context.Context) *model.State {
				return &model.State{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranch(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeClassify,
		nodes.NewClassifyNode(b.config.Classifier, b.config.ClassifierModelName, b.mm),
		compose.WithStatePreHandler(nodes.NewClassifyPreHandler()),
		compose.WithStatePostHandler(nodes.NewClassifyPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeRetrieveAndAnswer,
		nodes.NewRetrieveNode(b.config.Retrieval, b.config.Answer, b.config.AnswerModelName, b.mm),
	)

	b.graph.AddLambdaNode(nodes.NodeExecuteTool,
		tools.NewExecuteToolNode(b.config.Answer, b.config.AnswerModelName),
	)

	b.graph.AddLambdaNode(nodes.NodeRefuse,
		nodes.NewRefuseNode(),
	)

	b.graph.AddLambdaNode(nodes.NodeFinalize,
		nodes.NewFinalizeNode(b.mm),
	)
}

func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeClassify},
		{nodes.NodeRetrieveAndAnswer, nodes.NodeFinalize},
		{nodes.NodeExecuteTool, nodes.NodeFinalize},
		{nodes.NodeRefuse, nodes.NodeFinalize},
		{nodes.NodeFinalize, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

func (b *GraphBuilder) addBranch() error {
	routing := compose.NewGraphBranch(
		nodes.NewRoutingCondition(),
		map[string]bool{
			nodes.NodeRetrieveAndAnswer: true,
			nodes.NodeExecuteTool:       true,
			nodes.NodeRefuse:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeClassify, routing); err != nil {
		logx.Error().Err(err).Msg("Error adding intent routing branch")
		return fmt.Errorf("error adding intent routing branch: %w", err)
	}
	return nil
}

func (b *GraphBuilder) compile(ctx context.Context) (Runner, error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Workflow graph compiled successfully")
	return &graphRunner{runnable: runnable}, nil
}
