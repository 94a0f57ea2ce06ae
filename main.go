package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hrassist-core-poc/server/internal/agent/graph"
	"github.com/hrassist-core-poc/server/internal/agent/llm"
	"github.com/hrassist-core-poc/server/internal/agent/model"
	"github.com/hrassist-core-poc/server/internal/agent/repo"
	"github.com/hrassist-core-poc/server/internal/core"
	"github.com/hrassist-core-poc/server/internal/corpus"
	"github.com/hrassist-core-poc/server/internal/retrieval"
	logx "github.com/hrassist-core-poc/server/pkg/logger"
	pkgredis "github.com/hrassist-core-poc/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Assistant configs
	Classifier   model.ClassifierModelConfig
	Answer       model.AnswerModelConfig
	Retrieval    model.RetrievalConfig
	Conversation model.ConversationConfig
	Corpus       model.CorpusConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.FromEnv()})

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", envCfg.Conversation.TTL, err)
	}
	embedTimeout, err := time.ParseDuration(envCfg.Retrieval.Timeout)
	if err != nil {
		log.Fatalf("Invalid EMBEDDING_TIMEOUT '%s': %v", envCfg.Retrieval.Timeout, err)
	}

	// Policy corpus must be complete before the assistant can serve anything.
	docs, err := corpus.Load(envCfg.Corpus.DocsDir, corpus.RequiredPolicies)
	if err != nil {
		log.Fatalf("Failed to load policy corpus: %v", err)
	}
	logx.Info().Int("documents", len(docs)).Str("dir", envCfg.Corpus.DocsDir).Msg("policy corpus loaded")

	clients, genaiClient, err := llm.NewClients(ctx, llm.Config{
		APIKey:     envCfg.APIKey,
		BaseURL:    envCfg.BaseURL,
		Classifier: &envCfg.Classifier,
		Answer:     &envCfg.Answer,
	})
	if err != nil {
		log.Fatalf("Failed to initialise model clients: %v", err)
	}

	engine, err := retrieval.NewEngine(
		retrieval.NewGeminiEmbedder(genaiClient, envCfg.Retrieval.EmbeddingModel),
		retrieval.Options{
			ChunkSize:    envCfg.Retrieval.ChunkSize,
			ChunkOverlap: envCfg.Retrieval.ChunkOverlap,
			TopK:         envCfg.Retrieval.TopK,
			Timeout:      embedTimeout,
		},
	)
	if err != nil {
		log.Fatalf("Failed to create retrieval engine: %v", err)
	}

	indexDocs := make([]retrieval.Document, 0, len(docs))
	for _, d := range docs {
		indexDocs = append(indexDocs, retrieval.Document{Title: d.Title, Text: d.Text})
	}
	if err := engine.Rebuild(ctx, indexDocs); err != nil {
		log.Fatalf("Failed to build retrieval index: %v", err)
	}
	logx.Info().Int("chunks", engine.Index().Len()).Msg("retrieval index ready")

	var conversationRepo model.ConversationRepository
	if envCfg.Redis.Enabled() {
		rdb, err := envCfg.Redis.New(ctx)
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()
		conversationRepo = repo.NewRedisConversationRepository(rdb, ttl)
		logx.Info().Msg("using Redis conversation storage")
	} else {
		conversationRepo = repo.NewMemoryConversationRepository(ttl)
		logx.Info().Msg("REDIS_URL not set, using in-memory conversation storage")
	}

	runner, err := graph.BuildFromClients(ctx, clients, engine, conversationRepo, envCfg.Conversation)
	if err != nil {
		log.Fatalf("Failed to build workflow graph: %v", err)
	}

	testQueries := []struct {
		description string
		query       string
	}{
		{
			description: "Policy question grounded in the corpus",
			query:       "What is the password policy?",
		},
		{
			description: "Tool-backed action request",
			query:       "Check my leave balance for EMP001",
		},
		{
			description: "Out-of-scope request",
			query:       "Book flight tickets to Berlin for next Monday",
		},
	}

	conversationID := "demo-conversation-1"

	for i, test := range testQueries {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Query: %q\n", test.query)

		result, err := runner.Process(ctx, model.QueryInput{
			ConversationID: conversationID,
			Query:          test.query,
		})
		if err != nil {
			log.Fatalf("Failed to process query %d: %v", i+1, err)
		}

		fmt.Printf("Intent: %s\n", result.Intent)
		fmt.Printf("Answer: %s\n", result.Answer)
		if len(result.RetrievedContext) > 0 {
			fmt.Printf("Grounded on %d chunk(s)\n", len(result.RetrievedContext))
		}
		for _, inv := range result.ToolInvocations {
			fmt.Printf("Tool invoked: %s %v\n", inv.Tool, inv.Arguments)
		}
		fmt.Printf("Cost so far: $%.6f\n", result.TotalCostUSD)
		fmt.Println("────────────────────────────────────────────")

		time.Sleep(500 * time.Millisecond)
	}
}
