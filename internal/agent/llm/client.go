// Package llm owns the completion-service clients. The rest of the system
// talks to completion through the Completer interface so tests can substitute
// deterministic fakes.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/hrassist-core-poc/server/internal/agent/model"
	errx "github.com/hrassist-core-poc/server/internal/core/error"
	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

// Completer is the black-box completion contract: messages in, one assistant
// message out. Implementations bound every call with a timeout.
type Completer interface {
	Complete(ctx context.Context, messages []*schema.Message) (*schema.Message, error)
}

// ModelCompleter wraps an Eino chat model with a per-call timeout and a model
// name for cost accounting.
type ModelCompleter struct {
	chatModel einomodel.BaseChatModel
	name      string
	timeout   time.Duration
}

func NewModelCompleter(chatModel einomodel.BaseChatModel, name string, timeout time.Duration) *ModelCompleter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ModelCompleter{chatModel: chatModel, name: name, timeout: timeout}
}

// ModelName returns the underlying model identifier.
func (c *ModelCompleter) ModelName() string {
	return c.name
}

// Complete runs one bounded generation. A timeout surfaces as a wrapped
// completion error, identical to any other transport failure.
func (c *ModelCompleter) Complete(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, errx.WrapCompletion(err)
	}
	if out == nil {
		return nil, errx.WrapCompletion(fmt.Errorf("model %s returned nil message", c.name))
	}
	return out, nil
}

var _ Completer = (*ModelCompleter)(nil)

// Config holds provider credentials plus the two model configurations.
type Config struct {
	APIKey     string
	BaseURL    string
	Classifier *model.ClassifierModelConfig
	Answer     *model.AnswerModelConfig
}

// Clients bundles the classifier (temperature 0) and answer completers.
type Clients struct {
	Classifier *ModelCompleter
	Answer     *ModelCompleter
}

// NewClients creates the shared Gemini client and both chat models. The genai
// client is returned as well so the embedding adapter can reuse the same
// connection and credentials.
func NewClients(ctx context.Context, cfg Config) (*Clients, *genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	classifierModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Classifier.Model,
		Temperature: &cfg.Classifier.Temperature,
		MaxTokens:   &cfg.Classifier.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating classifier model")
		return nil, nil, fmt.Errorf("error creating classifier model: %w", err)
	}

	answerModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Answer.Model,
		Temperature: &cfg.Answer.Temperature,
		MaxTokens:   &cfg.Answer.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating answer model")
		return nil, nil, fmt.Errorf("error creating answer model: %w", err)
	}

	classifierTimeout, err := time.ParseDuration(cfg.Classifier.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid classifier timeout %q: %w", cfg.Classifier.Timeout, err)
	}
	answerTimeout, err := time.ParseDuration(cfg.Answer.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid answer timeout %q: %w", cfg.Answer.Timeout, err)
	}

	return &Clients{
		Classifier: NewModelCompleter(classifierModel, cfg.Classifier.Model, classifierTimeout),
		Answer:     NewModelCompleter(answerModel, cfg.Answer.Model, answerTimeout),
	}, client, nil
}
