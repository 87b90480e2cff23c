package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/fathomline/taxa/internal/tags"
	"github.com/fathomline/taxa/pkg/formatting"
	"github.com/fathomline/taxa/pkg/retry"
)

// Invoker performs the model call behind classification.
type Invoker interface {
	// Invoke classifies document text against the index, returning the
	// typed raw output. Transport errors and malformed responses are
	// retried internally; the returned error is terminal.
	Invoke(ctx context.Context, text string, idx *tags.Index) (*RawOutput, error)
	// Model identifies the model serving the calls.
	Model() string
}

// Service invokes the classification model with a bounded retry loop.
type Service struct {
	agent  gaconfig.AgentConfig
	policy retry.Policy
	logger *slog.Logger
}

// NewService creates a classification service over the given agent
// configuration. Defaults: 3 attempts with 2s, 4s backoff.
func NewService(cfg gaconfig.AgentConfig, logger *slog.Logger) *Service {
	return &Service{
		agent: cfg,
		policy: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
		},
		logger: logger.With("system", "classify"),
	}
}

func (s *Service) Invoke(ctx context.Context, text string, idx *tags.Index) (*RawOutput, error) {
	prompt, err := BuildPrompt(text, idx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	var raw RawOutput

	err = s.policy.Do(ctx, func() error {
		a, err := agent.New(&s.agent)
		if err != nil {
			return fmt.Errorf("create agent: %w", err)
		}

		resp, err := a.Chat(ctx, prompt)
		if err != nil {
			return fmt.Errorf("chat call: %w", err)
		}

		parsed, err := formatting.Parse[RawOutput](resp.Content())
		if err != nil {
			return fmt.Errorf("parse response: %w", err)
		}

		raw = parsed
		return nil
	})
	if err != nil {
		s.logger.Error("classification exhausted retries", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	return &raw, nil
}

func (s *Service) Model() string {
	if s.agent.Model != nil {
		return s.agent.Model.Name
	}
	return ""
}
