// Package llm wraps the language model used for intent classification, slot
// extraction and free-form replies.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind names the task a completion serves. Offline clients key their behaviour
// off it.
type Kind string

const (
	KindIntent  Kind = "intent"
	KindExtract Kind = "extract"
	KindChat    Kind = "chat"
)

// Request is a single prompt/response exchange.
type Request struct {
	Kind        Kind
	System      string
	Prompt      string
	// Input is the raw user message the prompt was rendered around.
	Input       string
	JSON        bool
	Temperature float32
	MaxTokens   int
}

// Client completes prompts.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrEmptyCompletion is returned when the model answered with no choices.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Config controls client construction. Offline is served in "mock" mode and
// in "auto" mode when no key is set.
type Config struct {
	Mode    string
	APIKey  string
	BaseURL string
	Model   string
	Offline Client
}

// NewClient builds a client for cfg.Mode: "openai" requires a key, "mock"
// returns cfg.Offline, and "auto" picks openai when a key is present.
func NewClient(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return offline(cfg)
		}
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("OPENAI_API_KEY is required for openai mode")
		}
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "mock":
		return offline(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm mode %q", cfg.Mode)
	}
}

func offline(cfg Config) (Client, error) {
	if cfg.Offline == nil {
		return nil, errors.New("no offline llm client configured")
	}
	return cfg.Offline, nil
}
