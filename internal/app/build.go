// Package app assembles the service from configuration.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ent0n29/flightdesk/internal/agent"
	"github.com/ent0n29/flightdesk/internal/booking"
	"github.com/ent0n29/flightdesk/internal/config"
	"github.com/ent0n29/flightdesk/internal/conversation"
	"github.com/ent0n29/flightdesk/internal/embedding"
	"github.com/ent0n29/flightdesk/internal/httpapi"
	"github.com/ent0n29/flightdesk/internal/intent"
	"github.com/ent0n29/flightdesk/internal/inventory"
	"github.com/ent0n29/flightdesk/internal/llm"
	"github.com/ent0n29/flightdesk/internal/llm/offline"
	"github.com/ent0n29/flightdesk/internal/memory"
	"github.com/ent0n29/flightdesk/internal/observability"
	"github.com/ent0n29/flightdesk/internal/session"
)

type BuildResult struct {
	Config       config.Config
	API          *httpapi.Server
	Sessions     *session.Manager
	Orchestrator *agent.Orchestrator
	Metrics      *observability.Metrics

	// Cleanup should be called on shutdown to flush the memory queue and
	// release external resources.
	Cleanup func(ctx context.Context) error
}

func Build(ctx context.Context, cfg config.Config, log *logrus.Logger) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	var closers []func() error
	fail := func(err error) (*BuildResult, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	client, err := llm.NewClient(llm.Config{
		Mode:    cfg.LLMProvider,
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Offline: offline.New(),
	})
	if err != nil {
		return fail(fmt.Errorf("llm client init failed: %w", err))
	}
	prompts := llm.DefaultCatalogue()
	if cfg.PromptsPath != "" {
		prompts, err = llm.LoadCatalogue(cfg.PromptsPath)
		if err != nil {
			return fail(fmt.Errorf("prompt catalogue load failed: %w", err))
		}
	}

	embedder, err := embedding.New(embedding.Config{
		Mode:       cfg.LLMProvider,
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.OpenAIEmbeddingModel,
		Dim:        cfg.EmbeddingDim,
		RatePerSec: cfg.EmbeddingRatePerSec,
	}, log)
	if err != nil {
		return fail(fmt.Errorf("embedder init failed: %w", err))
	}

	memoryStore, err := memory.NewStore(ctx, cfg.DatabaseURL, cfg.EmbeddingDim)
	if err != nil {
		return fail(fmt.Errorf("memory store init failed: %w", err))
	}
	closers = append(closers, memoryStore.Close)

	states, err := conversation.NewStore(ctx, cfg.RedisURL, cfg.ConversationTTL)
	if err != nil {
		return fail(fmt.Errorf("conversation store init failed: %w", err))
	}
	closers = append(closers, states.Close)
	if cache, ok := states.(*conversation.CacheStore); ok {
		cache.OnEvicted(func(id string) {
			log.WithField("conversation_id", id).Debug("conversation state evicted")
		})
	}

	backend, err := buildBackend(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	if c, ok := backend.(interface{ Close() error }); ok {
		closers = append(closers, c.Close)
	}

	sessions := session.NewManager(cfg.ConversationTTL)
	sessions.SetExpireHook(func(c *session.Conversation) {
		metrics.ConversationEvents.WithLabelValues("expired").Inc()
		metrics.ActiveConversations.Set(float64(sessions.ActiveCount()))
		log.WithField("conversation_id", c.ID).Debug("conversation expired")
	})

	writer := memory.NewWriteQueue(memoryStore, embedder, log, memory.WriteQueueConfig{
		Size:    cfg.MemoryWriteQueueSize,
		Retries: cfg.MemoryWriteRetries,
		Observe: metrics.ObserveMemoryWrite,
	})
	retriever := memory.NewRetriever(memoryStore, embedder)

	handlers := agent.NewHandlers(agent.HandlersConfig{
		Backend:  backend,
		LLM:      client,
		Prompts:  prompts,
		USDToINR: cfg.USDToINRRate,
		Metrics:  metrics,
		Log:      log,
	})
	orchestrator := agent.NewOrchestrator(agent.Deps{
		Sessions:     sessions,
		States:       states,
		Retriever:    retriever,
		Writer:       writer,
		Classifier:   intent.NewClassifier(client, prompts, log),
		Router:       handlers.Router(),
		Metrics:      metrics,
		Log:          log,
		ContextLimit: cfg.MemoryContextLimit,
	})

	api := httpapi.New(cfg, httpapi.Deps{
		Sessions:  sessions,
		Chat:      orchestrator,
		Backend:   backend,
		Memory:    memoryStore,
		Embedder:  embedder,
		Retriever: retriever,
		Metrics:   metrics,
		Log:       log,
	})

	cleanup := func(ctx context.Context) error {
		var errs []string
		if err := writer.Close(ctx); err != nil {
			errs = append(errs, err.Error())
		}
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err.Error())
			}
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	log.WithFields(logrus.Fields{
		"llm_provider": cfg.LLMProvider,
		"backend_mode": cfg.BackendMode,
		"memory_store": storeKind(cfg.DatabaseURL, "postgres"),
		"state_store":  storeKind(cfg.RedisURL, "redis"),
	}).Info("service assembled")

	return &BuildResult{
		Config:       cfg,
		API:          api,
		Sessions:     sessions,
		Orchestrator: orchestrator,
		Metrics:      metrics,
		Cleanup:      cleanup,
	}, nil
}

// buildBackend selects the in-process inventory or a remote booking service.
func buildBackend(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (booking.Backend, error) {
	switch cfg.BackendMode {
	case "http":
		return booking.NewHTTPClient(cfg.BackendURL, booking.DefaultTimeouts()), nil
	default:
		store, err := inventory.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("inventory store init failed: %w", err)
		}
		return &localBackend{
			Service: inventory.NewService(store, inventory.NewMockGenerator(), cfg.USDToINRRate, log),
			store:   store,
		}, nil
	}
}

// localBackend ties the inventory store lifetime to the service using it.
type localBackend struct {
	*inventory.Service
	store inventory.Store
}

func (b *localBackend) Close() error { return b.store.Close() }

func storeKind(dsn, durable string) string {
	if strings.TrimSpace(dsn) == "" {
		return "in-memory"
	}
	return durable
}
