// Package embedding produces text vectors for memory relevance ranking.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ent0n29/flightdesk/internal/reliability"
)

const maxInputChars = 500

// Config controls embedder construction.
type Config struct {
	Mode       string // auto|openai|mock
	APIKey     string
	BaseURL    string
	Model      string
	Dim        int
	RatePerSec float64
	Timeout    time.Duration
	Attempts   int
}

// Embedder is satisfied by every implementation in this package.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
	Dim() int
}

// New selects an embedder. auto uses OpenAI when a key is present and the
// local hashing embedder otherwise.
func New(cfg Config, log logrus.FieldLogger) (Embedder, error) {
	if cfg.Dim <= 0 {
		cfg.Dim = 768
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}
	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return NewHashEmbedder(cfg.Dim), nil
		}
		return NewOpenAIEmbedder(cfg, log), nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("OPENAI_API_KEY is required for openai embeddings")
		}
		return NewOpenAIEmbedder(cfg, log), nil
	case "mock":
		return NewHashEmbedder(cfg.Dim), nil
	default:
		return nil, fmt.Errorf("unsupported embedding mode %q", cfg.Mode)
	}
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint. Rate limits
// and timeouts are retried with exponential backoff; every other failure, and
// exhausting the retries, yields a zero vector.
type OpenAIEmbedder struct {
	client   *openai.Client
	model    string
	dim      int
	timeout  time.Duration
	attempts int
	limiter  *rate.Limiter
	log      logrus.FieldLogger
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewOpenAIEmbedder(cfg Config, log logrus.FieldLogger) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	burst := int(math.Ceil(cfg.RatePerSec))
	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		dim:      cfg.Dim,
		timeout:  cfg.Timeout,
		attempts: cfg.Attempts,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst),
		log:      log,
		sleep:    reliability.Sleep,
	}
}

func (e *OpenAIEmbedder) Dim() int { return e.dim }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) []float32 {
	text = truncate(strings.TrimSpace(text), maxInputChars)
	if text == "" {
		return make([]float32, e.dim)
	}

	for attempt := 0; attempt < e.attempts; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return make([]float32, e.dim)
		}
		vec, err := e.embedOnce(ctx, text)
		if err == nil {
			return fitDim(vec, e.dim)
		}

		var wait time.Duration
		switch {
		case isRateLimited(err):
			wait = reliability.ExponentialBackoff(attempt+1, time.Second, 8*time.Second)
		case reliability.IsTimeout(err):
			wait = reliability.ExponentialBackoff(attempt, time.Second, 4*time.Second)
		default:
			e.log.WithError(err).Warn("embedding request failed")
			return make([]float32, e.dim)
		}
		if attempt == e.attempts-1 {
			break
		}
		e.log.WithFields(logrus.Fields{"attempt": attempt + 1, "wait": wait.String()}).Debug("embedding retry")
		if err := e.sleep(ctx, wait); err != nil {
			break
		}
	}
	e.log.Warn("embedding retries exhausted, using zero vector")
	return make([]float32, e.dim)
}

func (e *OpenAIEmbedder) embedOnce(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response had no data")
	}
	return resp.Data[0].Embedding, nil
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429
	}
	return false
}

// HashEmbedder is a deterministic bag-of-words embedder used when no
// embeddings API is configured. Vectors are L2-normalised.
type HashEmbedder struct {
	dim int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 768
	}
	return &HashEmbedder{dim: dim}
}

func (h *HashEmbedder) Dim() int { return h.dim }

func (h *HashEmbedder) Embed(_ context.Context, text string) []float32 {
	vec := make([]float32, h.dim)
	text = truncate(strings.ToLower(text), maxInputChars)
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '@' || r == '_')
	}) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(tok))
		sum := f.Sum32()
		idx := int(sum % uint32(h.dim))
		if sum&(1<<31) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return vec
	}
	n := float32(math.Sqrt(norm))
	for i := range vec {
		vec[i] /= n
	}
	return vec
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func fitDim(v []float32, dim int) []float32 {
	if len(v) == dim {
		return v
	}
	out := make([]float32, dim)
	copy(out, v)
	return out
}
