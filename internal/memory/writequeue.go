package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ent0n29/flightdesk/internal/reliability"
)

var ErrQueueClosed = errors.New("memory write queue closed")

// Write outcomes reported to WriteQueueConfig.Observe.
const (
	WriteSaved   = "saved"
	WriteRetried = "retried"
	WriteFailed  = "failed"
	WriteDropped = "dropped"
)

type WriteQueueConfig struct {
	Size        int
	Workers     int
	Retries     int
	Timeout     time.Duration
	BackoffBase time.Duration
	BackoffCap  time.Duration
	Observe     func(result string)
}

// WriteQueue persists turns off the request path. Each batch (usually the
// user turn and the assistant reply) is embedded and saved in parallel; failed
// saves are retried with backoff. IDs are fixed at enqueue time so a retried
// insert cannot duplicate a turn.
type WriteQueue struct {
	store    Store
	embedder Embedder
	log      logrus.FieldLogger
	cfg      WriteQueueConfig

	mu     sync.RWMutex
	closed bool
	jobs   chan []Turn
	wg     sync.WaitGroup
}

func NewWriteQueue(store Store, embedder Embedder, log logrus.FieldLogger, cfg WriteQueueConfig) *WriteQueue {
	if cfg.Size <= 0 {
		cfg.Size = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 200 * time.Millisecond
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = 2 * time.Second
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	q := &WriteQueue{
		store:    store,
		embedder: embedder,
		log:      log,
		cfg:      cfg,
		jobs:     make(chan []Turn, cfg.Size),
	}
	for i := 0; i < cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue schedules turns for persistence without blocking. It returns an
// error when the queue is full or closed.
func (q *WriteQueue) Enqueue(turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	batch := make([]Turn, len(turns))
	now := time.Now().UTC()
	for i, t := range turns {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt.IsZero() {
			// Nanosecond offset preserves batch order for same-instant writes.
			t.CreatedAt = now.Add(time.Duration(i))
		}
		batch[i] = t
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- batch:
		return nil
	default:
		q.observe(WriteDropped)
		return errors.New("memory write queue full")
	}
}

// Close stops intake and waits for queued batches to drain or ctx to end.
func (q *WriteQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *WriteQueue) worker() {
	defer q.wg.Done()
	for batch := range q.jobs {
		q.persist(batch)
	}
}

func (q *WriteQueue) persist(batch []Turn) {
	if q.embedder != nil {
		for i := range batch {
			if len(batch[i].Embedding) == 0 {
				batch[i].Embedding = q.embedder.Embed(context.Background(), batch[i].Text)
			}
		}
	}

	pending := batch
	for attempt := 0; attempt <= q.cfg.Retries; attempt++ {
		if attempt > 0 {
			q.observe(WriteRetried)
			_ = reliability.Sleep(context.Background(), reliability.ExponentialBackoff(attempt-1, q.cfg.BackoffBase, q.cfg.BackoffCap))
		}
		pending = q.saveAll(pending)
		if len(pending) == 0 {
			return
		}
	}

	for _, t := range pending {
		q.observe(WriteFailed)
		q.log.WithFields(logrus.Fields{
			"turn_id":         t.ID,
			"conversation_id": t.ConversationID,
			"role":            t.Role,
		}).Warn("memory write failed after retries")
	}
}

// saveAll writes turns concurrently and returns the ones that failed.
func (q *WriteQueue) saveAll(turns []Turn) []Turn {
	failed := make([]bool, len(turns))
	var g errgroup.Group
	for i := range turns {
		i := i
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), q.cfg.Timeout)
			defer cancel()
			if err := q.store.SaveTurn(ctx, turns[i]); err != nil {
				failed[i] = true
				q.log.WithError(err).WithField("turn_id", turns[i].ID).Debug("memory write attempt failed")
				return err
			}
			q.observe(WriteSaved)
			return nil
		})
	}
	_ = g.Wait()

	var out []Turn
	for i, f := range failed {
		if f {
			out = append(out, turns[i])
		}
	}
	return out
}

func (q *WriteQueue) observe(result string) {
	if q.cfg.Observe != nil {
		q.cfg.Observe(result)
	}
}
