package observability

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// Turn stages observed by the orchestrator.
const (
	StageMemoryRetrieve = "memory_retrieve"
	StageStateLoad      = "state_load"
	StageRecovery       = "recovery"
	StageClassify       = "classify"
	StageHandler        = "handler"
	StageTurnTotal      = "turn_total"
)

// Indicators counted per turn alongside the stage timings.
const (
	IndicatorClassifierFallback = "classifier_fallback"
	IndicatorStateCreated       = "state_created"
	IndicatorStateRecovered     = "state_recovered"
	IndicatorHistoryUnavailable = "history_unavailable"
)

// p95 budgets in milliseconds; stages not listed have no target.
var stageTargetsMS = map[string]float64{
	StageMemoryRetrieve: 300,
	StageStateLoad:      50,
	StageRecovery:       5,
	StageClassify:       2500,
	StageHandler:        4000,
	StageTurnTotal:      7000,
}

type TurnStageStats struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	MaxMS       float64 `json:"max_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
	OverTarget  bool    `json:"over_target,omitempty"`
}

type TurnIndicator struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TurnStageSnapshot is the body served by the latency endpoint.
type TurnStageSnapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	WindowSize  int              `json:"window_size"`
	Stages      []TurnStageStats `json:"stages"`
	Indicators  []TurnIndicator  `json:"indicators,omitempty"`
}

// sampleRing keeps the newest len(buf) samples of one stage.
type sampleRing struct {
	buf  []float64
	pos  int
	size int
	last float64
}

func (r *sampleRing) push(v float64) {
	r.buf[r.pos] = v
	r.pos = (r.pos + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
	r.last = v
}

func (r *sampleRing) sorted() []float64 {
	out := append([]float64(nil), r.buf[:r.size]...)
	sort.Float64s(out)
	return out
}

type turnStageWindow struct {
	mu     sync.Mutex
	size   int
	rings  map[string]*sampleRing
	counts map[string]int
}

func newTurnStageWindow(size int) *turnStageWindow {
	if size <= 0 {
		size = 256
	}
	return &turnStageWindow{
		size:   size,
		rings:  make(map[string]*sampleRing),
		counts: make(map[string]int),
	}
}

func (w *turnStageWindow) Observe(stage string, ms float64) {
	if stage == "" || ms < 0 || math.IsNaN(ms) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	r := w.rings[stage]
	if r == nil {
		r = &sampleRing{buf: make([]float64, w.size)}
		w.rings[stage] = r
	}
	r.push(ms)
}

func (w *turnStageWindow) ObserveIndicator(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	w.mu.Lock()
	w.counts[name]++
	w.mu.Unlock()
}

func (w *turnStageWindow) Snapshot() TurnStageSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := TurnStageSnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.size,
		Stages:      make([]TurnStageStats, 0, len(w.rings)),
	}
	for stage, r := range w.rings {
		if r.size == 0 {
			continue
		}
		samples := r.sorted()
		var sum float64
		for _, v := range samples {
			sum += v
		}
		stats := TurnStageStats{
			Stage:       stage,
			Samples:     len(samples),
			LastMS:      round2(r.last),
			AvgMS:       round2(sum / float64(len(samples))),
			P50MS:       round2(nearestRank(samples, 0.50)),
			P95MS:       round2(nearestRank(samples, 0.95)),
			MaxMS:       round2(samples[len(samples)-1]),
			TargetP95MS: stageTargetsMS[stage],
		}
		stats.OverTarget = stats.TargetP95MS > 0 && stats.P95MS > stats.TargetP95MS
		snap.Stages = append(snap.Stages, stats)
	}
	sort.Slice(snap.Stages, func(i, j int) bool { return snap.Stages[i].Stage < snap.Stages[j].Stage })

	for name, count := range w.counts {
		snap.Indicators = append(snap.Indicators, TurnIndicator{Name: name, Count: count})
	}
	sort.Slice(snap.Indicators, func(i, j int) bool { return snap.Indicators[i].Name < snap.Indicators[j].Name })
	return snap
}

func (w *turnStageWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rings = make(map[string]*sampleRing)
	w.counts = make(map[string]int)
}

// nearestRank expects sorted input with at least one sample.
func nearestRank(sorted []float64, q float64) float64 {
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
