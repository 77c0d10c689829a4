package observability

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// Dispatch stage names.
const (
	StageTyping     = "typing_pause"
	StageGeneration = "generation"
	StageSynthesis  = "synthesis"
	StagePlayback   = "playback"
	StageDispatch   = "dispatch_total"
)

type StageStats struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	P99MS       float64 `json:"p99_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
}

type Indicator struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StageSnapshot struct {
	GeneratedAt time.Time    `json:"generated_at"`
	WindowSize  int          `json:"window_size"`
	Stages      []StageStats `json:"stages"`
	Indicators  []Indicator  `json:"indicators,omitempty"`
}

// StageWindow keeps the most recent observations per stage plus simple
// event counters for the ops latency endpoint.
type StageWindow struct {
	mu         sync.RWMutex
	size       int
	rings      map[string]*ring
	indicators map[string]int
}

// ring is a fixed-size sample buffer that overwrites its oldest entry.
type ring struct {
	samples []float64
	count   int
	head    int
	last    float64
}

func (r *ring) push(v float64) {
	r.samples[r.head] = v
	r.head = (r.head + 1) % len(r.samples)
	if r.count < len(r.samples) {
		r.count++
	}
	r.last = v
}

func (r *ring) sorted() []float64 {
	out := make([]float64, r.count)
	copy(out, r.samples[:r.count])
	sort.Float64s(out)
	return out
}

func NewStageWindow(maxSamples int) *StageWindow {
	if maxSamples <= 0 {
		maxSamples = 256
	}
	return &StageWindow{
		size:       maxSamples,
		rings:      make(map[string]*ring),
		indicators: make(map[string]int),
	}
}

func (w *StageWindow) Observe(stage string, ms float64) {
	if w == nil || stage == "" || ms < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	r := w.rings[stage]
	if r == nil {
		r = &ring{samples: make([]float64, w.size)}
		w.rings[stage] = r
	}
	r.push(ms)
}

// ObserveIndicator counts one occurrence of a named event.
func (w *StageWindow) ObserveIndicator(name string) {
	name = strings.TrimSpace(name)
	if w == nil || name == "" {
		return
	}
	w.mu.Lock()
	w.indicators[name]++
	w.mu.Unlock()
}

func (w *StageWindow) Snapshot() StageSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := StageSnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.size,
		Stages:      make([]StageStats, 0, len(w.rings)),
	}
	for stage, r := range w.rings {
		if r.count == 0 {
			continue
		}
		snap.Stages = append(snap.Stages, summarize(stage, r))
	}
	sort.Slice(snap.Stages, func(i, j int) bool { return snap.Stages[i].Stage < snap.Stages[j].Stage })

	for name, count := range w.indicators {
		snap.Indicators = append(snap.Indicators, Indicator{Name: name, Count: count})
	}
	sort.Slice(snap.Indicators, func(i, j int) bool { return snap.Indicators[i].Name < snap.Indicators[j].Name })
	return snap
}

func summarize(stage string, r *ring) StageStats {
	values := r.sorted()
	var sum float64
	for _, v := range values {
		sum += v
	}
	return StageStats{
		Stage:       stage,
		Samples:     len(values),
		LastMS:      round2(r.last),
		AvgMS:       round2(sum / float64(len(values))),
		P50MS:       round2(percentile(values, 50)),
		P95MS:       round2(percentile(values, 95)),
		P99MS:       round2(percentile(values, 99)),
		TargetP95MS: stageTargetP95MS(stage),
	}
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	switch n := len(sorted); {
	case n == 0:
		return 0
	case n == 1 || p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[n-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := math.Floor(rank)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + (sorted[i+1]-sorted[i])*(rank-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Rough p95 budgets per stage; zero means no target.
func stageTargetP95MS(stage string) float64 {
	switch stage {
	case StageGeneration:
		return 4000
	case StageSynthesis:
		return 2500
	case StageDispatch:
		return 12000
	default:
		return 0
	}
}
