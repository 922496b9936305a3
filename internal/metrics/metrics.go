// Package metrics provides the counters, gauges and histograms kept by the
// repeat engine, with Prometheus text and JSON output.
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// metric is anything a Registry can export.
type metric interface {
	writePrometheus(b *strings.Builder)
	snapshot(out map[string]float64)
}

type desc struct {
	name string
	help string
}

func (d desc) header(b *strings.Builder, kind string) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s %s\n", d.name, d.help, d.name, kind)
}

// Counter is a monotonically increasing count.
type Counter struct {
	desc
	value atomic.Uint64
}

func (c *Counter) Inc()          { c.value.Add(1) }
func (c *Counter) Value() uint64 { return c.value.Load() }

func (c *Counter) writePrometheus(b *strings.Builder) {
	c.header(b, "counter")
	fmt.Fprintf(b, "%s %d\n", c.name, c.Value())
}

func (c *Counter) snapshot(out map[string]float64) { out[c.name] = float64(c.Value()) }

// Gauge is a value that is set rather than counted.
type Gauge struct {
	desc
	value atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.value.Store(v) }
func (g *Gauge) Value() int64 { return g.value.Load() }

func (g *Gauge) writePrometheus(b *strings.Builder) {
	g.header(b, "gauge")
	fmt.Fprintf(b, "%s %d\n", g.name, g.Value())
}

func (g *Gauge) snapshot(out map[string]float64) { out[g.name] = float64(g.Value()) }

// DurationBuckets are the default histogram bounds, in seconds.
var DurationBuckets = []float64{
	0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// Histogram counts observations into upper-bounded buckets.
type Histogram struct {
	desc
	bounds []float64

	mu     sync.Mutex
	counts []uint64 // len(bounds)+1; the last is +Inf
	sum    float64
	n      uint64
}

func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	h.counts[sort.SearchFloat64s(h.bounds, v)]++
	h.sum += v
	h.n++
	h.mu.Unlock()
}

// Since records the time elapsed since start and returns it.
func (h *Histogram) Since(start time.Time) time.Duration {
	d := time.Since(start)
	h.Observe(d.Seconds())
	return d
}

func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

func (h *Histogram) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.n == 0 {
		return 0
	}
	return h.sum / float64(h.n)
}

func (h *Histogram) writePrometheus(b *strings.Builder) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.header(b, "histogram")
	var acc uint64
	for i, c := range h.counts {
		acc += c
		le := "+Inf"
		if i < len(h.bounds) {
			le = fmt.Sprintf("%g", h.bounds[i])
		}
		fmt.Fprintf(b, "%s_bucket{le=%q} %d\n", h.name, le, acc)
	}
	fmt.Fprintf(b, "%s_sum %g\n%s_count %d\n", h.name, h.sum, h.name, h.n)
}

func (h *Histogram) snapshot(out map[string]float64) {
	out[h.name+"_count"] = float64(h.Count())
	out[h.name+"_mean"] = h.Mean()
}

// Registry holds metrics by name.
type Registry struct {
	namespace string

	mu      sync.RWMutex
	metrics map[string]metric
}

// NewRegistry creates a registry whose metric names are prefixed with
// namespace.
func NewRegistry(namespace string) *Registry {
	return &Registry{namespace: namespace, metrics: make(map[string]metric)}
}

func (r *Registry) desc(name, help string) desc {
	if r.namespace != "" {
		name = r.namespace + "_" + name
	}
	return desc{name: name, help: help}
}

// register returns the metric already registered under d.name, or stores
// and returns m. It panics if the existing metric has a different type.
func register[M metric](r *Registry, d desc, m M) M {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.metrics[d.name]; ok {
		return old.(M)
	}
	r.metrics[d.name] = m
	return m
}

// Counter registers a counter, or returns the existing one of that name.
func (r *Registry) Counter(name, help string) *Counter {
	d := r.desc(name, help)
	return register(r, d, &Counter{desc: d})
}

// Gauge registers a gauge, or returns the existing one of that name.
func (r *Registry) Gauge(name, help string) *Gauge {
	d := r.desc(name, help)
	return register(r, d, &Gauge{desc: d})
}

// Histogram registers a histogram with the given bucket bounds, or returns
// the existing one of that name. Nil bounds means DurationBuckets.
func (r *Registry) Histogram(name, help string, bounds []float64) *Histogram {
	if bounds == nil {
		bounds = DurationBuckets
	}
	sorted := append([]float64(nil), bounds...)
	sort.Float64s(sorted)

	d := r.desc(name, help)
	return register(r, d, &Histogram{desc: d, bounds: sorted, counts: make([]uint64, len(sorted)+1)})
}

func (r *Registry) sorted() []metric {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]metric, len(names))
	for i, name := range names {
		out[i] = r.metrics[name]
	}
	return out
}

// WritePrometheus writes every metric in the Prometheus text format, sorted
// by name.
func (r *Registry) WritePrometheus(w io.Writer) error {
	var b strings.Builder
	for _, m := range r.sorted() {
		m.writePrometheus(&b)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Snapshot returns current values keyed by metric name. Histograms
// contribute _count and _mean entries.
func (r *Registry) Snapshot() map[string]float64 {
	out := make(map[string]float64)
	for _, m := range r.sorted() {
		m.snapshot(out)
	}
	return out
}

// WriteJSON writes Snapshot as indented JSON.
func (r *Registry) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Snapshot())
}
