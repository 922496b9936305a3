package metrics

// Repeater holds the repeat engine's metrics.
type Repeater struct {
	registry *Registry

	Runs             *Counter
	AbortedRuns      *Counter
	Cycles           *Counter
	SkippedRounds    *Counter
	KeysSent         *Counter
	DispatchFailures *Counter

	Running      *Gauge
	SelectedKeys *Gauge

	CycleDuration *Histogram
}

// NewRepeater registers the repeat engine metrics in registry. A nil
// registry gets a private one.
func NewRepeater(registry *Registry) *Repeater {
	if registry == nil {
		registry = NewRegistry("keyrepeat")
	}
	return &Repeater{
		registry: registry,

		Runs:             registry.Counter("runs_total", "Times the repeat engine was started"),
		AbortedRuns:      registry.Counter("aborted_runs_total", "Runs ended by an unexpected error"),
		Cycles:           registry.Counter("cycles_total", "Dispatch cycles executed"),
		SkippedRounds:    registry.Counter("skipped_rounds_total", "Cycles skipped because the target window was not found"),
		KeysSent:         registry.Counter("keys_sent_total", "Key presses delivered"),
		DispatchFailures: registry.Counter("dispatch_failures_total", "Key presses that could not be delivered"),

		Running:      registry.Gauge("running", "1 while the repeat engine is running"),
		SelectedKeys: registry.Gauge("selected_keys", "Keys dispatched in the most recent cycle"),

		CycleDuration: registry.Histogram("cycle_duration_seconds", "Time spent resolving and dispatching one cycle", nil),
	}
}

// Registry returns the underlying registry.
func (m *Repeater) Registry() *Registry { return m.registry }
