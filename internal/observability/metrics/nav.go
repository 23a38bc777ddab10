package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/target/navguard/internal/domain/nav"
	obserrors "github.com/target/navguard/internal/observability/errors"
	"github.com/target/navguard/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// BootstrapMetric captures one session bootstrap attempt.
type BootstrapMetric struct {
	Result   string
	Routes   int
	Duration time.Duration
	Err      error
}

// EmitBootstrap emits session bootstrap metrics.
func EmitBootstrap(sink statsd.Sink, in BootstrapMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": in.Result}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("nav.bootstrap", 1, tags)
	if in.Duration > 0 {
		sink.Timing("nav.bootstrap.duration", in.Duration, CloneTags(tags))
	}
	if in.Result == ResultSuccess {
		sink.Gauge("nav.bootstrap.routes", float64(in.Routes), nil)
	}
}

// NavigationProgress implements the navigation progress signal over statsd.
// One value tracks one navigation; Done emits at most once.
type NavigationProgress struct {
	sink statsd.Sink
	now  func() time.Time

	mu      sync.Mutex
	started time.Time
	done    bool
}

// NewNavigationProgress returns a progress signal emitting to sink. A nil sink
// turns it into a no-op.
func NewNavigationProgress(sink statsd.Sink) *NavigationProgress {
	return &NavigationProgress{sink: sink, now: time.Now}
}

// Start marks the beginning of a navigation hop. Only the first hop starts the clock.
func (p *NavigationProgress) Start(_ context.Context, _ nav.RouteRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started.IsZero() {
		p.started = p.now()
		p.done = false
		if p.sink != nil {
			p.sink.Count("nav.start", 1, nil)
		}
	}
}

// Done ends the navigation.
func (p *NavigationProgress) Done(_ context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done || p.started.IsZero() {
		return
	}
	p.done = true
	if p.sink == nil {
		return
	}
	p.sink.Count("nav.done", 1, nil)
	p.sink.Timing("nav.duration", p.now().Sub(p.started), nil)
}

// Finished reports whether Done has taken effect.
func (p *NavigationProgress) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
