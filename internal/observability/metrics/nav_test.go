package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/navguard/internal/domain/nav"
)

type emitted struct {
	kind  string
	name  string
	value float64
	tags  map[string]string
}

type fakeSink struct {
	mu  sync.Mutex
	out []emitted
}

func (s *fakeSink) add(e emitted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = append(s.out, e)
}

func (s *fakeSink) Count(name string, v int64, tags map[string]string) {
	s.add(emitted{"count", name, float64(v), tags})
}

func (s *fakeSink) Gauge(name string, v float64, tags map[string]string) {
	s.add(emitted{"gauge", name, v, tags})
}

func (s *fakeSink) Timing(name string, v time.Duration, tags map[string]string) {
	s.add(emitted{"timing", name, float64(v), tags})
}

func (s *fakeSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.out))
	for i, e := range s.out {
		out[i] = e.name
	}
	return out
}

func TestEmitBootstrap_Success(t *testing.T) {
	sink := &fakeSink{}
	EmitBootstrap(sink, BootstrapMetric{Result: ResultSuccess, Routes: 9, Duration: 40 * time.Millisecond})

	require.Equal(t, []string{"nav.bootstrap", "nav.bootstrap.duration", "nav.bootstrap.routes"}, sink.names())
	assert.Equal(t, map[string]string{"result": "success"}, sink.out[0].tags)
	assert.InDelta(t, 9, sink.out[2].value, 0)
}

func TestEmitBootstrap_Error(t *testing.T) {
	sink := &fakeSink{}
	EmitBootstrap(sink, BootstrapMetric{Result: ResultError, Err: context.DeadlineExceeded})

	require.Equal(t, []string{"nav.bootstrap"}, sink.names())
	assert.Equal(t, "timeout", sink.out[0].tags["error_class"])

	EmitBootstrap(nil, BootstrapMetric{Result: ResultError, Err: errors.New("ignored")})
}

func TestNavigationProgress(t *testing.T) {
	sink := &fakeSink{}
	p := NewNavigationProgress(sink)
	base := time.Unix(1_700_000_000, 0)
	calls := 0
	p.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 10 * time.Millisecond)
	}

	ctx := context.Background()
	p.Done(ctx)
	assert.False(t, p.Finished(), "done before start is ignored")

	p.Start(ctx, nav.RouteRequest{Path: "/system/user"})
	p.Start(ctx, nav.RouteRequest{Path: "/index"})
	p.Done(ctx)
	p.Done(ctx)

	assert.True(t, p.Finished())
	assert.Equal(t, []string{"nav.start", "nav.done", "nav.duration"}, sink.names())
	assert.InDelta(t, float64(10*time.Millisecond), sink.out[2].value, 0)
}

func TestNavigationProgress_NilSink(t *testing.T) {
	p := NewNavigationProgress(nil)
	p.Start(context.Background(), nav.RouteRequest{Path: "/"})
	p.Done(context.Background())
	assert.True(t, p.Finished())
}

func TestCloneTags(t *testing.T) {
	assert.Nil(t, CloneTags(nil))
	src := map[string]string{"a": "1"}
	cp := CloneTags(src)
	cp["a"] = "2"
	assert.Equal(t, "1", src["a"])
}
