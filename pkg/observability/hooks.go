// Package observability provides instrumentation hooks for the pipeline,
// cache, and HTTP layers.
//
// The core packages stay free of metrics and tracing dependencies: they
// emit events through the interfaces here, which default to no-ops. An
// application wires a backend at startup:
//
//	observability.SetPipelineHooks(&prometheusHooks{})
//	observability.SetCacheHooks(&prometheusHooks{})
//
// and the libraries report as they work:
//
//	observability.Pipeline().OnFetchStart(ctx, guid, dim, lineno)
//	// ... fetch tiles ...
//	observability.Pipeline().OnFetchComplete(ctx, guid, tileCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the slice pipeline.
type PipelineHooks interface {
	// Fetch events
	OnFetchStart(ctx context.Context, guid string, dim, lineno int)
	OnFetchComplete(ctx context.Context, guid string, tileCount int, duration time.Duration, err error)

	// Assemble events
	OnAssembleStart(ctx context.Context, tileCount, shape0, shape1 int)
	OnAssembleComplete(ctx context.Context, shape0, shape1 int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations. keyType names the
// cached stage: "query", "slice", "image", or "http".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from outgoing requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError fires on transport failures; HTTP error statuses arrive
	// through OnResponse instead.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks discards pipeline events. It is the default.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, string, int, int)                     {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnAssembleStart(context.Context, int, int, int)                     {}
func (NoopPipelineHooks) OnAssembleComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                              {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)     {}

// NoopCacheHooks discards cache events. It is the default.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards HTTP events. It is the default.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one registered hook set behind a read-write lock. Reads
// vastly outnumber writes: every instrumented operation loads the
// current hooks, while registration happens once at startup.
type slot[T any] struct {
	mu sync.RWMutex
	v  T
}

func (s *slot[T]) load() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

func (s *slot[T]) store(v T) {
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
}

var (
	pipelineSlot = slot[PipelineHooks]{v: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{v: NoopCacheHooks{}}
	httpSlot     = slot[HTTPHooks]{v: NoopHTTPHooks{}}
)

// SetPipelineHooks registers pipeline hooks. Call once at startup,
// before the first pipeline operation. A nil value is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.store(h)
	}
}

// SetCacheHooks registers cache hooks. Call once at startup, before the
// first cache operation. A nil value is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.store(h)
	}
}

// SetHTTPHooks registers HTTP hooks. Call once at startup, before the
// first request. A nil value is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.store(h)
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.load() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.load() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.load() }

// Reset restores all hooks to their no-op defaults. Tests use this to
// unregister recording hooks between cases.
func Reset() {
	pipelineSlot.store(NoopPipelineHooks{})
	cacheSlot.store(NoopCacheHooks{})
	httpSlot.store(NoopHTTPHooks{})
}
