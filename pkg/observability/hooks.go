// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module never depend on a metrics backend. Instead they
// report events to hook interfaces that main can replace at startup; by
// default every hook is a no-op.
//
// # Hook categories
//
//   - [SceneHooks]: sync cycles, selection changes and slice toggles of a
//     bar scene
//   - [PipelineHooks]: dataset loading and frame rendering
//   - [CacheHooks]: cache hits, misses and writes
//   - [HTTPHooks]: requests and websocket streams served by the API server
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSceneHooks(&mySceneHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Scene().OnSyncStart(ctx, len(series))
//	// ... sync ...
//	observability.Scene().OnSyncComplete(ctx, bars, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Scene Hooks
// =============================================================================

// SceneHooks receives events from bar scenes.
type SceneHooks interface {
	// OnSyncStart is called before a sync cycle recomputes anything.
	OnSyncStart(ctx context.Context, seriesCount int)

	// OnSyncComplete is called with the number of laid-out bars.
	OnSyncComplete(ctx context.Context, bars int, duration time.Duration)

	// OnSelectionChanged reports the new selection. series is empty and
	// row, col are -1 when the selection was cleared.
	OnSelectionChanged(ctx context.Context, series string, row, col int)

	// OnSliceToggled reports the slice view turning on or off.
	OnSliceToggled(ctx context.Context, active bool)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load → sync → render pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, format, source string)
	OnLoadComplete(ctx context.Context, format string, seriesCount int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnStreamOpen and OnStreamClose bracket a websocket frame stream.
	OnStreamOpen(ctx context.Context, sceneID string)
	OnStreamClose(ctx context.Context, sceneID string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSceneHooks is a no-op implementation of SceneHooks.
type NoopSceneHooks struct{}

func (NoopSceneHooks) OnSyncStart(context.Context, int)                     {}
func (NoopSceneHooks) OnSyncComplete(context.Context, int, time.Duration)   {}
func (NoopSceneHooks) OnSelectionChanged(context.Context, string, int, int) {}
func (NoopSceneHooks) OnSliceToggled(context.Context, bool)                 {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnStreamOpen(context.Context, string)                           {}
func (NoopHTTPHooks) OnStreamClose(context.Context, string, error)                   {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sceneHooks    SceneHooks    = NoopSceneHooks{}
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetSceneHooks registers custom scene hooks. Nil is ignored.
func SetSceneHooks(h SceneHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sceneHooks = h
	}
}

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Scene returns the registered scene hooks.
func Scene() SceneHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sceneHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sceneHooks = NoopSceneHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
