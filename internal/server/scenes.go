package server

import (
	"context"
	"sync"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/scene"
)

// subscriberBuffer is the number of frames a slow stream may lag behind.
const subscriberBuffer = 4

// liveScene is a stored document with its graph. mu serializes every use
// of the graph, which is not safe for concurrent use.
type liveScene struct {
	mu    sync.Mutex
	doc   scene.Document
	graph *bars.Graph
	frame bars.Frame
	subs  map[chan bars.Frame]struct{}
}

func newLiveScene(ctx context.Context, d scene.Document, g *bars.Graph) *liveScene {
	ls := &liveScene{doc: d, graph: g, subs: make(map[chan bars.Frame]struct{})}
	f := g.Sync(ctx)
	ls.frame = f
	ls.doc.Frame = &f
	return ls
}

// subscribe registers a stream and returns its channel with the current
// frame already queued. Callers hold mu.
func (ls *liveScene) subscribe() chan bars.Frame {
	ch := make(chan bars.Frame, subscriberBuffer)
	ch <- ls.frame
	ls.subs[ch] = struct{}{}
	return ch
}

func (ls *liveScene) unsubscribe(ch chan bars.Frame) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if _, ok := ls.subs[ch]; ok {
		delete(ls.subs, ch)
		close(ch)
	}
}

// broadcast sends f to every stream. A full stream drops its oldest frame,
// so subscribers always end on the latest one. Callers hold mu.
func (ls *liveScene) broadcast(f bars.Frame) {
	for ch := range ls.subs {
		select {
		case ch <- f:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- f:
		default:
		}
	}
}

// closeSubs ends every stream. Callers hold mu.
func (ls *liveScene) closeSubs() {
	for ch := range ls.subs {
		delete(ls.subs, ch)
		close(ch)
	}
}

// registry holds the live scenes by ID.
type registry struct {
	mu     sync.Mutex
	scenes map[string]*liveScene
}

func newRegistry() *registry {
	return &registry{scenes: make(map[string]*liveScene)}
}

func (r *registry) get(id string) (*liveScene, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ls, ok := r.scenes[id]
	return ls, ok
}

// add registers ls unless another scene with the same ID got there first,
// and returns the registered one.
func (r *registry) add(id string, ls *liveScene) *liveScene {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.scenes[id]; ok {
		return cur
	}
	r.scenes[id] = ls
	return ls
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	ls := r.scenes[id]
	delete(r.scenes, id)
	r.mu.Unlock()
	if ls != nil {
		ls.mu.Lock()
		ls.closeSubs()
		ls.mu.Unlock()
	}
}

func (r *registry) closeAll() {
	r.mu.Lock()
	all := r.scenes
	r.scenes = make(map[string]*liveScene)
	r.mu.Unlock()
	for _, ls := range all {
		ls.mu.Lock()
		ls.closeSubs()
		ls.mu.Unlock()
	}
}
