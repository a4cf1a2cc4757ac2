package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/cache"
	"github.com/matzehuels/barscene/pkg/errors"
	dsio "github.com/matzehuels/barscene/pkg/io"
	"github.com/matzehuels/barscene/pkg/observability"
	"github.com/matzehuels/barscene/pkg/scene"
)

// Runner executes pipeline stages with caching. It holds no per-run state,
// so one Runner can serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// means [cache.DefaultKeyer].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → sync → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	result := &Result{}

	loadStart := time.Now()
	ds, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.SeriesCount = len(ds.Series)
	result.CacheInfo.LoadHit = loadHit
	r.Logger.Info("loaded dataset",
		"input", opts.Input,
		"series", len(ds.Series),
		"duration", result.Stats.LoadTime)

	result.Document = NewDocument(ds, opts)

	syncStart := time.Now()
	frame, syncHit, err := r.SyncWithCacheInfo(ctx, result.Document, opts)
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}
	result.Frame = frame
	result.Document.Frame = &frame
	result.Stats.SyncTime = time.Since(syncStart)
	result.Stats.BarCount = frame.BarCount()
	result.CacheInfo.SyncHit = syncHit
	r.Logger.Info("synced scene",
		"bars", result.Stats.BarCount,
		"duration", result.Stats.SyncTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, frame, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// =============================================================================
// Load
// =============================================================================

// LoadWithCacheInfo imports opts.Input and reports whether the parsed
// dataset came from the cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (scene.Dataset, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return scene.Dataset{}, false, err
	}
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return scene.Dataset{}, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", opts.Input)
		}
		return scene.Dataset{}, false, fmt.Errorf("read %s: %w", opts.Input, err)
	}
	ds, hit, err := r.LoadBytes(ctx, data, opts)
	if err != nil {
		return scene.Dataset{}, false, fmt.Errorf("%s: %w", opts.Input, err)
	}
	return ds, hit, nil
}

// Load is LoadWithCacheInfo without the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (scene.Dataset, error) {
	ds, _, err := r.LoadWithCacheInfo(ctx, opts)
	return ds, err
}

// LoadBytes parses dataset content in opts.Import.Format. The API server
// calls it for uploads; the cache key hashes the content, not a path.
func (r *Runner) LoadBytes(ctx context.Context, data []byte, opts Options) (ds scene.Dataset, hit bool, err error) {
	if err := errors.ValidateFormat(opts.Import.Format, dsio.Formats...); err != nil {
		return scene.Dataset{}, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLoadStart(ctx, opts.Import.Format, opts.Input)
	defer func() {
		hooks.OnLoadComplete(ctx, opts.Import.Format, len(ds.Series), time.Since(start), err)
	}()

	key := r.Keyer.DatasetKey(cache.Hash(data), opts.DatasetKeyOpts())
	if !opts.Refresh {
		if cached, ok := r.get(ctx, cache.KeyTypeDataset, key); ok {
			if ds, err := scene.UnmarshalDataset(cached); err == nil {
				return ds, true, nil
			}
		}
	}

	ds, err = dsio.Read(bytes.NewReader(data), opts.Import.Format, opts.Import)
	if err != nil {
		return scene.Dataset{}, false, err
	}
	if encoded, err := scene.MarshalDataset(ds); err == nil {
		r.set(ctx, cache.KeyTypeDataset, key, encoded, cache.TTLDataset)
	}
	return ds, false, nil
}

// =============================================================================
// Sync
// =============================================================================

// frameInput is the part of a document that determines its frame.
type frameInput struct {
	Dataset   scene.Dataset    `json:"dataset"`
	Config    scene.Config     `json:"config"`
	Selection *scene.Selection `json:"selection,omitempty"`
}

// SyncWithCacheInfo builds the document's graph and runs one sync cycle.
// The frame is cached by the document's dataset, config and selection.
func (r *Runner) SyncWithCacheInfo(ctx context.Context, d scene.Document, opts Options) (bars.Frame, bool, error) {
	r.applyLogger(&opts)

	hash, err := cache.HashJSON(frameInput{Dataset: d.Dataset, Config: d.Config, Selection: d.Selection})
	if err != nil {
		return bars.Frame{}, false, err
	}
	key := r.Keyer.FrameKey(hash)
	if !opts.Refresh {
		if cached, ok := r.get(ctx, cache.KeyTypeFrame, key); ok {
			var f bars.Frame
			if err := json.Unmarshal(cached, &f); err == nil {
				return f, true, nil
			}
		}
	}

	g, err := d.Build(bars.WithLogger(opts.Logger))
	if err != nil {
		return bars.Frame{}, false, err
	}
	f := g.Sync(ctx)
	if encoded, err := json.Marshal(f); err == nil {
		r.set(ctx, cache.KeyTypeFrame, key, encoded, cache.TTLFrame)
	}
	return f, false, nil
}

// Sync is SyncWithCacheInfo without the cache hit info.
func (r *Runner) Sync(ctx context.Context, d scene.Document, opts Options) (bars.Frame, error) {
	f, _, err := r.SyncWithCacheInfo(ctx, d, opts)
	return f, err
}

// =============================================================================
// Render
// =============================================================================

// RenderWithCacheInfo renders every requested format. The hit flag is set
// only when all formats came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, f bars.Frame, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	frameHash, err := cache.HashJSON(f)
	if err != nil {
		return nil, false, fmt.Errorf("hash frame: %w", err)
	}

	artifacts = make(map[string][]byte, len(opts.Formats))
	hit = true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, ok := r.get(ctx, cache.KeyTypeArtifact, key); ok {
				artifacts[format] = data
				continue
			}
		}
		hit = false

		data, err := RenderFormat(ctx, f, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		r.set(ctx, cache.KeyTypeArtifact, key, data, cache.TTLArtifact)
	}
	return artifacts, hit, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, f bars.Frame, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, f, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads the cache and reports the outcome to the cache hooks. Backend
// errors count as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "error", err)
	}
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
