package server

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/buildinfo"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/core/series"
	"github.com/matzehuels/barscene/pkg/errors"
	dsio "github.com/matzehuels/barscene/pkg/io"
	"github.com/matzehuels/barscene/pkg/pipeline"
	"github.com/matzehuels/barscene/pkg/scene"
)

// maxUploadSize limits dataset uploads.
const maxUploadSize = 32 << 20

// sceneRequest creates or replaces a scene. A missing config means
// [scene.DefaultConfig].
type sceneRequest struct {
	Name      string           `json:"name"`
	Dataset   scene.Dataset    `json:"dataset"`
	Config    *scene.Config    `json:"config,omitempty"`
	Selection *scene.Selection `json:"selection,omitempty"`
}

func (r sceneRequest) document() scene.Document {
	cfg := scene.DefaultConfig()
	if r.Config != nil {
		cfg = *r.Config
	}
	d := scene.New(r.Name, r.Dataset, cfg)
	d.Selection = r.Selection
	return d
}

// frameResponse is the reply to every selection request.
type frameResponse struct {
	Changed bool       `json:"changed"`
	Frame   bars.Frame `json:"frame"`
}

// =============================================================================
// Meta
// =============================================================================

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// =============================================================================
// Scene CRUD
// =============================================================================

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	d, err := s.create(r.Context(), req.document())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// handleImport creates a scene from an uploaded dataset file. The query
// carries the import options: format (required), name, header,
// row_labels and mode.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.Options{Import: dsio.Options{
		Format:    q.Get("format"),
		Name:      q.Get("name"),
		Header:    queryBool(q.Get("header")),
		RowLabels: queryBool(q.Get("row_labels")),
	}}
	if opts.Import.Name == "" {
		opts.Import.Name = "upload"
	}
	opts.Scene = scene.DefaultConfig()
	if m := q.Get("mode"); m != "" {
		mode, err := selection.ParseMode(m)
		if err != nil {
			writeError(w, err)
			return
		}
		opts.Scene.Mode = mode
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload"))
		return
	}
	ds, _, err := s.runner.LoadBytes(r.Context(), data, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	d, err := s.create(r.Context(), pipeline.NewDocument(ds, opts))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// create validates d by building its graph, stores it and registers the
// live scene.
func (s *Server) create(ctx context.Context, d scene.Document) (scene.Document, error) {
	g, err := d.Build(bars.WithLogger(s.logger))
	if err != nil {
		return scene.Document{}, err
	}
	ls := newLiveScene(ctx, d, g)
	ls.doc, err = s.store.Put(ctx, ls.doc)
	if err != nil {
		return scene.Document{}, err
	}
	s.scenes.add(ls.doc.ID, ls)
	s.logger.Info("created scene", "id", ls.doc.ID, "series", len(d.Dataset.Series), "bars", ls.frame.BarCount())
	return ls.doc, nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ls, err := s.live(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	ls.mu.Lock()
	d, f := ls.doc, ls.frame
	ls.mu.Unlock()
	d.Frame = &f
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ls, err := s.live(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	next := req.document()
	g, err := next.Build(bars.WithLogger(s.logger))
	if err != nil {
		writeError(w, err)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	next.ID = ls.doc.ID
	next.CreatedAt = ls.doc.CreatedAt
	if next.Name == "" {
		next.Name = ls.doc.Name
	}
	frame := g.Sync(r.Context())
	next.Frame = &frame
	saved, err := s.store.Put(r.Context(), next)
	if err != nil {
		writeError(w, err)
		return
	}
	ls.doc, ls.graph, ls.frame = saved, g, frame
	ls.broadcast(frame)
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.scenes.remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// live returns the registered scene or loads it from the store.
func (s *Server) live(ctx context.Context, id string) (*liveScene, error) {
	if ls, ok := s.scenes.get(id); ok {
		return ls, nil
	}
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := d.Build(bars.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	return s.scenes.add(id, newLiveScene(ctx, d, g)), nil
}

// =============================================================================
// Frames and Selection
// =============================================================================

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	ls, err := s.live(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	ls.mu.Lock()
	f := ls.frame
	ls.mu.Unlock()
	writeJSON(w, http.StatusOK, f)
}

// mutate runs fn on the scene's graph, syncs it, persists the document and
// pushes the frame to the scene's streams.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(g *bars.Graph) (bool, error)) {
	ctx := r.Context()
	ls, err := s.live(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	changed, err := fn(ls.graph)
	if err != nil {
		writeError(w, err)
		return
	}
	frame := ls.graph.Sync(ctx)
	ls.frame = frame

	d := scene.Capture(ls.doc, ls.graph)
	d.Frame = &frame
	saved, err := s.store.Put(ctx, d)
	if err != nil {
		writeError(w, err)
		return
	}
	ls.doc = saved
	ls.broadcast(frame)
	writeJSON(w, http.StatusOK, frameResponse{Changed: changed, Frame: frame})
}

type selectRequest struct {
	Series string `json:"series"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Slice  bool   `json:"slice"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.mutate(w, r, func(g *bars.Graph) (bool, error) {
		target := g.SeriesByName(req.Series)
		if target == nil {
			return false, errors.New(errors.ErrCodeSeriesNotFound, "series %q not found", req.Series)
		}
		return g.SetSelectedBar(series.Position{Row: req.Row, Col: req.Col}, target, req.Slice), nil
	})
}

type pickRequest struct {
	Series     string `json:"series"`
	Index      int    `json:"index"`
	Background bool   `json:"background,omitempty"`
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.mutate(w, r, func(g *bars.Graph) (bool, error) {
		if req.Background {
			return g.PickBackground(), nil
		}
		return g.Pick(req.Series, req.Index), nil
	})
}

type pickLabelRequest struct {
	Orientation selection.Kind `json:"orientation"`
	Index       int            `json:"index"`
}

func (s *Server) handlePickLabel(w http.ResponseWriter, r *http.Request) {
	var req pickLabelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Orientation != selection.KindRow && req.Orientation != selection.KindColumn {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "orientation must be row or column"))
		return
	}
	s.mutate(w, r, func(g *bars.Graph) (bool, error) {
		return g.PickAxisLabel(req.Orientation, req.Index), nil
	})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(g *bars.Graph) (bool, error) {
		return g.ClearSelection(), nil
	})
}

type modeRequest struct {
	Mode selection.Mode `json:"mode"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.mutate(w, r, func(g *bars.Graph) (bool, error) {
		prev := g.SelectionMode()
		if err := g.SetSelectionMode(req.Mode); err != nil {
			return false, err
		}
		return prev != req.Mode, nil
	})
}

type visibleRequest struct {
	Visible bool `json:"visible"`
}

func (s *Server) handleSeriesVisible(w http.ResponseWriter, r *http.Request) {
	var req visibleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	s.mutate(w, r, func(g *bars.Graph) (bool, error) {
		target := g.SeriesByName(name)
		if target == nil {
			return false, errors.New(errors.ErrCodeSeriesNotFound, "series %q not found", name)
		}
		changed := target.Visible != req.Visible
		return changed, g.SetSeriesVisible(target, req.Visible)
	})
}

// =============================================================================
// Rendering
// =============================================================================

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// handleRender renders the current frame. Query parameters map to the
// render options: unit, floor, labels, slice, title, scale and compact.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	q := r.URL.Query()
	opts := pipeline.Options{
		Formats:    []string{format},
		Floor:      queryBool(q.Get("floor")),
		Labels:     queryBool(q.Get("labels")),
		SlicePanel: queryBool(q.Get("slice")),
		Title:      q.Get("title"),
		Compact:    queryBool(q.Get("compact")),
	}
	var err error
	if opts.Unit, err = queryFloat(q.Get("unit")); err != nil {
		writeError(w, err)
		return
	}
	if opts.PNGScale, err = queryFloat(q.Get("scale")); err != nil {
		writeError(w, err)
		return
	}

	ls, err := s.live(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	ls.mu.Lock()
	f := ls.frame
	ls.mu.Unlock()

	artifacts, err := s.runner.Render(r.Context(), f, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[format])
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func queryFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid number %q", v)
	}
	return f, nil
}
