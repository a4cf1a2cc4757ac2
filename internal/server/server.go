// Package server implements the barscene HTTP API.
//
// Scenes are stored documents ([scene.Document]) with a live [bars.Graph]
// behind each one that has been touched since startup. Selection requests
// go to the live graph, which is synced once per request; the resulting
// frame is persisted with the document and pushed to every websocket
// subscribed to the scene.
//
// # Routes
//
//	GET    /healthz
//	GET    /version
//	GET    /scenes                          list summaries
//	POST   /scenes                          create from a dataset (JSON)
//	POST   /scenes/import                   create from a CSV/TOML/JSON/XLSX upload
//	GET    /scenes/{id}                     document with last frame
//	PUT    /scenes/{id}                     replace dataset, config and selection
//	DELETE /scenes/{id}
//	GET    /scenes/{id}/frame               current frame
//	POST   /scenes/{id}/select              select a bar by coordinate
//	POST   /scenes/{id}/pick                report a pointer hit on a bar instance
//	POST   /scenes/{id}/pick-label          report a hit on a row or column label
//	DELETE /scenes/{id}/selection           clear the selection
//	PUT    /scenes/{id}/mode                change the selection mode
//	PUT    /scenes/{id}/series/{name}       show or hide a series
//	GET    /scenes/{id}/render/{format}     svg, png, pdf or json artifact
//	GET    /scenes/{id}/stream              websocket of frames
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/barscene/pkg/cache"
	"github.com/matzehuels/barscene/pkg/errors"
	"github.com/matzehuels/barscene/pkg/observability"
	"github.com/matzehuels/barscene/pkg/pipeline"
	"github.com/matzehuels/barscene/pkg/store"
)

// Backend names for Config.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"

	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// DefaultAddr is the listen address when Config.Addr is empty.
const DefaultAddr = ":8080"

// Config holds server configuration.
type Config struct {
	Addr     string
	AllowAll bool // allow all CORS origins and websocket origins (dev mode)

	CacheBackend string // none (default), file or redis
	CacheDir     string // file cache directory
	StoreBackend string // memory (default), file or mongo
	StoreDir     string // file store directory

	RedisAddr string // host:port or redis:// URL
	MongoURI  string
	MongoDB   string
}

// Server serves the scene API.
type Server struct {
	cfg        Config
	store      store.Store
	runner     *pipeline.Runner
	logger     *log.Logger
	scenes     *registry
	router     chi.Router
	httpServer *http.Server
}

// New creates a server over an opened store and runner.
func New(cfg Config, st store.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		cfg:    cfg,
		store:  st,
		runner: runner,
		logger: logger,
		scenes: newRegistry(),
	}
	s.router = s.buildRouter()
	return s
}

// Open connects the configured cache and store backends and creates a
// server over them.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*Server, error) {
	c, err := openCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, "server")
	return New(cfg, st, pipeline.NewRunner(c, keyer, logger), logger), nil
}

func openCache(ctx context.Context, cfg Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case "", CacheNone:
		return cache.NewNullCache(), nil
	case CacheFile:
		return cache.NewFileCache(cfg.CacheDir)
	case CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisAddr, cache.WithRedisPrefix("barscene:"))
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.CacheBackend)
}

func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "", StoreMemory:
		return store.NewMemoryStore(), nil
	case StoreFile:
		return store.NewFileStore(cfg.StoreDir)
	case StoreMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDB})
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.StoreBackend)
}

// buildRouter creates the chi router with middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/version", s.handleVersion)

	r.Route("/scenes", func(r chi.Router) {
		// Streams are long-lived and must not inherit the request timeout.
		r.Get("/{id}/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/", s.handleList)
			r.Post("/", s.handleCreate)
			r.Post("/import", s.handleImport)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Put("/", s.handleReplace)
				r.Delete("/", s.handleDelete)
				r.Get("/frame", s.handleFrame)
				r.Post("/select", s.handleSelect)
				r.Post("/pick", s.handlePick)
				r.Post("/pick-label", s.handlePickLabel)
				r.Delete("/selection", s.handleClearSelection)
				r.Put("/mode", s.handleMode)
				r.Put("/series/{name}", s.handleSeriesVisible)
				r.Get("/render/{format}", s.handleRender)
			})
		})
	})

	return r
}

// logRequests logs every request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Runner returns the pipeline runner.
func (s *Server) Runner() *pipeline.Runner { return s.runner }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "store", s.cfg.StoreBackend, "cache", s.cfg.CacheBackend)
		errc <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.scenes.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// Close releases the store and the runner's cache.
func (s *Server) Close() error {
	s.scenes.closeAll()
	return stderrors.Join(s.runner.Close(), s.store.Close())
}
