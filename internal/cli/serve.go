package cli

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barscene/internal/server"
)

// serveCommand creates the serve command for the HTTP scene API.
func (c *CLI) serveCommand() *cobra.Command {
	cfg := server.Config{
		Addr:         server.DefaultAddr,
		CacheBackend: server.CacheFile,
		StoreBackend: server.StoreMemory,
		RedisAddr:    "localhost:6379",
		MongoURI:     "mongodb://localhost:27017",
		MongoDB:      "barscene",
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scenes over HTTP and websocket",
		Long: `Serve the scene API. Scenes are created from JSON documents or uploaded
dataset files, selected and sliced with small JSON requests, rendered in
every output format and streamed to websocket clients as frames.

Backends:
  --cache  none | file | redis     where imports and renders are cached
  --store  memory | file | mongo   where scene documents are kept

The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  barscene serve
  barscene serve --addr :9000 --store file --store-dir ./scenes
  barscene serve --cache redis --redis localhost:6379 --store mongo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.BoolVar(&cfg.AllowAll, "allow-all", false, "allow every CORS and websocket origin")
	fs.StringVar(&cfg.CacheBackend, "cache", cfg.CacheBackend, "cache backend: none, file or redis")
	fs.StringVar(&cfg.CacheDir, "cache-dir", "", "file cache directory (default: the CLI cache directory)")
	fs.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "scene store: memory, file or mongo")
	fs.StringVar(&cfg.StoreDir, "store-dir", "", "file store directory (default: <cache dir>/scenes)")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address or URL")
	fs.StringVar(&cfg.MongoURI, "mongo-uri", cfg.MongoURI, "mongodb connection URI")
	fs.StringVar(&cfg.MongoDB, "mongo-db", cfg.MongoDB, "mongodb database")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg server.Config) error {
	if cfg.CacheDir == "" || cfg.StoreDir == "" {
		dir, err := cacheDir()
		if err != nil {
			return err
		}
		if cfg.CacheDir == "" {
			cfg.CacheDir = dir
		}
		if cfg.StoreDir == "" {
			cfg.StoreDir = filepath.Join(dir, "scenes")
		}
	}

	logger := loggerFromContext(ctx)
	srv, err := server.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	printInfo("Serving scenes on %s", cfg.Addr)
	printDetail("Store: %s, cache: %s", cfg.StoreBackend, cfg.CacheBackend)

	err = srv.ListenAndServe(ctx)
	if errors.Is(err, context.Canceled) {
		printInfo("Server stopped")
		return nil
	}
	return err
}
