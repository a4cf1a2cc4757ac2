package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/barscene/pkg/errors"
	"github.com/matzehuels/barscene/pkg/scene"
)

// FileStore keeps one JSON file per document in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore opens a store in dir, creating it if needed. An empty dir
// means ~/.config/barscene/scenes.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "barscene", "scenes")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create scene dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string { return s.dir }

// path maps an ID to its file. IDs are validated first so that they can
// never name a file outside the directory.
func (s *FileStore) path(id string) (string, error) {
	if err := errors.ValidateSceneID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *FileStore) Get(ctx context.Context, id string) (scene.Document, error) {
	path, err := s.path(id)
	if err != nil {
		return scene.Document{}, notFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return scene.Document{}, notFound(id)
	}
	return scene.ReadFile(path)
}

func (s *FileStore) Put(ctx context.Context, d scene.Document) (scene.Document, error) {
	d, err := prepare(d)
	if err != nil {
		return scene.Document{}, err
	}
	path, err := s.path(d.ID)
	if err != nil {
		return scene.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := scene.WriteFile(d, path); err != nil {
		return scene.Document{}, fmt.Errorf("write scene file: %w", err)
	}
	return d, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return notFound(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return fmt.Errorf("remove scene file: %w", err)
	}
	return nil
}

// List reads every document in the directory. Files that are not valid
// documents are skipped.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read scene dir: %w", err)
	}
	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		d, err := scene.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, summarize(d))
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
