package store

import (
	"context"
	"sync"

	"github.com/matzehuels/barscene/pkg/scene"
)

// MemoryStore keeps documents in memory. Documents are stored in encoded
// form, so callers never share slices with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (scene.Document, error) {
	s.mu.RLock()
	data, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return scene.Document{}, notFound(id)
	}
	return scene.Unmarshal(data)
}

func (s *MemoryStore) Put(ctx context.Context, d scene.Document) (scene.Document, error) {
	d, err := prepare(d)
	if err != nil {
		return scene.Document{}, err
	}
	data, err := scene.Marshal(d)
	if err != nil {
		return scene.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = data
	return d, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return notFound(id)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.docs))
	for _, data := range s.docs {
		d, err := scene.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(d))
	}
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
