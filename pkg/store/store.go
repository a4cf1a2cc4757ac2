package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/barscene/pkg/errors"
	"github.com/matzehuels/barscene/pkg/scene"
)

// Store persists scene documents by ID.
type Store interface {
	// Get returns the document with the given ID, or an error with code
	// [errors.ErrCodeSceneNotFound].
	Get(ctx context.Context, id string) (scene.Document, error)

	// Put validates and stores d. An empty ID is replaced with a new one;
	// UpdatedAt is set to the current time. The stored document is
	// returned.
	Put(ctx context.Context, d scene.Document) (scene.Document, error)

	// Delete removes a document. A missing ID is an
	// [errors.ErrCodeSceneNotFound] error.
	Delete(ctx context.Context, id string) error

	// List returns a summary of every document, most recently updated
	// first.
	List(ctx context.Context) ([]Summary, error)

	Close() error
}

// Summary describes a stored document without its data.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Series    []string  `json:"series"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewID returns a new random scene ID.
func NewID() string { return uuid.NewString() }

// prepare assigns an ID and timestamps and validates d.
func prepare(d scene.Document) (scene.Document, error) {
	if d.ID == "" {
		d.ID = NewID()
	}
	if err := errors.ValidateSceneID(d.ID); err != nil {
		return scene.Document{}, err
	}
	if d.Version == 0 {
		d.Version = scene.FormatVersion
	}
	if err := d.Validate(); err != nil {
		return scene.Document{}, err
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	return d, nil
}

func summarize(d scene.Document) Summary {
	return Summary{ID: d.ID, Name: d.Name, Series: d.Dataset.Names(), UpdatedAt: d.UpdatedAt}
}

func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSceneNotFound, "scene %s not found", id)
}
