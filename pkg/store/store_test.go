package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/barscene/pkg/errors"
	"github.com/matzehuels/barscene/pkg/scene"
)

func sampleDocument(name string) scene.Document {
	ds := scene.Dataset{Series: []scene.Series{
		{Name: "a", Rows: [][]float64{{1, 2}, {3}}},
		{Name: "b", Rows: [][]float64{{-1}}, Hidden: true},
	}}
	return scene.New(name, ds, scene.DefaultConfig())
}

// testStore runs the behavior every backend must share.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	first, err := s.Put(ctx, sampleDocument("first"))
	if err != nil {
		t.Fatal(err)
	}
	if err := errors.ValidateSceneID(first.ID); err != nil {
		t.Fatalf("Put assigned id %q: %v", first.ID, err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := s.Put(ctx, sampleDocument("second"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "first" || !reflect.DeepEqual(got.Dataset.Names(), []string{"a", "b"}) {
		t.Errorf("Get = %+v", got)
	}
	if !reflect.DeepEqual(got.Dataset.Series[0].Rows, [][]float64{{1, 2}, {3}}) {
		t.Errorf("rows = %v", got.Dataset.Series[0].Rows)
	}
	if !got.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, first.UpdatedAt)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("List = %+v, want second then first", list)
	}
	if !reflect.DeepEqual(list[1].Series, []string{"a", "b"}) {
		t.Errorf("summary series = %v", list[1].Series)
	}

	time.Sleep(2 * time.Millisecond)
	got.Name = "renamed"
	updated, err := s.Put(ctx, got)
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != first.ID || !updated.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("update = %s at %v", updated.ID, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on update")
	}
	list, _ = s.List(ctx)
	if list[0].ID != first.ID || list[0].Name != "renamed" {
		t.Errorf("List after update = %+v", list)
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, first.ID); !errors.Is(err, errors.ErrCodeSceneNotFound) {
		t.Errorf("Get after Delete error = %v", err)
	}
	if err := s.Delete(ctx, first.ID); !errors.Is(err, errors.ErrCodeSceneNotFound) {
		t.Errorf("second Delete error = %v", err)
	}

	bad := sampleDocument("bad")
	bad.Dataset.Series[1].Name = "a"
	if _, err := s.Put(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidDataset) {
		t.Errorf("Put duplicate series error = %v", err)
	}
	bad = sampleDocument("bad id")
	bad.ID = "../escape"
	if _, err := s.Put(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Put bad id error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	d, err := s.Put(ctx, sampleDocument("x"))
	if err != nil {
		t.Fatal(err)
	}
	d.Dataset.Series[0].Rows[0][0] = 99

	got, _ := s.Get(ctx, d.ID)
	if got.Dataset.Series[0].Rows[0][0] != 1 {
		t.Error("store shares rows with the caller")
	}
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scenes")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != dir {
		t.Errorf("Path() = %s, want %s", s.Path(), dir)
	}
	testStore(t, s)

	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.List(context.Background()); err != nil {
		t.Errorf("List with junk file error = %v", err)
	}
	if _, err := s.Get(context.Background(), "../../etc/passwd"); !errors.Is(err, errors.ErrCodeSceneNotFound) {
		t.Errorf("Get traversal error = %v", err)
	}
}

// TestMongoStore runs against the server named by BARSCENE_TEST_MONGO.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("BARSCENE_TEST_MONGO")
	if uri == "" {
		t.Skip("BARSCENE_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "barscene_test", Collection: "scenes_" + NewID()[:8]})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		s.Close()
	}()
	testStore(t, s)
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	for _, uri := range []string{"", "http://localhost:27017"} {
		_, err := NewMongoStore(context.Background(), MongoConfig{URI: uri})
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("uri %q: error = %v, want invalid config", uri, err)
		}
	}
}
