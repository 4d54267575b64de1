package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/memefeed/internal/vector"
)

func TestSQLiteStorage_ImportAndLoad(t *testing.T) {
	dir := t.TempDir()
	db, err := NewSQLiteStorage(filepath.Join(dir, "sub", "memes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	src, err := vector.NewStore(
		[][]float32{{1, 0, -0.5}, {0, 1, 0.25}},
		[]string{"memes/a.png", "memes/b.png"},
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.ImportStore(ctx, src); err != nil {
		t.Fatal(err)
	}

	n, err := db.CountItems(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountItems = %d, %v; want 2", n, err)
	}

	loaded, err := vector.Load(ctx, db, db)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Size() != 2 || loaded.Dimension() != 3 {
		t.Errorf("loaded size=%d dim=%d", loaded.Size(), loaded.Dimension())
	}
	emb, _ := loaded.EmbeddingAt(0)
	if !reflect.DeepEqual(emb, []float32{1, 0, -0.5}) {
		t.Errorf("EmbeddingAt(0) = %v", emb)
	}
	if id, _ := loaded.IdentifierAt(1); id != "memes/b.png" {
		t.Errorf("IdentifierAt(1) = %q", id)
	}
}

func TestSQLiteStorage_ImportReplaces(t *testing.T) {
	db, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "memes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	first, _ := vector.NewStore([][]float32{{1}, {2}, {3}}, []string{"a", "b", "c"})
	second, _ := vector.NewStore([][]float32{{9}}, []string{"z"})
	if err := db.ImportStore(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := db.ImportStore(ctx, second); err != nil {
		t.Fatal(err)
	}
	ids, err := db.LoadIdentifiers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"z"}) {
		t.Errorf("identifiers after replace = %v", ids)
	}
}

func TestSQLiteStorage_Empty(t *testing.T) {
	db, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "memes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	table, err := db.LoadEmbeddingTable(context.Background())
	if err != nil || len(table) != 0 {
		t.Errorf("empty table = %v, %v", table, err)
	}
	ids, err := db.LoadIdentifiers(context.Background())
	if err != nil || len(ids) != 0 {
		t.Errorf("empty ids = %v, %v", ids, err)
	}
}

func TestFloat32Blob(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	if got := bytesToFloat32Slice(float32SliceToBytes(in)); !reflect.DeepEqual(got, in) {
		t.Errorf("blob = %v, want %v", got, in)
	}
}
