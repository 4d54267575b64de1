package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/memefeed/internal/vector"
)

// SQLiteStorage keeps items (identifier plus embedding) in a single SQLite table.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		idx INTEGER PRIMARY KEY,
		identifier TEXT NOT NULL,
		embedding BLOB NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// LoadEmbeddingTable implements vector.EmbeddingSource. Rows are returned in idx order.
func (s *SQLiteStorage) LoadEmbeddingTable(ctx context.Context) ([][]float32, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT idx, embedding FROM items ORDER BY idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var table [][]float32
	for rows.Next() {
		var idx int
		var blob []byte
		if err := rows.Scan(&idx, &blob); err != nil {
			return nil, err
		}
		if idx != len(table) {
			return nil, fmt.Errorf("items table has a gap at idx %d", len(table))
		}
		if len(blob)%4 != 0 {
			return nil, fmt.Errorf("item %d: embedding blob has %d bytes, not a multiple of 4", idx, len(blob))
		}
		table = append(table, bytesToFloat32Slice(blob))
	}
	return table, rows.Err()
}

// LoadIdentifiers implements vector.IdentifierSource.
func (s *SQLiteStorage) LoadIdentifiers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identifier FROM items ORDER BY idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ImportStore replaces the items table with the contents of store in one transaction.
func (s *SQLiteStorage) ImportStore(ctx context.Context, store *vector.Store) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items (idx, identifier, embedding) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < store.Size(); i++ {
		id, err := store.IdentifierAt(i)
		if err != nil {
			return err
		}
		emb, err := store.EmbeddingAt(i)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, i, id, float32SliceToBytes(emb)); err != nil {
			return fmt.Errorf("failed to insert item %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// CountItems returns the number of stored items.
func (s *SQLiteStorage) CountItems(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
