// Package store provides a SQLite-backed cache for document embeddings.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

// ErrVectorCorrupt is returned when a cached blob has an impossible length.
var ErrVectorCorrupt = errors.New("cached vector blob is corrupt")

// Store caches document embeddings keyed by a digest of the document text,
// so repeated extraction runs skip the embedding service.
type Store struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS embeddings (
	digest TEXT PRIMARY KEY,
	dim INTEGER NOT NULL,
	vector BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
`

// New opens the SQLite database at dbPath, creates tables if they don't
// exist, and returns a Store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()

		return nil, fmt.Errorf("store: set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()

		return nil, fmt.Errorf("store: create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Digest returns the cache key for a document text.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))

	return hex.EncodeToString(sum[:])
}

// Put inserts or replaces the embedding for a document text.
func (s *Store) Put(text string, vector []float32) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO embeddings (digest, dim, vector, created_at)
		 VALUES (?, ?, ?, ?)`,
		Digest(text), len(vector), encodeVector(vector), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: put embedding: %w", err)
	}

	return nil
}

// Get returns the cached embedding for a document text, or nil on a miss.
func (s *Store) Get(text string) ([]float32, error) {
	var (
		dim  int
		blob []byte
	)

	err := s.db.QueryRow(
		`SELECT dim, vector FROM embeddings WHERE digest = ?`, Digest(text),
	).Scan(&dim, &blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("store: get embedding: %w", err)
	}

	if len(blob) != dim*4 {
		return nil, fmt.Errorf("%w: %d bytes for dim %d", ErrVectorCorrupt, len(blob), dim)
	}

	return decodeVector(blob), nil
}

// Count returns the number of cached embeddings.
func (s *Store) Count() (int, error) {
	var count int

	err := s.db.QueryRow(`SELECT COUNT(*) FROM embeddings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("store: count embeddings: %w", err)
	}

	return count, nil
}

// encodeVector packs float32 components little-endian.
func encodeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}

	return blob
}

func decodeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}

	return vector
}
