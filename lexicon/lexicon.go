// Package lexicon is a persistent term-embedding store backed by
// SQLite with sqlite-vec. It supplies the semantic similarity signal
// for mapping and fusion: callers load term vectors once and the
// pipeline scores term pairs by cosine similarity.
package lexicon

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// ErrTermNotFound is returned when a term has no stored vector.
var ErrTermNotFound = errors.New("kgraph: term not found in lexicon")

// Store wraps the SQLite database holding term vectors. It
// implements similarity.SemanticScorer.
type Store struct {
	db  *sql.DB
	dim int
}

// New opens (or creates) a lexicon database at path with the given
// embedding dimension. The dimension must match the vectors loaded
// later.
func New(path string, dim int) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating lexicon directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening lexicon: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging lexicon: %w", err)
	}

	if _, err := db.Exec(schemaSQL(dim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating lexicon schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db, dim: dim}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating lexicon: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dim returns the configured embedding dimension.
func (s *Store) Dim() int {
	return s.dim
}

// Put stores or replaces the vector for term.
func (s *Store) Put(ctx context.Context, term string, vec []float32) error {
	if len(vec) != s.dim {
		return fmt.Errorf("kgraph: vector for %q has dimension %d, lexicon expects %d", term, len(vec), s.dim)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO terms (term) VALUES (?)`, term); err != nil {
			return fmt.Errorf("upserting term: %w", err)
		}
		var id int64
		if err := tx.QueryRow(`SELECT id FROM terms WHERE term = ?`, term).Scan(&id); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM vec_terms WHERE term_id = ?`, id); err != nil {
			return fmt.Errorf("clearing old vector: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO vec_terms (term_id, embedding) VALUES (?, ?)`,
			id, serializeFloat32(vec)); err != nil {
			return fmt.Errorf("inserting vector: %w", err)
		}
		return nil
	})
}

// Vector returns the stored vector for term, or ErrTermNotFound.
func (s *Store) Vector(ctx context.Context, term string) ([]float32, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT v.embedding FROM terms t
		JOIN vec_terms v ON v.term_id = t.id
		WHERE t.term = ?
	`, term).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrTermNotFound, term)
	}
	if err != nil {
		return nil, fmt.Errorf("loading vector: %w", err)
	}
	return deserializeFloat32(blob), nil
}

// Score implements similarity.SemanticScorer: cosine similarity of
// the two term vectors clamped to [0, 1]. Terms without a vector
// score zero, which downstream treats as absence of evidence.
func (s *Store) Score(a, b string) (float64, error) {
	ctx := context.Background()
	va, err := s.Vector(ctx, a)
	if errors.Is(err, ErrTermNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	vb, err := s.Vector(ctx, b)
	if errors.Is(err, ErrTermNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cos := cosine(va, vb)
	if cos < 0 {
		cos = 0
	}
	if cos > 1 {
		cos = 1
	}
	return cos, nil
}

// Match is one nearest-neighbor hit.
type Match struct {
	Term     string
	Distance float64
}

// Nearest returns the k stored terms closest to term by vector
// distance, excluding the term itself.
func (s *Store) Nearest(ctx context.Context, term string, k int) ([]Match, error) {
	vec, err := s.Vector(ctx, term)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.term, v.distance
		FROM vec_terms v
		JOIN terms t ON t.id = v.term_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(vec), k+1)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Term, &m.Distance); err != nil {
			return nil, err
		}
		if m.Term == term {
			continue
		}
		out = append(out, m)
		if len(out) == k {
			break
		}
	}
	return out, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// serializeFloat32 encodes a vector in sqlite-vec's little-endian
// blob format.
func serializeFloat32(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func deserializeFloat32(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}
