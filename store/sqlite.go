package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kweller/go-prodcat/catalog"
	"github.com/kweller/go-prodcat/vector"
)

// SQLiteStore is the embedded catalog store for local development and
// tests. It keeps the same logical layout as the Postgres backend but has
// no vector indexing: similarity search is a flat scan ranked in-process
// with the policy's metric, so the index families in the policy are
// provisioning hints it ignores.
type SQLiteStore struct {
	db     *sql.DB
	policy Policy
}

// NewSQLiteStore opens (and creates if needed) an SQLite-backed store at
// the given path.
func NewSQLiteStore(path string, policy Policy) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLiteStore{db: db, policy: policy}
	if err := s.provision(); err != nil {
		db.Close()
		return nil, fmt.Errorf("provision: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) provision() error {
	_, err := s.db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s TEXT PRIMARY KEY,
		%s TEXT UNIQUE NOT NULL,
		doc TEXT NOT NULL,
		description_vector TEXT,
		features_vector TEXT,
		tags_vector TEXT,
		reviews_count_vector TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`, productsSchema.Table, productsSchema.PartitionKey, productsSchema.UniqueKey))
	if err != nil {
		return translate(err)
	}
	return nil
}

// Insert persists a new record.
func (s *SQLiteStore) Insert(ctx context.Context, p catalog.Product) error {
	doc, err := json.Marshal(toDoc(p, s.policy))
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (sku, id, doc, description_vector, features_vector, tags_vector, reviews_count_vector, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, productsSchema.Table),
		p.SKU, p.ID, string(doc),
		vecArg(p.DescriptionVector), vecArg(p.FeaturesVector),
		vecArg(p.TagsVector), vecArg(p.ReviewsCountVector),
		p.CreatedAt.Format(time.RFC3339Nano), p.UpdatedAt.Format(time.RFC3339Nano),
	)
	return translate(err)
}

// Get returns the full record, vectors included.
func (s *SQLiteStore) Get(ctx context.Context, id string) (catalog.Product, error) {
	var (
		p        catalog.Product
		docRaw   string
		vectors  [4]sql.NullString
		created  string
		updated  string
	)
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, sku, doc, description_vector, features_vector, tags_vector, reviews_count_vector, created_at, updated_at
		FROM %s WHERE id = ?`, productsSchema.Table), id).Scan(
		&p.ID, &p.SKU, &docRaw,
		&vectors[0], &vectors[1], &vectors[2], &vectors[3],
		&created, &updated,
	)
	if err != nil {
		return catalog.Product{}, translate(err)
	}

	if err := s.hydrate(&p, docRaw, created, updated); err != nil {
		return catalog.Product{}, err
	}
	for i, f := range catalog.VectorFields {
		if !vectors[i].Valid {
			continue
		}
		vec, err := vector.Decode(vectors[i].String)
		if err != nil {
			return catalog.Product{}, fmt.Errorf("decode %s: %w", vectorColumn(f), err)
		}
		p.SetVector(f, vec)
	}
	return p, nil
}

// List returns all records projected to exclude vectors.
func (s *SQLiteStore) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, sku, doc, created_at, updated_at FROM %s`, productsSchema.Table))
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var (
			p       catalog.Product
			docRaw  string
			created string
			updated string
		)
		if err := rows.Scan(&p.ID, &p.SKU, &docRaw, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if err := s.hydrate(&p, docRaw, created, updated); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Replace overwrites the record keyed by p.ID.
func (s *SQLiteStore) Replace(ctx context.Context, p catalog.Product) error {
	doc, err := json.Marshal(toDoc(p, s.policy))
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s
		SET doc = ?, description_vector = ?, features_vector = ?, tags_vector = ?, reviews_count_vector = ?, updated_at = ?
		WHERE id = ?`, productsSchema.Table),
		string(doc),
		vecArg(p.DescriptionVector), vecArg(p.FeaturesVector),
		vecArg(p.TagsVector), vecArg(p.ReviewsCountVector),
		p.UpdatedAt.Format(time.RFC3339Nano), p.ID,
	)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes the record with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, productsSchema.Table), id)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Search scans every record carrying a vector for the field, computes the
// distance with the policy's metric, and returns the top matches in
// ascending distance order.
func (s *SQLiteStore) Search(ctx context.Context, field catalog.VectorField, vec []float64, top int) ([]catalog.Match, error) {
	fp, err := s.policy.Field(field)
	if err != nil {
		return nil, err
	}
	col := vectorColumn(field)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, sku, doc, %[1]s, created_at, updated_at
		FROM %[2]s WHERE %[1]s IS NOT NULL`, col, productsSchema.Table))
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var matches []catalog.Match
	for rows.Next() {
		var (
			p       catalog.Product
			docRaw  string
			vecRaw  string
			created string
			updated string
		)
		if err := rows.Scan(&p.ID, &p.SKU, &docRaw, &vecRaw, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if err := s.hydrate(&p, docRaw, created, updated); err != nil {
			return nil, err
		}
		stored, err := vector.Decode(vecRaw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", col, err)
		}

		score := vector.CosineDistance(stored, vec)
		if fp.Metric == MetricEuclidean {
			score = vector.EuclideanDistance(stored, vec)
		}
		matches = append(matches, catalog.Match{Product: p, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score < matches[j].Score })
	if len(matches) > top {
		matches = matches[:top]
	}
	return matches, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) hydrate(p *catalog.Product, docRaw, created, updated string) error {
	var doc productDoc
	if err := json.Unmarshal([]byte(docRaw), &doc); err != nil {
		return fmt.Errorf("unmarshal doc: %w", err)
	}
	applyDoc(doc, p)

	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	return nil
}
