package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"

	"github.com/kweller/go-prodcat/catalog"
	"github.com/kweller/go-prodcat/vector"
)

// retryAttempts is the total attempt budget for transient store failures.
// The retry is invisible to callers beyond latency; after the budget is
// spent the operation surfaces ErrStoreUnavailable.
const retryAttempts = 3

const retryBackoff = 200 * time.Millisecond

// PostgresStore is the pgvector-backed catalog store. The wrapped *sql.DB
// is a pooled client safe for concurrent use; one PostgresStore is created
// at process start and shared by reference.
type PostgresStore struct {
	db     *sql.DB
	policy Policy
}

// NewPostgresStore opens a pooled connection and provisions the products
// table and its indexes from the policy. Provisioning is idempotent:
// re-running with the same policy is a no-op.
func NewPostgresStore(dsn string, policy Policy) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", translate(err))
	}

	s := &PostgresStore{db: db, policy: policy}
	if err := s.provision(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("provision: %w", err)
	}

	return s, nil
}

// provision creates the table, the general-purpose document index, and one
// vector index per field according to the policy's index family and
// metric.
func (s *PostgresStore) provision(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			%s text PRIMARY KEY,
			%s uuid UNIQUE NOT NULL,
			doc jsonb NOT NULL,
			description_vector vector(%[4]d),
			features_vector vector(%[4]d),
			tags_vector vector(%[4]d),
			reviews_count_vector vector(%[4]d),
			created_at timestamptz NOT NULL,
			updated_at timestamptz NOT NULL
		)`, productsSchema.Table, productsSchema.PartitionKey, productsSchema.UniqueKey, s.policy.Dimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_doc ON %[1]s USING gin (doc)`, productsSchema.Table),
	}

	for _, f := range catalog.VectorFields {
		fp, err := s.policy.Field(f)
		if err != nil {
			return err
		}
		stmts = append(stmts, vectorIndexDDL(productsSchema.Table, vectorColumn(f), fp))
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute %q: %w", firstLine(stmt), translate(err))
		}
	}
	return nil
}

// vectorIndexDDL renders the per-field vector index statement for the
// field's index family and metric.
func vectorIndexDDL(table, column string, fp FieldPolicy) string {
	if fp.Family == FamilyQuantizedFlat {
		return fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_%[2]s ON %[1]s USING ivfflat (%[2]s %[3]s) WITH (lists = 100)`,
			table, column, fp.Metric.opclass())
	}
	return fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_%[2]s ON %[1]s USING hnsw (%[2]s %[3]s)`,
		table, column, fp.Metric.opclass())
}

// Insert persists a new record.
func (s *PostgresStore) Insert(ctx context.Context, p catalog.Product) error {
	doc, err := json.Marshal(toDoc(p, s.policy))
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	return s.withRetry(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (sku, id, doc, description_vector, features_vector, tags_vector, reviews_count_vector, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, productsSchema.Table),
			p.SKU, p.ID, doc,
			vecArg(p.DescriptionVector), vecArg(p.FeaturesVector),
			vecArg(p.TagsVector), vecArg(p.ReviewsCountVector),
			p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
}

// Get returns the full record, vectors included.
func (s *PostgresStore) Get(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var (
			docRaw  []byte
			vectors [4]sql.NullString
		)
		err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
			SELECT id, sku, doc, description_vector, features_vector, tags_vector, reviews_count_vector, created_at, updated_at
			FROM %s WHERE id = $1`, productsSchema.Table), id).Scan(
			&p.ID, &p.SKU, &docRaw,
			&vectors[0], &vectors[1], &vectors[2], &vectors[3],
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return err
		}

		var doc productDoc
		if err := json.Unmarshal(docRaw, &doc); err != nil {
			return fmt.Errorf("unmarshal doc: %w", err)
		}
		applyDoc(doc, &p)

		for i, f := range catalog.VectorFields {
			if !vectors[i].Valid {
				continue
			}
			vec, err := vector.Decode(vectors[i].String)
			if err != nil {
				return fmt.Errorf("decode %s: %w", vectorColumn(f), err)
			}
			p.SetVector(f, vec)
		}
		return nil
	})
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

// List returns all records projected to exclude vectors, in natural scan
// order.
func (s *PostgresStore) List(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	err := s.withRetry(ctx, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT id, sku, doc, created_at, updated_at FROM %s`, productsSchema.Table))
		if err != nil {
			return err
		}
		defer rows.Close()

		products = products[:0]
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			products = append(products, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Replace overwrites the record keyed by p.ID.
func (s *PostgresStore) Replace(ctx context.Context, p catalog.Product) error {
	doc, err := json.Marshal(toDoc(p, s.policy))
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	return s.withRetry(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
			UPDATE %s
			SET doc = $2, description_vector = $3, features_vector = $4, tags_vector = $5, reviews_count_vector = $6, updated_at = $7
			WHERE id = $1`, productsSchema.Table),
			p.ID, doc,
			vecArg(p.DescriptionVector), vecArg(p.FeaturesVector),
			vecArg(p.TagsVector), vecArg(p.ReviewsCountVector),
			p.UpdatedAt,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return catalog.ErrNotFound
		}
		return nil
	})
}

// Delete removes the record with the given id.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, productsSchema.Table), id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return catalog.ErrNotFound
		}
		return nil
	})
}

// Search runs the policy-driven similarity query for one vector field.
func (s *PostgresStore) Search(ctx context.Context, field catalog.VectorField, vec []float64, top int) ([]catalog.Match, error) {
	query, err := searchQuery(s.policy, field)
	if err != nil {
		return nil, err
	}

	var matches []catalog.Match
	err = s.withRetry(ctx, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, query, vector.Encode(vec), top)
		if err != nil {
			return err
		}
		defer rows.Close()

		matches = matches[:0]
		for rows.Next() {
			var (
				p      catalog.Product
				docRaw []byte
				score  float64
			)
			if err := rows.Scan(&p.ID, &p.SKU, &docRaw, &p.CreatedAt, &p.UpdatedAt, &score); err != nil {
				return fmt.Errorf("scan match: %w", err)
			}
			var doc productDoc
			if err := json.Unmarshal(docRaw, &doc); err != nil {
				return fmt.Errorf("unmarshal doc: %w", err)
			}
			applyDoc(doc, &p)
			matches = append(matches, catalog.Match{Product: p, Score: score})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// withRetry runs op, translating its error into the taxonomy and retrying
// transient failures on a fixed backoff until the attempt budget is spent.
func (s *PostgresStore) withRetry(ctx context.Context, op func(context.Context) error) error {
	b := retry.NewConstant(retryBackoff)
	return retry.Do(ctx, retry.WithMaxRetries(retryAttempts-1, b), func(ctx context.Context) error {
		err := translate(op(ctx))
		if err == nil {
			return nil
		}
		if errors.Is(err, catalog.ErrStoreUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// scanProduct reads one vectorless row (id, sku, doc, created, updated).
func scanProduct(rows *sql.Rows) (catalog.Product, error) {
	var (
		p      catalog.Product
		docRaw []byte
	)
	if err := rows.Scan(&p.ID, &p.SKU, &docRaw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return catalog.Product{}, fmt.Errorf("scan product: %w", err)
	}
	var doc productDoc
	if err := json.Unmarshal(docRaw, &doc); err != nil {
		return catalog.Product{}, fmt.Errorf("unmarshal doc: %w", err)
	}
	applyDoc(doc, &p)
	return p, nil
}

// vecArg renders a vector for a pgvector parameter, NULL when absent.
func vecArg(v []float64) any {
	if len(v) == 0 {
		return nil
	}
	return vector.Encode(v)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
