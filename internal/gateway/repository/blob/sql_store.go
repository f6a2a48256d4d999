package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the schema and driver of a SQLStore.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

var schemas = map[Dialect]string{
	DialectPostgres: `
CREATE TABLE IF NOT EXISTS mirrored_blobs (
    root TEXT NOT NULL,
    path TEXT NOT NULL,
    content BYTEA NOT NULL DEFAULT ''::bytea,
    size BIGINT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    PRIMARY KEY (root, path)
);
`,
	DialectSQLite: `
CREATE TABLE IF NOT EXISTS mirrored_blobs (
    root TEXT NOT NULL,
    path TEXT NOT NULL,
    content BLOB NOT NULL,
    size INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (root, path)
);
`,
}

var pgPlaceholder = regexp.MustCompile(`\$[0-9]+`)

// SQLStore keeps blobs in a relational table. Postgres goes through pgx,
// local files through sqlite.
type SQLStore struct {
	db         *sql.DB
	dialect    Dialect
	schemaOnce sync.Once
	schemaErr  error
}

// OpenSQLStore opens dsn with the driver matching dialect.
func OpenSQLStore(dialect Dialect, dsn string) (*SQLStore, error) {
	driver := ""
	switch dialect {
	case DialectPostgres:
		driver = "pgx"
	case DialectSQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported blob store dialect %q", dialect)
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("blob store dsn is required")
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// sqlite allows one writer at a time.
		db.SetMaxOpenConns(1)
	}
	return NewSQLStore(db, dialect), nil
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		schema, ok := schemas[s.dialect]
		if !ok {
			s.schemaErr = fmt.Errorf("unsupported blob store dialect %q", s.dialect)
			return
		}
		_, s.schemaErr = s.db.ExecContext(ctx, schema)
	})
	return s.schemaErr
}

// q rewrites $N placeholders for dialects that bind positionally with ?.
// Every query binds its arguments in order.
func (s *SQLStore) q(query string) string {
	if s.dialect == DialectSQLite {
		return pgPlaceholder.ReplaceAllString(query, "?")
	}
	return query
}

func (s *SQLStore) Put(ctx context.Context, root, path string, content []byte) error {
	root, path, err := normalizeKey(root, path)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if content == nil {
		content = []byte{}
	}
	_, err = s.db.ExecContext(ctx, s.q(`
INSERT INTO mirrored_blobs (root, path, content, size, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (root, path)
DO UPDATE SET content=EXCLUDED.content, size=EXCLUDED.size
`), root, path, content, int64(len(content)), time.Now().UTC())
	return err
}

func (s *SQLStore) Get(ctx context.Context, root, path string) ([]byte, error) {
	root, path, err := normalizeKey(root, path)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var content []byte
	err = s.db.QueryRowContext(ctx, s.q(`SELECT content FROM mirrored_blobs WHERE root=$1 AND path=$2`), root, path).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return content, err
}

func (s *SQLStore) List(ctx context.Context, root string) ([]string, error) {
	root, _, err := normalizeKey(root, "")
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT path FROM mirrored_blobs WHERE root=$1 ORDER BY path`), root)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// GetURL is empty: table rows have no public address.
func (s *SQLStore) GetURL(context.Context, string, string) (string, error) {
	return "", nil
}
