package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// GraphDBStorage implements store.GraphStore on PostgreSQL. Entities and
// relationships live in the kg_nodes and kg_relationships tables and their
// properties are JSONB documents merged on every upsert.
type GraphDBStorage struct {
	conn          pgxIConn
	close         func()
	includeSource bool
}

type GraphDBStorageOption func(*GraphDBStorage)

// WithIncludeSource records the source document of every saved graph in
// kg_documents and links it to the saved nodes through kg_mentions.
func WithIncludeSource(enabled bool) GraphDBStorageOption {
	return func(s *GraphDBStorage) {
		s.includeSource = enabled
	}
}

// NewGraphDBStorage opens a connection pool and verifies it.
func NewGraphDBStorage(
	ctx context.Context,
	databaseURL string,
	opts ...GraphDBStorageOption,
) (*GraphDBStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := NewGraphDBStorageWithConnection(pool, opts...)
	s.close = pool.Close
	return s, nil
}

// NewGraphDBStorageWithConnection creates a GraphDBStorage on an existing
// connection. Closing the storage does not close conn.
func NewGraphDBStorageWithConnection(
	conn pgxIConn,
	opts ...GraphDBStorageOption,
) *GraphDBStorage {
	s := &GraphDBStorage{conn: conn}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Close releases the pool if the storage opened it.
func (s *GraphDBStorage) Close(ctx context.Context) error {
	if s.close != nil {
		s.close()
	}
	return nil
}

// isItemError reports whether err was raised by the server for a single
// statement. Connection, resource and authorization failures abort.
func isItemError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if len(pgErr.Code) < 2 {
		return false
	}
	switch pgErr.Code[:2] {
	case "08", "28", "53", "57", "58":
		return false
	}
	return true
}
