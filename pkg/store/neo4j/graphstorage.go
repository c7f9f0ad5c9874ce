package neo4j

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/textgraph/pkg/logger"

	neo4jv5 "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// BaseEntityLabel is added to every stored entity so that all extracted
// nodes share one indexable label.
const BaseEntityLabel = "__Entity__"

type cypherRunner interface {
	Run(ctx context.Context, mode neo4jv5.AccessMode, cypher string, params map[string]any) ([]*neo4jv5.Record, error)
	Close(ctx context.Context) error
}

type driverRunner struct {
	driver   neo4jv5.DriverWithContext
	database string
}

func (d *driverRunner) Run(
	ctx context.Context,
	mode neo4jv5.AccessMode,
	cypher string,
	params map[string]any,
) ([]*neo4jv5.Record, error) {
	session := d.driver.NewSession(ctx, neo4jv5.SessionConfig{
		AccessMode:   mode,
		DatabaseName: d.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

func (d *driverRunner) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

// GraphNeo4jStorage implements store.GraphStore on a Neo4j database.
type GraphNeo4jStorage struct {
	run           cypherRunner
	baseLabel     bool
	includeSource bool
}

// Config holds the connection settings of a Neo4j store.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

type GraphNeo4jStorageOption func(*GraphNeo4jStorage)

// WithBaseEntityLabel toggles the shared __Entity__ label on stored nodes.
func WithBaseEntityLabel(enabled bool) GraphNeo4jStorageOption {
	return func(s *GraphNeo4jStorage) {
		s.baseLabel = enabled
	}
}

// WithIncludeSource stores a Document node per saved graph, linked to
// every node of that graph by a MENTIONS relationship.
func WithIncludeSource(enabled bool) GraphNeo4jStorageOption {
	return func(s *GraphNeo4jStorage) {
		s.includeSource = enabled
	}
}

// NewGraphNeo4jStorage connects to Neo4j and verifies the connection.
//
// Example:
//
//	s, err := neo4j.NewGraphNeo4jStorage(ctx, neo4j.Config{
//		URI:      "bolt://localhost:7687",
//		Username: "neo4j",
//		Password: "password",
//	}, neo4j.WithBaseEntityLabel(true))
func NewGraphNeo4jStorage(
	ctx context.Context,
	cfg Config,
	opts ...GraphNeo4jStorageOption,
) (*GraphNeo4jStorage, error) {
	driver, err := neo4jv5.NewDriverWithContext(cfg.URI, neo4jv5.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", cfg.URI, err)
	}

	s := newGraphNeo4jStorage(&driverRunner{driver: driver, database: cfg.Database}, opts...)
	s.ensureIndexes(ctx)
	return s, nil
}

func newGraphNeo4jStorage(run cypherRunner, opts ...GraphNeo4jStorageOption) *GraphNeo4jStorage {
	s := &GraphNeo4jStorage{
		run:       run,
		baseLabel: true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

func (s *GraphNeo4jStorage) ensureIndexes(ctx context.Context) {
	if !s.baseLabel {
		return
	}
	query := "CREATE INDEX entity_id IF NOT EXISTS FOR (n:" + BaseEntityLabel + ") ON (n.id)"
	if _, err := s.run.Run(ctx, neo4jv5.AccessModeWrite, query, nil); err != nil {
		logger.Warn("[Store] failed to create entity index", "err", err)
	}
}

// Close closes the underlying driver.
func (s *GraphNeo4jStorage) Close(ctx context.Context) error {
	return s.run.Close(ctx)
}

// isItemError reports whether err was raised by the server for a single
// statement, in which case only that item is skipped. Security errors
// and everything that is not a server error abort the operation.
func isItemError(err error) bool {
	if !neo4jv5.IsNeo4jError(err) {
		return false
	}
	var nerr *neo4jv5.Neo4jError
	if !errors.As(err, &nerr) {
		return false
	}
	return strings.HasPrefix(nerr.Code, "Neo.ClientError.") &&
		!strings.HasPrefix(nerr.Code, "Neo.ClientError.Security.")
}
