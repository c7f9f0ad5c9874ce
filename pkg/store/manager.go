package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/textgraph/internal/metrics"
	"github.com/OFFIS-RIT/textgraph/pkg/common"
	"github.com/OFFIS-RIT/textgraph/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// Opener creates a connected GraphStore.
type Opener func(ctx context.Context) (GraphStore, error)

// Manager owns the single durable store handle of a process. The handle is
// opened on first use and reused afterwards. A failed open leaves the
// handle unset so the next call tries again. Operations on the handle are
// serialized.
type Manager struct {
	open  Opener
	name  string
	group singleflight.Group

	mu    sync.Mutex
	store GraphStore

	opMu sync.Mutex
}

// NewManager returns a Manager using open to create the handle. A nil
// opener yields a Manager whose operations fail with ErrNotConfigured.
func NewManager(name string, open Opener) *Manager {
	return &Manager{open: open, name: name}
}

// Name is the configured backend name, for logs and metrics.
func (m *Manager) Name() string {
	return m.name
}

// Configured reports whether a backend is available.
func (m *Manager) Configured() bool {
	return m != nil && m.open != nil
}

// Get returns the store handle, opening it if necessary. Concurrent first
// calls share one open attempt.
func (m *Manager) Get(ctx context.Context) (GraphStore, error) {
	if !m.Configured() {
		return nil, ErrNotConfigured
	}

	m.mu.Lock()
	if m.store != nil {
		s := m.store
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	result, err, _ := m.group.Do("open", func() (any, error) {
		m.mu.Lock()
		if m.store != nil {
			s := m.store
			m.mu.Unlock()
			return s, nil
		}
		m.mu.Unlock()

		logger.Info("[Store] connecting", "backend", m.name)
		s, err := m.open(ctx)
		if err != nil {
			logger.Error("[Store] failed to connect", "backend", m.name, "err", err)
			return nil, fmt.Errorf("failed to open %s store: %w", m.name, err)
		}

		m.mu.Lock()
		m.store = s
		m.mu.Unlock()
		logger.Info("[Store] connected", "backend", m.name)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(GraphStore), nil
}

// SaveGraph writes g through the managed handle.
func (m *Manager) SaveGraph(ctx context.Context, g *common.Graph, opts SaveOptions) (SaveResult, error) {
	s, err := m.Get(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	m.opMu.Lock()
	defer m.opMu.Unlock()
	res, err := s.SaveGraph(ctx, g, opts)
	m.observe("save", err)
	return res, err
}

// ListEntities reads all entities through the managed handle.
func (m *Manager) ListEntities(ctx context.Context) ([]common.StoredNode, error) {
	s, err := m.Get(ctx)
	if err != nil {
		return nil, err
	}
	m.opMu.Lock()
	defer m.opMu.Unlock()
	nodes, err := s.ListEntities(ctx)
	m.observe("list_entities", err)
	return nodes, err
}

// ListRelationships reads all relationships through the managed handle.
func (m *Manager) ListRelationships(ctx context.Context) ([]common.StoredRelationship, error) {
	s, err := m.Get(ctx)
	if err != nil {
		return nil, err
	}
	m.opMu.Lock()
	defer m.opMu.Unlock()
	rels, err := s.ListRelationships(ctx)
	m.observe("list_relationships", err)
	return rels, err
}

func (m *Manager) observe(op string, err error) {
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	metrics.StoreOperations.WithLabelValues(m.name, op, result).Inc()
}

// Close releases the handle if one was opened. The Manager may open a new
// handle afterwards.
func (m *Manager) Close(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	s := m.store
	m.store = nil
	m.mu.Unlock()

	if s == nil {
		return nil
	}
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return s.Close(ctx)
}
