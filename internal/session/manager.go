// Package session owns the process-wide singleton handles to the notebook
// document and the execution kernel, and the polling loop that waits for
// cell outputs.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jupyter-bridge/jupyter-mcp/internal/errors"
	"github.com/jupyter-bridge/jupyter-mcp/internal/jupyter"
	"github.com/jupyter-bridge/jupyter-mcp/internal/logging"
)

// Factory constructs a new, unstarted notebook session.
type Factory func(ctx context.Context) (jupyter.NotebookSession, error)

// Manager owns the single live notebook session for the process. The
// session is created lazily, health-checked before reuse, and transparently
// replaced when the connection has dropped. All replacement happens under a
// mutex so concurrent tool invocations never observe a half-swapped handle.
type Manager struct {
	factory Factory
	logger  *logging.Logger

	mu      sync.Mutex
	current jupyter.NotebookSession
}

// NewManager creates a manager that builds sessions with the given factory.
func NewManager(factory Factory, logger *logging.Logger) *Manager {
	return &Manager{
		factory: factory,
		logger:  logger,
	}
}

// GetOrCreate returns the cached session, creating and starting a new one
// if none is held. Open or handshake failures are returned as connection
// errors without any retry; retrying is the caller's policy.
func (m *Manager) GetOrCreate(ctx context.Context) (jupyter.NotebookSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateLocked(ctx)
}

func (m *Manager) getOrCreateLocked(ctx context.Context) (jupyter.NotebookSession, error) {
	if m.current != nil {
		return m.current, nil
	}

	sess, err := m.factory(ctx)
	if err != nil {
		return nil, errors.Connection("create notebook session", err)
	}
	if err := sess.Start(ctx); err != nil {
		return nil, errors.Connection("start notebook session", err)
	}

	m.current = sess
	m.logger.Info("Notebook session established")
	return m.current, nil
}

// Ensure returns the cached session if its liveness probe succeeds,
// otherwise discards it and creates a fresh one. The probe exists because
// the underlying transport can drop silently; a dead handle must be
// detected here, before it corrupts a write.
func (m *Manager) Ensure(ctx context.Context) (jupyter.NotebookSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		err := probe(ctx, m.current)
		if err == nil {
			return m.current, nil
		}
		m.logger.Warn("Notebook session probe failed, reconnecting", "error", err)
		m.discardLocked(ctx)
	}

	return m.getOrCreateLocked(ctx)
}

// Invalidate drops the cached session after a best-effort stop. The next
// call to GetOrCreate or Ensure builds a fresh one.
func (m *Manager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discardLocked(ctx)
}

// Close stops and clears the cached session. Used during shutdown and
// kernel restart.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}

	err := m.current.Stop(ctx)
	m.current = nil
	if err != nil {
		return errors.Connection("stop notebook session", err)
	}
	return nil
}

func (m *Manager) discardLocked(ctx context.Context) {
	if m.current == nil {
		return
	}
	if err := m.current.Stop(ctx); err != nil {
		m.logger.Debug("Stopping stale notebook session failed", "error", err)
	}
	m.current = nil
}

// probe dereferences the session's live document state. Any fault counts
// as connection loss, including panics from a handle whose internal state
// is gone, which is why the recover guard is load-bearing.
func probe(ctx context.Context, sess jupyter.NotebookSession) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session probe panicked: %v", r)
		}
	}()

	_, err = sess.CellCount(ctx)
	return err
}
