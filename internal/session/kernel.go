package session

import (
	"context"
	"sync"

	"github.com/jupyter-bridge/jupyter-mcp/internal/errors"
	"github.com/jupyter-bridge/jupyter-mcp/internal/jupyter"
	"github.com/jupyter-bridge/jupyter-mcp/internal/logging"
)

// KernelFactory constructs a new, unstarted kernel client.
type KernelFactory func() jupyter.KernelClient

// KernelHolder owns the single live kernel client for the process. The
// kernel is started once at process start and replaced wholesale on an
// explicit restart; it is never pooled.
type KernelHolder struct {
	factory KernelFactory
	logger  *logging.Logger

	mu      sync.Mutex
	current jupyter.KernelClient
}

// NewKernelHolder creates a holder that builds kernel clients with the
// given factory.
func NewKernelHolder(factory KernelFactory, logger *logging.Logger) *KernelHolder {
	return &KernelHolder{
		factory: factory,
		logger:  logger,
	}
}

// Start constructs a fresh kernel client and starts it, replacing any
// previous one.
func (h *KernelHolder) Start(ctx context.Context) error {
	kernel := h.factory()
	if err := kernel.Start(ctx); err != nil {
		return errors.Execution("start kernel client", err)
	}

	h.mu.Lock()
	h.current = kernel
	h.mu.Unlock()

	h.logger.Info("Kernel client started")
	return nil
}

// Stop stops the current kernel client and clears it. Stopping a holder
// with no running kernel is a no-op.
func (h *KernelHolder) Stop(ctx context.Context) error {
	h.mu.Lock()
	kernel := h.current
	h.current = nil
	h.mu.Unlock()

	if kernel == nil {
		return nil
	}
	if err := kernel.Stop(ctx); err != nil {
		return errors.Execution("stop kernel client", err)
	}

	h.logger.Info("Kernel client stopped")
	return nil
}

// Current returns the running kernel client, or nil when none is running.
func (h *KernelHolder) Current() jupyter.KernelClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}
