package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jupyter-bridge/jupyter-mcp/internal/jupyter"
	"github.com/jupyter-bridge/jupyter-mcp/internal/logging"
)

// Poller waits for a code cell to accumulate execution outputs.
type Poller struct {
	// MaxWait bounds the total wait. The bound is advisory: it limits
	// the wait, not the remote execution, which may still be running
	// when WaitForOutputs returns.
	MaxWait time.Duration

	// Interval is the sleep between output checks.
	Interval time.Duration

	logger *logging.Logger

	// sleep is replaceable in tests.
	sleep func(time.Duration)
}

// NewPoller creates a poller with the given time budget and check interval.
func NewPoller(maxWait, interval time.Duration, logger *logging.Logger) *Poller {
	return &Poller{
		MaxWait:  maxWait,
		Interval: interval,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// WaitForOutputs polls the cell at cellIndex until it has at least one
// output or the time budget runs out. Non-empty outputs are treated as
// "execution likely complete", even though streaming outputs can still be
// arriving, and a cell that legitimately produces no output rides out the
// full budget. The timeout is soft: whatever outputs exist are returned, never
// an error. Probe faults during a poll iteration are logged and the loop
// continues.
func (p *Poller) WaitForOutputs(ctx context.Context, sess jupyter.NotebookSession, cellIndex int) []jupyter.Output {
	for elapsed := time.Duration(0); elapsed < p.MaxWait; elapsed += p.Interval {
		p.sleep(p.Interval)

		outputs, err := p.probeOutputs(ctx, sess, cellIndex)
		if err != nil {
			p.logger.Warn("Output probe failed, continuing to poll", "cell_index", cellIndex, "error", err)
			continue
		}
		if len(outputs) > 0 {
			break
		}
	}

	// One final read is the authoritative result regardless of how the
	// loop exited.
	outputs, err := p.probeOutputs(ctx, sess, cellIndex)
	if err != nil {
		p.logger.Warn("Final output read failed", "cell_index", cellIndex, "error", err)
		return []jupyter.Output{}
	}
	return outputs
}

// probeOutputs reads the current outputs of the cell at cellIndex. The
// document may have been concurrently mutated by another collaborator, so
// the index is guarded against the current cell count; out-of-range reads
// as "no outputs yet". Panics from the session handle are converted to
// errors so one bad iteration never kills the loop.
func (p *Poller) probeOutputs(ctx context.Context, sess jupyter.NotebookSession, cellIndex int) (outputs []jupyter.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			outputs, err = nil, fmt.Errorf("output probe panicked: %v", r)
		}
	}()

	count, err := sess.CellCount(ctx)
	if err != nil {
		return nil, err
	}
	if cellIndex < 0 || cellIndex >= count {
		return []jupyter.Output{}, nil
	}

	cell, err := sess.Cell(ctx, cellIndex)
	if err != nil {
		return nil, err
	}
	if cell.Outputs == nil {
		return []jupyter.Output{}, nil
	}
	return cell.Outputs, nil
}
