package session

import (
	"context"

	"github.com/jupyter-bridge/jupyter-mcp/internal/jupyter"
)

// fakeSession is an in-memory NotebookSession with fault injection knobs.
type fakeSession struct {
	cells []jupyter.Cell

	startErr error
	countErr error
	cellErr  error

	// countPanics makes CellCount panic instead of returning an error,
	// simulating a handle whose internal state is gone.
	countPanics bool

	// failProbes makes the next N CellCount calls fail before the
	// session recovers.
	failProbes int

	started bool
	stopped bool

	// onExecute lets a test populate outputs when a cell is executed.
	onExecute func(index int)
	executed  []int
}

var _ jupyter.NotebookSession = (*fakeSession)(nil)

func (f *fakeSession) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeSession) Stop(ctx context.Context) error {
	f.stopped = true
	return nil
}

func (f *fakeSession) AddMarkdownCell(ctx context.Context, source string) (int, error) {
	f.cells = append(f.cells, jupyter.Cell{
		Index:  len(f.cells),
		Type:   jupyter.CellMarkdown,
		Source: source,
	})
	return len(f.cells) - 1, nil
}

func (f *fakeSession) AddCodeCell(ctx context.Context, source string) (int, error) {
	f.cells = append(f.cells, jupyter.Cell{
		Index:  len(f.cells),
		Type:   jupyter.CellCode,
		Source: source,
	})
	return len(f.cells) - 1, nil
}

func (f *fakeSession) ExecuteCell(ctx context.Context, index int, kernel jupyter.KernelClient) error {
	f.executed = append(f.executed, index)
	if f.onExecute != nil {
		f.onExecute(index)
	}
	return nil
}

func (f *fakeSession) CellCount(ctx context.Context) (int, error) {
	if f.countPanics {
		panic("ycells is gone")
	}
	if f.failProbes > 0 {
		f.failProbes--
		return 0, f.probeErr()
	}
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.cells), nil
}

func (f *fakeSession) Cell(ctx context.Context, index int) (jupyter.Cell, error) {
	if f.cellErr != nil {
		return jupyter.Cell{}, f.cellErr
	}
	if index < 0 || index >= len(f.cells) {
		return jupyter.Cell{}, errOutOfRange
	}
	return f.cells[index], nil
}

func (f *fakeSession) probeErr() error {
	if f.countErr != nil {
		return f.countErr
	}
	return errProbeFailed
}

// fakeKernel is an in-memory KernelClient.
type fakeKernel struct {
	startErr error
	stopErr  error

	started int
	stopped int
	codes   []string
}

var _ jupyter.KernelClient = (*fakeKernel)(nil)

func (f *fakeKernel) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	return nil
}

func (f *fakeKernel) Stop(ctx context.Context) error {
	if f.stopErr != nil {
		return f.stopErr
	}
	f.stopped++
	return nil
}

func (f *fakeKernel) Execute(ctx context.Context, code string) error {
	f.codes = append(f.codes, code)
	return nil
}
