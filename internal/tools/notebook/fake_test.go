package notebook

import (
	"context"
	"errors"

	"github.com/jupyter-bridge/jupyter-mcp/internal/jupyter"
)

var errConnDropped = errors.New("websocket closed")

// fakeSession is an in-memory NotebookSession with fault injection knobs.
type fakeSession struct {
	cells []jupyter.Cell

	startErr   error
	addErr     error
	execErr    error
	failProbes int

	stopped bool

	// onExecute lets a test populate outputs when a cell is executed.
	onExecute func(index int)
}

var _ jupyter.NotebookSession = (*fakeSession)(nil)

func (f *fakeSession) Start(ctx context.Context) error {
	return f.startErr
}

func (f *fakeSession) Stop(ctx context.Context) error {
	f.stopped = true
	return nil
}

func (f *fakeSession) AddMarkdownCell(ctx context.Context, source string) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.cells = append(f.cells, jupyter.Cell{
		Index:  len(f.cells),
		Type:   jupyter.CellMarkdown,
		Source: source,
	})
	return len(f.cells) - 1, nil
}

func (f *fakeSession) AddCodeCell(ctx context.Context, source string) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.cells = append(f.cells, jupyter.Cell{
		Index:  len(f.cells),
		Type:   jupyter.CellCode,
		Source: source,
	})
	return len(f.cells) - 1, nil
}

func (f *fakeSession) ExecuteCell(ctx context.Context, index int, kernel jupyter.KernelClient) error {
	if f.execErr != nil {
		return f.execErr
	}
	if f.onExecute != nil {
		f.onExecute(index)
	}
	return nil
}

func (f *fakeSession) CellCount(ctx context.Context) (int, error) {
	if f.failProbes > 0 {
		f.failProbes--
		return 0, errConnDropped
	}
	return len(f.cells), nil
}

func (f *fakeSession) Cell(ctx context.Context, index int) (jupyter.Cell, error) {
	if index < 0 || index >= len(f.cells) {
		return jupyter.Cell{}, errors.New("cell index out of range")
	}
	return f.cells[index], nil
}

// fakeKernel is an in-memory KernelClient.
type fakeKernel struct {
	startErr error
	stopErr  error

	started int
	stopped int
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
	return nil
}
