// Package notebook implements the Jupyter notebook tools: appending
// markdown cells, appending and executing code cells, reading the full
// notebook content, and restarting the kernel.
package notebook

import (
	"context"
	"fmt"
	"time"

	"github.com/jupyter-bridge/jupyter-mcp/internal/errors"
	"github.com/jupyter-bridge/jupyter-mcp/internal/jupyter"
	"github.com/jupyter-bridge/jupyter-mcp/internal/logging"
	"github.com/jupyter-bridge/jupyter-mcp/internal/session"
)

// Retry policy for operations that can fail from a stale connection.
const (
	maxRetries   = 3
	retryBackoff = 1 * time.Second
)

// Result strings match the original tool contract.
const (
	markdownAddedMessage   = "Jupyter Markdown cell added."
	kernelRestartedMessage = "Jupyter kernel restarted successfully"
)

// CellSummary is one cell in the read_notebook_content result. Outputs is
// present for code cells only.
type CellSummary struct {
	Index   int      `json:"index"`
	Type    string   `json:"type"`
	Content string   `json:"content"`
	Outputs []string `json:"outputs,omitempty"`
}

// Content is the read_notebook_content result. On failure Error carries
// the fault description and the cell list is empty.
type Content struct {
	Error      string        `json:"error,omitempty"`
	Cells      []CellSummary `json:"cells"`
	TotalCells int           `json:"total_cells"`
}

// Service implements the notebook tool operations against the shared
// session and kernel handles. Every operation returns a result value,
// never an error: faults are retried where recoverable and otherwise
// converted to descriptive failure values, so the caller protocol always
// receives a response.
type Service struct {
	sessions *session.Manager
	kernel   *session.KernelHolder
	poller   *session.Poller
	logger   *logging.Logger

	// sleep is replaceable in tests.
	sleep func(time.Duration)
}

// NewService creates a notebook tool service.
func NewService(sessions *session.Manager, kernel *session.KernelHolder, poller *session.Poller, logger *logging.Logger) *Service {
	return &Service{
		sessions: sessions,
		kernel:   kernel,
		poller:   poller,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// AddMarkdownCell appends a markdown cell to the notebook.
func (s *Service) AddMarkdownCell(ctx context.Context, content string) string {
	s.logger.Info("Adding markdown cell")

	err := s.withRetry(ctx, "add markdown cell", func(sess jupyter.NotebookSession) error {
		index, err := sess.AddMarkdownCell(ctx, content)
		if err != nil {
			return err
		}

		s.verifyCellType(ctx, sess, index, jupyter.CellMarkdown)
		return nil
	})
	if err != nil {
		s.logger.Error("Error adding markdown cell", "error", err)
		return fmt.Sprintf("Error adding markdown cell: %v", err)
	}

	s.logger.Info("Markdown cell added successfully")
	return markdownAddedMessage
}

// AddExecuteCodeCell appends a code cell, executes it on the kernel, waits
// for outputs, and returns their normalized display strings.
func (s *Service) AddExecuteCodeCell(ctx context.Context, code string) []string {
	s.logger.Info("Adding and executing code cell")

	var outputs []jupyter.Output
	err := s.withRetry(ctx, "execute code cell", func(sess jupyter.NotebookSession) error {
		index, err := sess.AddCodeCell(ctx, code)
		if err != nil {
			return err
		}
		s.logger.Info("Code cell added, executing", "cell_index", index)

		if err := sess.ExecuteCell(ctx, index, s.kernel.Current()); err != nil {
			return err
		}

		// Poll faults are swallowed inside the poller; they never
		// trigger another attempt.
		outputs = s.poller.WaitForOutputs(ctx, sess, index)
		return nil
	})
	if err != nil {
		s.logger.Error("Error executing code cell", "error", err)
		return []string{fmt.Sprintf("Error executing code cell: %v", err)}
	}

	normalized := jupyter.NormalizeOutputs(outputs)
	s.logger.Info("Code cell execution complete", "outputs", len(normalized))
	return normalized
}

// ReadNotebookContent returns every cell of the notebook in document
// order. This is a single-attempt read: any fault yields a Content value
// with the error description and an empty cell list.
func (s *Service) ReadNotebookContent(ctx context.Context) Content {
	s.logger.Info("Reading notebook content")

	sess, err := s.sessions.Ensure(ctx)
	if err != nil {
		s.logger.Error("Error reading notebook content", "error", err)
		return errorContent(err)
	}

	count, err := sess.CellCount(ctx)
	if err != nil {
		s.logger.Error("Error reading notebook content", "error", err)
		return errorContent(err)
	}

	cells := make([]CellSummary, 0, count)
	for i := 0; i < count; i++ {
		cell, err := sess.Cell(ctx, i)
		if err != nil {
			s.logger.Error("Error reading notebook content", "cell_index", i, "error", err)
			return errorContent(err)
		}

		summary := CellSummary{
			Index:   cell.Index,
			Type:    string(cell.Type),
			Content: cell.Source,
		}
		if cell.Type == jupyter.CellCode {
			summary.Outputs = jupyter.NormalizeOutputs(cell.Outputs)
		}
		cells = append(cells, summary)
	}

	s.logger.Info("Read notebook content", "cells", len(cells))
	return Content{
		Cells:      cells,
		TotalCells: len(cells),
	}
}

// RestartKernel replaces the kernel wholesale: stop the old client, drop
// the notebook session if one is open, start a fresh client. It does not
// retry; a kernel restart is itself the recovery action.
func (s *Service) RestartKernel(ctx context.Context) string {
	s.logger.Info("Restarting kernel")

	if err := s.kernel.Stop(ctx); err != nil {
		s.logger.Error("Error restarting kernel", "error", err)
		return fmt.Sprintf("Error restarting kernel: %v", err)
	}

	// The old session was bound to the old kernel; drop it so the next
	// operation reconnects fresh. Faults here are ignored.
	s.sessions.Invalidate(ctx)

	if err := s.kernel.Start(ctx); err != nil {
		s.logger.Error("Error restarting kernel", "error", err)
		return fmt.Sprintf("Error restarting kernel: %v", err)
	}

	s.logger.Info("Kernel restarted successfully")
	return kernelRestartedMessage
}

// withRetry runs fn against a verified session, retrying on any fault
// while attempts remain. Between attempts the shared session is
// invalidated and a fixed backoff is slept. When the budget is exhausted
// the returned error embeds the attempt count and the last fault.
func (s *Service) withRetry(ctx context.Context, operation string, fn func(sess jupyter.NotebookSession) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		sess, err := s.sessions.Ensure(ctx)
		if err == nil {
			err = fn(sess)
			if err == nil {
				return nil
			}
		}

		lastErr = err
		s.logger.Warn("Operation attempt failed",
			"operation", operation,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err)

		if attempt < maxRetries {
			s.sessions.Invalidate(ctx)
			s.sleep(retryBackoff)
		}
	}

	return errors.New("failed after %d attempts: %v", maxRetries, lastErr)
}

// verifyCellType checks that the cell at index has the expected type.
// A mismatch means another collaborator mutated the document concurrently;
// it is logged but never treated as a failure.
func (s *Service) verifyCellType(ctx context.Context, sess jupyter.NotebookSession, index int, want jupyter.CellType) {
	cell, err := sess.Cell(ctx, index)
	if err != nil {
		s.logger.Warn("Could not verify added cell", "cell_index", index, "error", err)
		return
	}
	if cell.Type != want {
		s.logger.Warn("Added cell has unexpected type",
			"cell_index", index,
			"want", string(want),
			"got", string(cell.Type))
	}
}

func errorContent(err error) Content {
	return Content{
		Error:      err.Error(),
		Cells:      []CellSummary{},
		TotalCells: 0,
	}
}
