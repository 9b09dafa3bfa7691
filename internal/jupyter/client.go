package jupyter

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// CellType is the kind of a notebook cell.
type CellType string

// Known cell types.
const (
	CellMarkdown CellType = "markdown"
	CellCode     CellType = "code"
	CellRaw      CellType = "raw"
)

// Cell is one ordered unit of notebook content as observed through a
// notebook session. Outputs is populated for code cells only.
type Cell struct {
	Index   int
	Type    CellType
	Source  string
	Outputs []Output
}

// KernelClient is the contract of the kernel-execution collaborator:
// one running execution backend with start/stop lifecycle and code
// submission. Results surface as outputs on the shared document, not as
// return values.
type KernelClient interface {
	// Start launches the remote kernel.
	Start(ctx context.Context) error

	// Stop shuts the remote kernel down.
	Stop(ctx context.Context) error

	// Execute submits code to the running kernel.
	Execute(ctx context.Context, code string) error
}

// NotebookSession is the contract of the notebook-document collaborator:
// one open connection to a live, collaboratively-edited notebook.
type NotebookSession interface {
	// Start opens the session.
	Start(ctx context.Context) error

	// Stop closes the session.
	Stop(ctx context.Context) error

	// AddMarkdownCell appends a markdown cell and returns its index.
	AddMarkdownCell(ctx context.Context, source string) (int, error)

	// AddCodeCell appends a code cell and returns its index.
	AddCodeCell(ctx context.Context, source string) (int, error)

	// ExecuteCell submits the cell at index for execution on the kernel.
	ExecuteCell(ctx context.Context, index int, kernel KernelClient) error

	// CellCount returns the current number of cells in the document.
	// It doubles as the session liveness probe: a fault here means the
	// connection is no longer usable.
	CellCount(ctx context.Context) (int, error)

	// Cell returns the cell at index.
	Cell(ctx context.Context, index int) (Cell, error)
}

// newHTTPClient builds an HTTP client that authenticates every request
// with the Jupyter token scheme ("Authorization: token <tok>").
func newHTTPClient(token string) *http.Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "token",
	})
	return oauth2.NewClient(context.Background(), source)
}
