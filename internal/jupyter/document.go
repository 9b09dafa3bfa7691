package jupyter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/jupyter-bridge/jupyter-mcp/internal/errors"
	"github.com/jupyter-bridge/jupyter-mcp/internal/logging"
)

// NotebookWebsocketURL builds the collaboration-room websocket URL for a
// notebook document: http(s) scheme swapped to ws(s), the room path for the
// notebook, and the access token as a query parameter.
func NotebookWebsocketURL(serverURL, token, notebookPath string) (string, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return "", errors.Configuration("parse server URL", err)
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", errors.Configuration(fmt.Sprintf("unsupported server URL scheme %q", parsed.Scheme), nil)
	}

	// The raw room string goes on Path; URL.String() escapes it with path
	// rules, which keep "/" and ":" intact. Pre-escaping here would make
	// String() re-escape the "%" and corrupt nested notebook paths.
	room := "json:notebook:" + notebookPath
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/api/collaboration/room/" + room

	query := parsed.Query()
	if token != "" {
		query.Set("token", token)
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// rawCell mirrors the wire format of one notebook cell. Outputs stay as raw
// JSON so untouched cells round-trip byte-faithfully through a save.
type rawCell struct {
	ID             string          `json:"id,omitempty"`
	CellType       string          `json:"cell_type"`
	Source         multilineText   `json:"source"`
	Metadata       map[string]any  `json:"metadata"`
	Outputs        json.RawMessage `json:"outputs,omitempty"`
	ExecutionCount *int            `json:"execution_count,omitempty"`
}

// rawNotebook mirrors the wire format of the notebook document body.
type rawNotebook struct {
	Cells         []rawCell      `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

// contentsEnvelope is the contents-API wrapper around a notebook document.
type contentsEnvelope struct {
	Name    string          `json:"name,omitempty"`
	Path    string          `json:"path,omitempty"`
	Type    string          `json:"type"`
	Format  string          `json:"format,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// RESTNotebookSession is a notebook-document session backed by the Jupyter
// contents API. Every operation round-trips through the server so the
// session always observes the live document state; the collaborative sync
// protocol itself stays on the server side.
type RESTNotebookSession struct {
	serverURL    string
	notebookPath string
	roomURL      string
	httpClient   *http.Client
	logger       *logging.Logger
}

var _ NotebookSession = (*RESTNotebookSession)(nil)

// NewNotebookSession creates a session for the given notebook document.
// The connection is not verified until Start is called.
func NewNotebookSession(serverURL, token, notebookPath string, logger *logging.Logger) (*RESTNotebookSession, error) {
	roomURL, err := NotebookWebsocketURL(serverURL, token, notebookPath)
	if err != nil {
		return nil, err
	}

	return &RESTNotebookSession{
		serverURL:    strings.TrimRight(serverURL, "/"),
		notebookPath: notebookPath,
		roomURL:      roomURL,
		httpClient:   newHTTPClient(token),
		logger:       logger.WithNotebook(notebookPath),
	}, nil
}

// RoomURL returns the collaboration-room websocket URL identifying the
// shared document this session is bound to.
func (s *RESTNotebookSession) RoomURL() string {
	return s.roomURL
}

// Start verifies the notebook document is reachable.
func (s *RESTNotebookSession) Start(ctx context.Context) error {
	endpoint := s.contentsURL() + "?content=0"
	if err := s.doJSON(ctx, http.MethodGet, endpoint, nil, nil); err != nil {
		return errors.Connection("open notebook session", err)
	}

	s.logger.Debug("Notebook session started", "room", s.roomURL)
	return nil
}

// Stop closes the session. The contents-API transport holds no connection
// state, so this only logs.
func (s *RESTNotebookSession) Stop(ctx context.Context) error {
	s.logger.Debug("Notebook session stopped")
	return nil
}

// AddMarkdownCell appends a markdown cell and returns its index.
func (s *RESTNotebookSession) AddMarkdownCell(ctx context.Context, source string) (int, error) {
	return s.appendCell(ctx, rawCell{
		ID:       uuid.NewString(),
		CellType: string(CellMarkdown),
		Source:   multilineText(source),
		Metadata: map[string]any{},
	})
}

// AddCodeCell appends a code cell with empty outputs and returns its index.
func (s *RESTNotebookSession) AddCodeCell(ctx context.Context, source string) (int, error) {
	return s.appendCell(ctx, rawCell{
		ID:       uuid.NewString(),
		CellType: string(CellCode),
		Source:   multilineText(source),
		Metadata: map[string]any{},
		Outputs:  json.RawMessage("[]"),
	})
}

// ExecuteCell submits the source of the cell at index to the kernel.
func (s *RESTNotebookSession) ExecuteCell(ctx context.Context, index int, kernel KernelClient) error {
	doc, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(doc.Cells) {
		return errors.Execution(fmt.Sprintf("cell index %d out of range (%d cells)", index, len(doc.Cells)), nil)
	}
	if kernel == nil {
		return errors.Execution("no running kernel", nil)
	}

	return kernel.Execute(ctx, string(doc.Cells[index].Source))
}

// CellCount returns the current number of cells in the document.
func (s *RESTNotebookSession) CellCount(ctx context.Context) (int, error) {
	doc, err := s.fetch(ctx)
	if err != nil {
		return 0, err
	}
	return len(doc.Cells), nil
}

// Cell returns the cell at index, with outputs decoded for code cells.
func (s *RESTNotebookSession) Cell(ctx context.Context, index int) (Cell, error) {
	doc, err := s.fetch(ctx)
	if err != nil {
		return Cell{}, err
	}
	if index < 0 || index >= len(doc.Cells) {
		return Cell{}, errors.New("cell index %d out of range (%d cells)", index, len(doc.Cells))
	}

	return convertCell(doc.Cells[index], index)
}

// convertCell maps a wire-format cell to the observed Cell model.
func convertCell(raw rawCell, index int) (Cell, error) {
	cell := Cell{
		Index:  index,
		Type:   CellType(raw.CellType),
		Source: string(raw.Source),
	}

	if cell.Type == CellCode && len(raw.Outputs) > 0 {
		if err := json.Unmarshal(raw.Outputs, &cell.Outputs); err != nil {
			return Cell{}, fmt.Errorf("decode outputs of cell %d: %w", index, err)
		}
	}

	return cell, nil
}

// appendCell fetches the document, appends the cell, and saves it back.
func (s *RESTNotebookSession) appendCell(ctx context.Context, cell rawCell) (int, error) {
	doc, err := s.fetch(ctx)
	if err != nil {
		return 0, err
	}

	doc.Cells = append(doc.Cells, cell)
	if err := s.save(ctx, doc); err != nil {
		return 0, err
	}

	index := len(doc.Cells) - 1
	s.logger.Debug("Cell appended", "index", index, "cell_type", cell.CellType)
	return index, nil
}

// fetch reads the live notebook document.
func (s *RESTNotebookSession) fetch(ctx context.Context) (*rawNotebook, error) {
	var envelope contentsEnvelope
	if err := s.doJSON(ctx, http.MethodGet, s.contentsURL()+"?content=1&type=notebook", nil, &envelope); err != nil {
		return nil, errors.Connection("fetch notebook document", err)
	}
	if len(envelope.Content) == 0 {
		return nil, errors.Connection("fetch notebook document: empty content", nil)
	}

	var doc rawNotebook
	if err := json.Unmarshal(envelope.Content, &doc); err != nil {
		return nil, errors.Connection("decode notebook document", err)
	}

	return &doc, nil
}

// save writes the notebook document back through the contents API.
func (s *RESTNotebookSession) save(ctx context.Context, doc *rawNotebook) error {
	content, err := json.Marshal(doc)
	if err != nil {
		return errors.Connection("encode notebook document", err)
	}

	body, err := json.Marshal(contentsEnvelope{
		Type:    "notebook",
		Format:  "json",
		Content: content,
	})
	if err != nil {
		return errors.Connection("encode save request", err)
	}

	if err := s.doJSON(ctx, http.MethodPut, s.contentsURL(), body, nil); err != nil {
		return errors.Connection("save notebook document", err)
	}
	return nil
}

// contentsURL is the contents-API endpoint for the notebook document.
func (s *RESTNotebookSession) contentsURL() string {
	escaped := url.PathEscape(s.notebookPath)
	// The contents API addresses nested documents with slash-separated
	// paths, so path separators stay unescaped.
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	return s.serverURL + "/api/contents/" + escaped
}

// doJSON performs one request against the contents API and decodes the
// response into out when non-nil.
func (s *RESTNotebookSession) doJSON(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
