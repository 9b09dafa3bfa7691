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
	"sync"

	"github.com/google/uuid"

	"github.com/jupyter-bridge/jupyter-mcp/internal/errors"
	"github.com/jupyter-bridge/jupyter-mcp/internal/logging"
)

// defaultKernelName is the kernel spec requested when starting a kernel.
const defaultKernelName = "python3"

// RESTKernelClient manages one remote kernel through the Jupyter server
// kernels API. Code submission goes through the server-side execution
// endpoint, so outputs land in the shared notebook document rather than
// coming back on this client.
type RESTKernelClient struct {
	serverURL  string
	httpClient *http.Client
	logger     *logging.Logger

	// clientID identifies this client to the server across requests.
	clientID string

	mu       sync.Mutex
	kernelID string
}

var _ KernelClient = (*RESTKernelClient)(nil)

// NewKernelClient creates a kernel client bound to the given server.
// The kernel itself is not launched until Start is called.
func NewKernelClient(serverURL, token string, logger *logging.Logger) *RESTKernelClient {
	return &RESTKernelClient{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: newHTTPClient(token),
		logger:     logger,
		clientID:   uuid.NewString(),
	}
}

// Start launches a new kernel on the server.
func (k *RESTKernelClient) Start(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"name": defaultKernelName})
	if err != nil {
		return errors.Execution("encode kernel start request", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := k.doJSON(ctx, http.MethodPost, k.serverURL+"/api/kernels", body, &created); err != nil {
		return errors.Execution("start kernel", err)
	}
	if created.ID == "" {
		return errors.Execution("start kernel: server returned no kernel id", nil)
	}

	k.mu.Lock()
	k.kernelID = created.ID
	k.mu.Unlock()

	k.logger.Info("Kernel started", "kernel_id", created.ID)
	return nil
}

// Stop shuts the kernel down. Stopping a client that never started is a
// no-op.
func (k *RESTKernelClient) Stop(ctx context.Context) error {
	k.mu.Lock()
	kernelID := k.kernelID
	k.kernelID = ""
	k.mu.Unlock()

	if kernelID == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/api/kernels/%s", k.serverURL, url.PathEscape(kernelID))
	if err := k.doJSON(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return errors.Execution("stop kernel", err)
	}

	k.logger.Info("Kernel stopped", "kernel_id", kernelID)
	return nil
}

// Execute submits code to the running kernel. The server routes resulting
// outputs into the shared notebook document.
func (k *RESTKernelClient) Execute(ctx context.Context, code string) error {
	k.mu.Lock()
	kernelID := k.kernelID
	k.mu.Unlock()

	if kernelID == "" {
		return errors.Execution("kernel is not running", nil)
	}

	body, err := json.Marshal(map[string]string{
		"code":       code,
		"session_id": k.clientID,
	})
	if err != nil {
		return errors.Execution("encode execute request", err)
	}

	endpoint := fmt.Sprintf("%s/api/kernels/%s/execute", k.serverURL, url.PathEscape(kernelID))
	if err := k.doJSON(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return errors.Execution("submit code for execution", err)
	}

	k.logger.Debug("Code submitted for execution", "kernel_id", kernelID)
	return nil
}

// doJSON performs one request against the kernels API and decodes the
// response into out when non-nil.
func (k *RESTKernelClient) doJSON(ctx context.Context, method, endpoint string, body []byte, out any) error {
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

	resp, err := k.httpClient.Do(req)
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
