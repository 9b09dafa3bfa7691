package jupyter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jupyter-bridge/jupyter-mcp/internal/logging"
)

// fakeKernelServer serves the kernels API endpoints used by the client.
type fakeKernelServer struct {
	t         *testing.T
	kernelID  string
	started   int
	stopped   int
	executed  []string
	execError bool
}

func (f *fakeKernelServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/kernels", func(w http.ResponseWriter, r *http.Request) {
		f.started++
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": f.kernelID, "name": "python3"})
	})

	mux.HandleFunc("DELETE /api/kernels/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != f.kernelID {
			http.NotFound(w, r)
			return
		}
		f.stopped++
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/kernels/{id}/execute", func(w http.ResponseWriter, r *http.Request) {
		if f.execError {
			http.Error(w, "kernel died", http.StatusInternalServerError)
			return
		}
		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.executed = append(f.executed, req.Code)
		w.WriteHeader(http.StatusAccepted)
	})

	return mux
}

func newTestKernel(t *testing.T) (*RESTKernelClient, *fakeKernelServer) {
	t.Helper()

	fake := &fakeKernelServer{t: t, kernelID: "kernel-1"}
	ts := httptest.NewServer(fake.handler())
	t.Cleanup(ts.Close)

	return NewKernelClient(ts.URL, "tok", logging.NewLogger("error")), fake
}

func TestKernelLifecycle(t *testing.T) {
	kernel, fake := newTestKernel(t)
	ctx := t.Context()

	if err := kernel.Start(ctx); err != nil {
		t.Fatalf("Failed to start kernel: %v", err)
	}
	if fake.started != 1 {
		t.Errorf("Expected 1 start request, got %d", fake.started)
	}

	if err := kernel.Execute(ctx, "print('hi')"); err != nil {
		t.Fatalf("Failed to execute code: %v", err)
	}
	if len(fake.executed) != 1 || fake.executed[0] != "print('hi')" {
		t.Errorf("Unexpected executed code: %v", fake.executed)
	}

	if err := kernel.Stop(ctx); err != nil {
		t.Fatalf("Failed to stop kernel: %v", err)
	}
	if fake.stopped != 1 {
		t.Errorf("Expected 1 stop request, got %d", fake.stopped)
	}
}

func TestKernelExecuteWithoutStart(t *testing.T) {
	kernel, _ := newTestKernel(t)

	if err := kernel.Execute(t.Context(), "1+1"); err == nil {
		t.Errorf("Expected error executing on a kernel that never started")
	}
}

func TestKernelStopWithoutStartIsNoop(t *testing.T) {
	kernel, fake := newTestKernel(t)

	if err := kernel.Stop(t.Context()); err != nil {
		t.Fatalf("Expected no-op stop, got error: %v", err)
	}
	if fake.stopped != 0 {
		t.Errorf("Expected no stop request, got %d", fake.stopped)
	}
}

func TestKernelExecuteServerFault(t *testing.T) {
	kernel, fake := newTestKernel(t)
	fake.execError = true
	ctx := t.Context()

	if err := kernel.Start(ctx); err != nil {
		t.Fatalf("Failed to start kernel: %v", err)
	}
	if err := kernel.Execute(ctx, "1+1"); err == nil {
		t.Errorf("Expected error from failing execute endpoint")
	}
}
