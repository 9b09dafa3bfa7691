package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NOTEBOOK_PATH", "")
	t.Setenv("SERVER_URL", "")
	t.Setenv("TOKEN", "")
	os.Unsetenv("NOTEBOOK_PATH")
	os.Unsetenv("SERVER_URL")
	os.Unsetenv("TOKEN")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.NotebookPath != "notebook.ipynb" {
		t.Errorf("Expected default notebook path, got %q", cfg.NotebookPath)
	}
	if cfg.ServerURL != "http://localhost:8888" {
		t.Errorf("Expected default server URL, got %q", cfg.ServerURL)
	}
	if cfg.Token != "MY_TOKEN" {
		t.Errorf("Expected default token, got %q", cfg.Token)
	}
	if cfg.MaxWait != 30*time.Second {
		t.Errorf("Expected 30s max wait, got %v", cfg.MaxWait)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("Expected 500ms poll interval, got %v", cfg.PollInterval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTEBOOK_PATH", "analysis/report.ipynb")
	t.Setenv("SERVER_URL", "https://hub.example.com")
	t.Setenv("TOKEN", "s3cret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.NotebookPath != "analysis/report.ipynb" {
		t.Errorf("Expected env notebook path, got %q", cfg.NotebookPath)
	}
	if cfg.ServerURL != "https://hub.example.com" {
		t.Errorf("Expected env server URL, got %q", cfg.ServerURL)
	}
	if cfg.Token != "s3cret" {
		t.Errorf("Expected env token, got %q", cfg.Token)
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	content := `
notebook_path = "from_file.ipynb"
server_url = "http://jupyter:9999"
token = "file-token"
max_wait = "10s"
poll_interval = "250ms"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.NotebookPath != "from_file.ipynb" {
		t.Errorf("Expected file notebook path, got %q", cfg.NotebookPath)
	}
	if cfg.ServerURL != "http://jupyter:9999" {
		t.Errorf("Expected file server URL, got %q", cfg.ServerURL)
	}
	if cfg.MaxWait != 10*time.Second {
		t.Errorf("Expected 10s max wait, got %v", cfg.MaxWait)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("Expected 250ms poll interval, got %v", cfg.PollInterval)
	}
}

func TestEnvWinsOverConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN", "env-token")

	content := `token = "file-token"`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Expected environment to win, got %q", cfg.Token)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "bad server URL scheme",
			env:  map[string]string{"SERVER_URL": "ftp://localhost"},
		},
		{
			name: "absolute notebook path",
			env:  map[string]string{"NOTEBOOK_PATH": "/etc/notebook.ipynb"},
		},
		{
			name: "traversing notebook path",
			env:  map[string]string{"NOTEBOOK_PATH": "../secrets.ipynb"},
		},
		{
			name: "wrong extension",
			env:  map[string]string{"NOTEBOOK_PATH": "notebook.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := Load(""); err == nil {
				t.Errorf("Expected validation error")
			}
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Errorf("Expected error for missing config file")
	}
}
