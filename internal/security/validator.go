// Package security provides validation for externally-supplied configuration.
package security

import (
	"net/url"
	"path"
	"strings"

	"github.com/jupyter-bridge/jupyter-mcp/internal/errors"
)

// Validator defines the validation interface for bridge configuration.
type Validator interface {
	ValidateServerURL(urlStr string) error
	ValidateNotebookPath(notebookPath string) error
}

// DefaultValidator provides the default validation implementation.
type DefaultValidator struct {
	allowedSchemes []string
}

// NewDefaultValidator creates a new default validator.
func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// ValidateServerURL checks that the Jupyter server base URL is well-formed
// and uses an allowed scheme.
func (v *DefaultValidator) ValidateServerURL(urlStr string) error {
	if strings.TrimSpace(urlStr) == "" {
		return errors.Configuration("server URL cannot be empty", nil)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return errors.Configuration("invalid server URL", err)
	}

	if parsed.Host == "" {
		return errors.Configuration("server URL must include a host", nil)
	}

	for _, scheme := range v.allowedSchemes {
		if parsed.Scheme == scheme {
			return nil
		}
	}

	return errors.Configuration("server URL scheme must be one of: "+strings.Join(v.allowedSchemes, ", "), nil)
}

// ValidateNotebookPath checks that the notebook path is a relative,
// traversal-free path to an .ipynb document on the Jupyter server.
func (v *DefaultValidator) ValidateNotebookPath(notebookPath string) error {
	if strings.TrimSpace(notebookPath) == "" {
		return errors.Configuration("notebook path cannot be empty", nil)
	}

	if strings.HasPrefix(notebookPath, "/") {
		return errors.Configuration("notebook path must be relative to the server root", nil)
	}

	cleaned := path.Clean(notebookPath)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return errors.Configuration("notebook path must not traverse outside the server root", nil)
	}

	if !strings.HasSuffix(strings.ToLower(notebookPath), ".ipynb") {
		return errors.Configuration("notebook path must have .ipynb extension", nil)
	}

	return nil
}
