package security

import "testing"

func TestValidateServerURL(t *testing.T) {
	validator := NewDefaultValidator()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "http", url: "http://localhost:8888", wantErr: false},
		{name: "https", url: "https://hub.example.com", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "no host", url: "http://", wantErr: true},
		{name: "bad scheme", url: "ftp://localhost", wantErr: true},
		{name: "not a url", url: "://nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateServerURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateServerURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNotebookPath(t *testing.T) {
	validator := NewDefaultValidator()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "simple", path: "notebook.ipynb", wantErr: false},
		{name: "nested", path: "projects/analysis.ipynb", wantErr: false},
		{name: "uppercase extension", path: "Notebook.IPYNB", wantErr: false},
		{name: "empty", path: "", wantErr: true},
		{name: "absolute", path: "/etc/notebook.ipynb", wantErr: true},
		{name: "traversal", path: "../other.ipynb", wantErr: true},
		{name: "nested traversal", path: "a/../../b.ipynb", wantErr: true},
		{name: "wrong extension", path: "notebook.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateNotebookPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNotebookPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
