package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider loads secrets from individual files in a directory, the
// layout Kubernetes and Docker use for mounted secrets. The secret
// "gemini-api-key" is read from "<dir>/gemini-api-key" with trailing
// newlines trimmed.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a file-based secret provider. dir must exist.
func NewFileProvider(dir string) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", dir)
	}
	return &FileProvider{dir: dir}, nil
}

// GetSecret reads the file named name. Names that would escape the
// directory are rejected. A world-readable file is used but logged.
func (p *FileProvider) GetSecret(ctx context.Context, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid secret name %q", name)
	}

	path := filepath.Join(p.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w in %s: %s", ErrNotFound, p.dir, name)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if info.Mode().Perm()&0o004 != 0 {
		slog.Warn("secret file is world-readable", "path", path, "mode", info.Mode().Perm().String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Provider returns the provider name.
func (p *FileProvider) Provider() string {
	return "file"
}
