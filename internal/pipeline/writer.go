package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer persists generated source. The orchestrator never touches the
// filesystem directly so tests can inject failures.
type Writer interface {
	WriteFile(dir, name string, content []byte) (string, error)
}

// DiskWriter writes generated files under the task directory.
type DiskWriter struct{}

func (DiskWriter) WriteFile(dir, name string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
