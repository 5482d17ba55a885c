package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileDestination writes XML snapshots to a local path.
type FileDestination struct {
	path string
}

// NewFileDestination creates a destination that overwrites path on every
// export.
func NewFileDestination(path string) *FileDestination {
	return &FileDestination{path: path}
}

// Write writes data to the configured path, creating parent directories as
// needed. The write goes through a temp file and rename so readers never
// see a half-written snapshot.
func (d *FileDestination) Write(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
