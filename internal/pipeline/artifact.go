package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
)

// ArtifactPath returns where the normalized form of file is written under dir:
// <dir>/<family>_<frequency>_<level>/<basename>.csv.
func ArtifactPath(dir string, file domain.RawFile) string {
	d := file.Dataset
	group := strings.ToLower(fmt.Sprintf("%s_%s_%d", d.Family, d.Frequency, d.Level))
	return filepath.Join(dir, group, filepath.Base(file.Path)+".csv")
}

// writeArtifact replaces the normalized artifact of t atomically.
func writeArtifact(dir string, t domain.Table) error {
	dst := ArtifactPath(dir, t.File)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := t.WriteCSV(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	return os.Rename(tmp.Name(), dst)
}
