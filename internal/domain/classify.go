package domain

import (
	"path/filepath"
	"strings"
)

// RawFile is a discovered archive file with the attributes its name encodes.
type RawFile struct {
	Path    string
	Dataset Dataset
	// Label is the cruise label derived from the filename. The preamble's
	// cruise line takes precedence when present.
	Label string
}

// Classify maps a path to its dataset using the ordered suffix rules.
// It returns false for files that match no known product; those are skipped,
// not treated as errors.
func Classify(path string) (RawFile, bool) {
	base := filepath.Base(path)
	for _, r := range suffixRules {
		if !strings.HasSuffix(base, r.suffix) {
			continue
		}
		label := strings.TrimSuffix(base, r.suffix)
		label = strings.TrimRight(label, "_.")
		return RawFile{Path: path, Dataset: r.dataset, Label: label}, true
	}
	return RawFile{}, false
}
