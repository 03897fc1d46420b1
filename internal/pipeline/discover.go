package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/domain"
)

// Discover walks root and classifies every regular file. Classified files are
// returned grouped by dataset (in the order of [domain.Datasets]) and sorted
// by path within a group. Paths matching no known product are returned
// separately; they are not errors.
func Discover(root string) (files []domain.RawFile, unclassified []string, err error) {
	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}

	for _, p := range paths {
		rf, ok := domain.Classify(p)
		if !ok {
			unclassified = append(unclassified, p)
			continue
		}
		files = append(files, rf)
	}

	order := make(map[domain.Dataset]int)
	for i, d := range domain.Datasets() {
		order[d] = i
	}
	sort.SliceStable(files, func(i, j int) bool {
		oi, oj := order[files[i].Dataset], order[files[j].Dataset]
		if oi != oj {
			return oi < oj
		}
		return files[i].Path < files[j].Path
	})
	sort.Strings(unclassified)
	return files, unclassified, nil
}
