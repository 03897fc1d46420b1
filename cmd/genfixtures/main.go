// Command genfixtures writes a synthetic MAN archive with every file kind the
// importer classifies. The output can be ingested directly or served as the
// archive tarball for bootstrap testing.
//
// Usage:
//
//	go run ./cmd/genfixtures -out ./src -cruises 3 -days 10
//	go run ./cmd/genfixtures -out ./src -tarball All_MAN_Data_V3.tar.gz
package main

import (
	"archive/tar"
	"compress/gzip"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/fixture"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "directory to write the archive tree into")
	cruises := flag.Int("cruises", 1, "number of synthetic cruises")
	days := flag.Int("days", 3, "days per cruise")
	start := flag.String("start", "2021-03-25", "first cruise day (YYYY-MM-DD)")
	tarball := flag.String("tarball", "", "also pack the tree into this .tar.gz")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *cruises < 1 || *days < 1 {
		return fmt.Errorf("-cruises and -days must be positive")
	}
	first, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}

	base := fixture.DefaultCruise()
	total := 0
	for i := range *cruises {
		c := base
		c.Site = fmt.Sprintf("%s_%d", base.Site, i)
		c.AeronetNumber = base.AeronetNumber + i
		c.Start = first.AddDate(0, 0, i*(*days))
		c.Days = *days
		c.Lat = base.Lat - 7.5*float64(i)
		c.Lon = base.Lon + 11*float64(i)

		paths, err := c.Write(*out)
		if err != nil {
			return err
		}
		total += len(paths)
		log.Printf("%s: %d files, %d days from %s", c.Site, len(paths), c.Days, c.Start.Format(time.DateOnly))
	}
	log.Printf("wrote %d files under %s", total, *out)

	if *tarball != "" {
		if err := pack(*out, *tarball); err != nil {
			return fmt.Errorf("pack %s: %w", *tarball, err)
		}
		log.Printf("wrote archive: %s", *tarball)
	}
	return nil
}

// pack writes the regular files under root into a gzip-compressed tarball
// with paths relative to root.
func pack(root, dest string) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		hdr := &tar.Header{
			Name:    filepath.ToSlash(rel),
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: time.Now(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err = tw.Write(data)
		return err
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}
