// Package archive downloads the published MAN archive and unpacks it into the
// source directory.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// maxFileSize bounds a single extracted member.
const maxFileSize = 1 << 30

// ErrUnsafePath is returned for archive members that would land outside the
// destination directory.
var ErrUnsafePath = errors.New("archive member escapes destination")

// Fetcher downloads and unpacks the archive.
type Fetcher struct {
	url    string
	client *retryablehttp.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher that retries failed downloads up to retries times.
func NewFetcher(url string, retries int, logger *slog.Logger) *Fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = time.Second
	client.RetryWaitMax = 30 * time.Second
	client.Logger = slogAdapter{logger}
	return &Fetcher{url: url, client: client, logger: logger}
}

// Fetch downloads the archive and extracts it into dest. It returns the
// number of regular files written.
func (f *Fetcher) Fetch(ctx context.Context, dest string) (int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	f.logger.Info("downloading archive", "url", f.url)
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download archive: status %d", resp.StatusCode)
	}

	n, err := Extract(resp.Body, dest)
	if err != nil {
		return n, err
	}
	f.logger.Info("archive extracted", "dest", dest, "files", n)
	return n, nil
}

// Extract unpacks a gzip-compressed tar stream into dest. Only directories
// and regular files are materialized.
//
// Members are unpacked into a temporary sibling of dest that is renamed into
// place once the whole stream has been read, so dest never holds a partial
// archive. dest must not exist or must be an empty directory.
func Extract(r io.Reader, dest string) (int, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.MkdirTemp(parent, ".archive-*")
	if err != nil {
		return 0, fmt.Errorf("create staging dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	written, err := unpack(tar.NewReader(gz), tmp)
	if err != nil {
		return written, err
	}
	// Reading to the end verifies the gzip checksum.
	if _, err := io.Copy(io.Discard, gz); err != nil {
		return written, fmt.Errorf("read archive: %w", err)
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		return written, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return written, fmt.Errorf("move archive into place: %w", err)
	}
	return written, nil
}

func unpack(tr *tar.Reader, dir string) (int, error) {
	written := 0
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, fmt.Errorf("read archive: %w", err)
		}

		target, err := safeJoin(dir, hdr.Name)
		if err != nil {
			return written, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr); err != nil {
				return written, fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
			written++
		}
	}
}

func writeFile(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, io.LimitReader(r, maxFileSize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxFileSize {
		err = fmt.Errorf("member larger than %d bytes", maxFileSize)
	}
	return err
}

func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

// slogAdapter routes retryablehttp's leveled logging to slog.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Error(msg string, kv ...any) { a.logger.Error(msg, kv...) }
func (a slogAdapter) Info(msg string, kv ...any)  { a.logger.Debug(msg, kv...) }
func (a slogAdapter) Debug(msg string, kv ...any) { a.logger.Debug(msg, kv...) }
func (a slogAdapter) Warn(msg string, kv ...any)  { a.logger.Warn(msg, kv...) }
