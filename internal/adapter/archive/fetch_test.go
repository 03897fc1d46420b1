package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type member struct {
	name string
	body string
	dir  bool
}

func tarball(t *testing.T, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, m := range members {
		hdr := &tar.Header{Name: m.name, Mode: 0o644, Size: int64(len(m.body)), Typeflag: tar.TypeReg}
		if m.dir {
			hdr = &tar.Header{Name: m.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !m.dir {
			_, err := tw.Write([]byte(m.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// noise returns incompressible member content so a truncated stream is cut
// inside the tar data, not in the gzip trailer.
func noise(t *testing.T, n int) string {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return string(b)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "src")
	data := tarball(t,
		member{name: "MAN/", dir: true},
		member{name: "MAN/Polarstern_24_0/Polarstern_24_0_daily.lev15", body: "AERONET Version 3\n"},
		member{name: "MAN/README", body: "readme"},
	)

	n, err := Extract(bytes.NewReader(data), dest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := os.ReadFile(filepath.Join(dest, "MAN", "Polarstern_24_0", "Polarstern_24_0_daily.lev15"))
	require.NoError(t, err)
	assert.Equal(t, "AERONET Version 3\n", string(got))
}

func TestExtract_RejectsTraversal(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "src")
	data := tarball(t, member{name: "../escape.lev15", body: "x"})

	_, err := Extract(bytes.NewReader(data), dest)
	require.ErrorIs(t, err, ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(root, "escape.lev15"))
	assert.NoDirExists(t, dest)
}

func TestExtract_IntoEmptyExistingDir(t *testing.T) {
	dest := t.TempDir()
	data := tarball(t, member{name: "a_daily.lev15", body: "a"})

	n, err := Extract(bytes.NewReader(data), dest)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(dest, "a_daily.lev15"))
}

func TestExtract_LeavesNothingBehind(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "src")
	data := tarball(t,
		member{name: "MAN/a_daily.lev15", body: noise(t, 32<<10)},
		member{name: "MAN/b_daily.lev20", body: noise(t, 32<<10)},
	)

	_, err := Extract(bytes.NewReader(data[:len(data)*2/3]), dest)
	require.Error(t, err)
	assert.NoDirExists(t, dest)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directory is removed")
}

func TestExtract_NotGzip(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "src")
	_, err := Extract(bytes.NewReader([]byte("plain text")), dest)
	require.Error(t, err)
	assert.NoDirExists(t, dest)
}

func TestFetcher_Fetch(t *testing.T) {
	data := tarball(t, member{name: "MAN/a_daily.lev20", body: "a"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "src")
	n, err := NewFetcher(srv.URL, 0, discardLogger()).Fetch(context.Background(), dest)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(dest, "MAN", "a_daily.lev20"))
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	data := tarball(t, member{name: "a_series.lev15", body: "a"})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 2, discardLogger())
	f.client.RetryWaitMin = 0
	f.client.RetryWaitMax = 0

	n, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "src"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "src")
	_, err := NewFetcher(srv.URL, 0, discardLogger()).Fetch(context.Background(), dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.NoDirExists(t, dest)
}

func TestFetcher_TruncatedDownloadLeavesNoSourceDir(t *testing.T) {
	data := tarball(t,
		member{name: "MAN/a_all_points.lev10", body: noise(t, 64<<10)},
		member{name: "MAN/a_daily.lev15", body: noise(t, 64<<10)},
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data[:len(data)*2/3])
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "src")
	_, err := NewFetcher(srv.URL, 0, discardLogger()).Fetch(context.Background(), dest)
	require.Error(t, err)
	assert.NoDirExists(t, dest, "a later import must fetch again")
}
