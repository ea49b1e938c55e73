package update

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeFetcher serves canned bodies keyed by URL.
type fakeFetcher struct {
	bodies  map[string][]byte
	errs    map[string]error
	headers map[string]http.Header
	calls   []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies:  map[string][]byte{},
		errs:    map[string]error{},
		headers: map[string]http.Header{},
	}
}

func (f *fakeFetcher) Get(_ context.Context, url string, header http.Header) (io.ReadCloser, int64, error) {
	f.calls = append(f.calls, url)
	f.headers[url] = header
	if err, ok := f.errs[url]; ok {
		return nil, 0, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, 0, networkError("no fixture for %s", url)
	}
	return io.NopCloser(bytes.NewReader(body)), int64(len(body)), nil
}

// failingReader returns data then err.
type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

type readerFetcher struct{ r io.Reader }

func (f readerFetcher) Get(context.Context, string, http.Header) (io.ReadCloser, int64, error) {
	return io.NopCloser(f.r), -1, nil
}

func sha256Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// withTempDir points the download temp dir and clock at fixtures.
func withTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origTemp, origNow := tempDir, now
	tempDir = func() string { return dir }
	now = func() time.Time { return time.UnixMilli(1700000000000) }
	t.Cleanup(func() {
		tempDir, now = origTemp, origNow
	})
	return dir
}

// fakeInstall creates a live "ox" executable in its own directory and
// returns its path.
func fakeInstall(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	exe := filepath.Join(dir, "ox")
	if err := os.WriteFile(exe, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
	return exe
}

func fixedExecutable(path string) func() (string, error) {
	return func() (string, error) { return path, nil }
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
