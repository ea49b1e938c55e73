package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const downloadMedia = "application/octet-stream"

// Seams for tests.
var (
	now     = time.Now
	tempDir = os.TempDir
)

// ProgressFunc is called during download with bytes downloaded and total
// size (-1 when the server did not announce one).
type ProgressFunc func(downloaded, total int64)

// progressReader wraps a reader to report progress
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	progress   ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.downloaded += int64(n)
	if n > 0 {
		pr.progress(pr.downloaded, pr.total)
	}
	return n, err
}

// safeName flattens path separators so a hostile asset name cannot
// point outside the temp directory.
func safeName(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}

// DownloadToTemp streams url into a new file named
// ox-download-{unix millis}-{asset} in the temp directory and returns its
// path. The path is only returned once the whole body has been written
// and synced.
func DownloadToTemp(ctx context.Context, fetcher Fetcher, url, assetName string, progress ProgressFunc) (string, error) {
	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Accept", downloadMedia)

	body, size, err := fetcher.Get(ctx, url, header)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	name := fmt.Sprintf("ox-download-%d-%s", now().UnixMilli(), safeName(assetName))
	path := filepath.Join(tempDir(), name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", ioError("create download file", err)
	}

	var src io.Reader = body
	if progress != nil {
		src = &progressReader{reader: body, total: size, progress: progress}
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		if ctx.Err() != nil {
			return "", newError(KindNetwork, "download cancelled", ctx.Err())
		}
		return "", newError(KindNetwork, "read download body", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", ioError("flush download file", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", ioError("close download file", err)
	}
	return path, nil
}
