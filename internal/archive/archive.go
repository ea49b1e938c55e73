// Package archive unpacks release artifacts and locates the ox binary
// inside them.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// MaxEntrySize bounds a single extracted file.
const MaxEntrySize = 512 << 20

var (
	// ErrBinaryNotFound is returned when an archive holds no ox binary.
	ErrBinaryNotFound = errors.New("binary not found in archive")
	// ErrEntryTooLarge is returned when an entry exceeds MaxEntrySize.
	ErrEntryTooLarge = errors.New("archive entry exceeds size limit")
)

// Seams for tests.
var (
	now        = time.Now
	tempDir    = os.TempDir
	entryLimit = int64(MaxEntrySize)
)

// Format is the packaging of a release artifact, chosen by file suffix.
type Format int

const (
	// Raw artifacts are the binary itself.
	Raw Format = iota
	TarGz
	TarLz4
	Zip
)

func (f Format) String() string {
	switch f {
	case TarGz:
		return "tar.gz"
	case TarLz4:
		return "tar.lz4"
	case Zip:
		return "zip"
	default:
		return "raw"
	}
}

// FormatFor picks the format from the asset name alone. Content is
// never sniffed.
func FormatFor(assetName string) Format {
	switch {
	case strings.HasSuffix(assetName, ".tar.gz"), strings.HasSuffix(assetName, ".tgz"):
		return TarGz
	case strings.HasSuffix(assetName, ".tar.lz4"):
		return TarLz4
	case strings.HasSuffix(assetName, ".zip"):
		return Zip
	default:
		return Raw
	}
}

// BinaryName is the executable name shipped for goos.
func BinaryName(goos string) string {
	if goos == "windows" {
		return "ox.exe"
	}
	return "ox"
}

// Unpack returns the path of the binary inside the artifact at path.
// Raw artifacts are returned unchanged. Archives are extracted into a
// new ox-extract-{millis}-{asset} directory under the temp dir, which is
// left in place, and then searched for binaryName.
func Unpack(path, assetName, binaryName string) (string, error) {
	format := FormatFor(assetName)
	if format == Raw {
		return path, nil
	}

	dir, err := newExtractDir(assetName)
	if err != nil {
		return "", err
	}

	switch format {
	case TarGz:
		err = extractTarGz(path, dir)
	case TarLz4:
		err = extractTarLz4(path, dir)
	case Zip:
		err = extractZip(path, dir)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", assetName, err)
	}

	return FindBinary(dir, binaryName)
}

func newExtractDir(assetName string) (string, error) {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(assetName)
	dir := filepath.Join(tempDir(), fmt.Sprintf("ox-extract-%d-%s", now().UnixMilli(), safe))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}
	return dir, nil
}

// entryPath maps an archive entry name onto destDir. It returns false
// for names that are absolute, contain "..", or are otherwise not
// local, so the caller can skip them.
func entryPath(destDir, name string) (string, bool) {
	native := filepath.FromSlash(name)
	if native == "" || !filepath.IsLocal(native) {
		return "", false
	}
	target, err := securejoin.SecureJoin(destDir, native)
	if err != nil {
		return "", false
	}
	return target, true
}

// writeEntry copies at most entryLimit bytes of r into target.
func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}
	if mode.Perm() == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	written, copyErr := io.Copy(out, io.LimitReader(r, entryLimit+1))
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("write file %s: %w", target, copyErr)
	}
	if written > entryLimit {
		return fmt.Errorf("%s: %w", target, ErrEntryTooLarge)
	}
	if closeErr != nil {
		return fmt.Errorf("close file %s: %w", target, closeErr)
	}
	return nil
}
