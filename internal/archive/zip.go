package archive

import (
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
)

// extractZip mirrors extractTar for zip files: names ending in "/" are
// directories, unsafe names are skipped.
func extractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		target, ok := entryPath(destDir, zf.Name)
		if !ok {
			continue
		}

		if strings.HasSuffix(zf.Name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", zf.Name, err)
			}
			continue
		}
		if !zf.Mode().IsRegular() {
			continue
		}
		if zf.UncompressedSize64 > uint64(entryLimit) {
			return fmt.Errorf("%s: %w", zf.Name, ErrEntryTooLarge)
		}

		if err := extractZipFile(zf, target); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(zf *zip.File, target string) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", zf.Name, err)
	}
	defer rc.Close()
	return writeEntry(target, rc, zf.Mode())
}
