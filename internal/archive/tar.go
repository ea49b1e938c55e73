package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	return extractTar(tar.NewReader(gz), destDir)
}

func extractTarLz4(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	return extractTar(tar.NewReader(lz4.NewReader(f)), destDir)
}

// extractTar writes directories and regular files. Links, devices and
// entries that would land outside destDir are skipped.
func extractTar(tr *tar.Reader, destDir string) error {
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, ok := entryPath(destDir, header.Name)
		if !ok {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", header.Name, err)
			}
		case tar.TypeReg:
			if header.Size > entryLimit {
				return fmt.Errorf("%s: %w", header.Name, ErrEntryTooLarge)
			}
			if err := writeEntry(target, tr, os.FileMode(header.Mode)); err != nil {
				return err
			}
		default:
			continue
		}
	}
}
