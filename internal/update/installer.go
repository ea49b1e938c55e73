package update

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Seams for tests.
var (
	osExecutable = os.Executable
	evalSymlinks = filepath.EvalSymlinks
	renameFile   = os.Rename
)

// currentExecutable resolves the running binary, following symlinks
// when possible.
func currentExecutable() (string, error) {
	exe, err := osExecutable()
	if err != nil {
		return "", ioError("locate running executable", err)
	}
	if real, err := evalSymlinks(exe); err == nil {
		exe = real
	}
	return exe, nil
}

// BackupName is the file name a backup for tag gets beside the executable.
func BackupName(tag string) string {
	return "ox-" + safeName(tag)
}

// stagedPath is exe with its extension replaced by ".new".
func stagedPath(exe string) string {
	return strings.TrimSuffix(exe, filepath.Ext(exe)) + ".new"
}

// Installer swaps a verified binary in for the running executable.
type Installer struct {
	executable func() (string, error)
	swap       swapper
}

// NewInstaller returns an Installer using the platform's swap strategy.
func NewInstaller() *Installer {
	return &Installer{executable: currentExecutable, swap: platformSwapper}
}

// Replace installs binary over the running executable and returns the
// backup path, ox-{tag} beside the executable.
//
// The backup is named after the tag being installed but holds the
// binary that was running before the update.
func (i *Installer) Replace(binary, tag string) (string, error) {
	exe, err := i.executable()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(exe)
	backup := filepath.Join(dir, BackupName(tag))
	staged := stagedPath(exe)

	if err := os.Remove(staged); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", ioError("remove stale staged binary", err)
	}
	if err := copyFile(binary, staged); err != nil {
		return "", ioError("stage new binary", err)
	}
	if err := i.swap.swap(staged, exe, backup); err != nil {
		return "", err
	}
	return backup, nil
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	dest, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dest, source); err != nil {
		_ = dest.Close()
		return err
	}
	return dest.Close()
}
