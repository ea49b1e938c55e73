package update

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const backupPrefix = "ox-"

// RollbackManager lists and restores backups left by Installer.
type RollbackManager struct {
	executable func() (string, error)
}

// NewRollbackManager works against the running executable.
func NewRollbackManager() *RollbackManager {
	return &RollbackManager{executable: currentExecutable}
}

// ListBackups returns every ox-* file beside the executable, sorted by
// file name (so "ox-v1.10.0" sorts before "ox-v1.9.0").
func (m *RollbackManager) ListBackups() ([]string, error) {
	exe, err := m.executable()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(exe)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ioError("read executable dir", err)
	}

	var backups []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), backupPrefix) {
			continue
		}
		backups = append(backups, filepath.Join(dir, e.Name()))
	}
	sort.Strings(backups)
	return backups, nil
}

// Rollback copies backup over the live executable in place and returns
// the backup path. This is a plain overwrite, not an atomic swap.
// A bare "ox-*" name refers to the file beside the executable.
func (m *RollbackManager) Rollback(backup string) (string, error) {
	exe, err := m.executable()
	if err != nil {
		return "", err
	}
	backup = resolveBackup(backup, filepath.Dir(exe))
	if _, err := os.Stat(backup); err != nil {
		return "", ioError("open backup", err)
	}
	if err := overwriteFile(backup, exe); err != nil {
		return "", ioError("restore backup", err)
	}
	return backup, nil
}

func resolveBackup(backup, dir string) string {
	if filepath.Base(backup) == backup && strings.HasPrefix(backup, backupPrefix) {
		return filepath.Join(dir, backup)
	}
	return backup
}

// overwriteFile rewrites dst with src's bytes, keeping dst's inode.
func overwriteFile(src, dst string) error {
	data, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = data.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, data); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
