package update

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInstaller(exe string, s swapper) *Installer {
	return &Installer{executable: fixedExecutable(exe), swap: s}
}

func writeBinary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ox-new")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStagedPath(t *testing.T) {
	assert.Equal(t, filepath.Join("bin", "ox.new"), stagedPath(filepath.Join("bin", "ox")))
	assert.Equal(t, filepath.Join("bin", "ox.new"), stagedPath(filepath.Join("bin", "ox.exe")))
}

func TestBackupName(t *testing.T) {
	assert.Equal(t, "ox-v1.2.3", BackupName("v1.2.3"))
	assert.Equal(t, "ox-release_v1", BackupName("release/v1"))
}

func TestInstaller_Replace_Unix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	exe := fakeInstall(t, "old binary")
	binary := writeBinary(t, "new binary")

	backup, err := newTestInstaller(exe, unixSwapper{}).Replace(binary, "v1.2.3")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(exe), "ox-v1.2.3"), backup)
	assert.Equal(t, "new binary", readFile(t, exe))
	assert.Equal(t, "old binary", readFile(t, backup), "backup holds the pre-update binary")

	info, err := os.Stat(exe)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), "permissions copied from the old executable")

	_, err = os.Stat(stagedPath(exe))
	assert.True(t, errors.Is(err, os.ErrNotExist), "staged file renamed away")
	assert.Equal(t, "new binary", readFile(t, binary), "downloaded file is copied, not moved")
}

func TestInstaller_Replace_KeepsExistingBackup(t *testing.T) {
	exe := fakeInstall(t, "old binary")
	existing := filepath.Join(filepath.Dir(exe), "ox-v1.2.3")
	require.NoError(t, os.WriteFile(existing, []byte("first backup"), 0o755))

	_, err := newTestInstaller(exe, unixSwapper{}).Replace(writeBinary(t, "new binary"), "v1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "first backup", readFile(t, existing))
	assert.Equal(t, "new binary", readFile(t, exe))
}

func TestInstaller_Replace_RemovesStaleStaged(t *testing.T) {
	exe := fakeInstall(t, "old binary")
	require.NoError(t, os.WriteFile(stagedPath(exe), []byte("leftover from a failed run, longer than new"), 0o644))

	_, err := newTestInstaller(exe, unixSwapper{}).Replace(writeBinary(t, "new"), "v2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "new", readFile(t, exe))
}

func TestInstaller_Replace_Windows(t *testing.T) {
	exe := fakeInstall(t, "old binary")
	backup := filepath.Join(filepath.Dir(exe), "ox-v1.2.3")
	require.NoError(t, os.WriteFile(backup, []byte("stale backup"), 0o755))

	got, err := newTestInstaller(exe, windowsSwapper{}).Replace(writeBinary(t, "new binary"), "v1.2.3")
	require.NoError(t, err)

	assert.Equal(t, backup, got)
	assert.Equal(t, "new binary", readFile(t, exe))
	assert.Equal(t, "old binary", readFile(t, backup), "existing backup replaced by the running binary")
}

func TestWindowsSwapper_RestoresOnFailure(t *testing.T) {
	exe := fakeInstall(t, "old binary")
	backup := filepath.Join(filepath.Dir(exe), "ox-v1.2.3")

	err := windowsSwapper{}.swap(filepath.Join(t.TempDir(), "missing.new"), exe, backup)
	assert.ErrorIs(t, err, ErrIO)
	assert.Equal(t, "old binary", readFile(t, exe), "previous binary moved back")
	assert.NoFileExists(t, backup)
}

func TestWindowsSwapper_ReportsFailedRestore(t *testing.T) {
	orig := renameFile
	t.Cleanup(func() { renameFile = orig })

	exe := fakeInstall(t, "old binary")
	backup := filepath.Join(filepath.Dir(exe), "ox-v1.2.3")
	staged := writeBinary(t, "new binary")
	denied := errors.New("access denied")
	renameFile = func(from, to string) error {
		if from == exe {
			return os.Rename(from, to)
		}
		return denied
	}

	err := windowsSwapper{}.swap(staged, exe, backup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), backup, "error names where the previous binary is")
	assert.Equal(t, "old binary", readFile(t, backup))
}

func TestInstaller_Replace_MissingBinary(t *testing.T) {
	exe := fakeInstall(t, "old binary")

	_, err := newTestInstaller(exe, unixSwapper{}).Replace(filepath.Join(t.TempDir(), "missing"), "v1.0.0")
	assert.ErrorIs(t, err, ErrIO)
	assert.Equal(t, "old binary", readFile(t, exe), "live executable untouched")
}

func TestInstaller_Replace_ExecutableError(t *testing.T) {
	i := &Installer{
		executable: func() (string, error) { return "", ioError("locate running executable", os.ErrNotExist) },
		swap:       unixSwapper{},
	}
	_, err := i.Replace(writeBinary(t, "x"), "v1.0.0")
	assert.ErrorIs(t, err, ErrIO)
}

func TestCurrentExecutable_FollowsSymlinks(t *testing.T) {
	origExe, origEval := osExecutable, evalSymlinks
	t.Cleanup(func() { osExecutable, evalSymlinks = origExe, origEval })

	osExecutable = func() (string, error) { return "/usr/local/bin/ox", nil }
	evalSymlinks = func(string) (string, error) { return "/opt/ox/bin/ox", nil }
	got, err := currentExecutable()
	require.NoError(t, err)
	assert.Equal(t, "/opt/ox/bin/ox", got)

	evalSymlinks = func(string) (string, error) { return "", errors.New("broken link") }
	got, err = currentExecutable()
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/ox", got, "falls back to the unresolved path")

	osExecutable = func() (string, error) { return "", errors.New("unsupported") }
	_, err = currentExecutable()
	assert.ErrorIs(t, err, ErrIO)
}
