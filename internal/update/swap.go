package update

import (
	"errors"
	"io/fs"
	"os"
)

// swapper moves a staged binary (a sibling of exe) over the live
// executable, leaving the previous binary at backup. The final rename
// is the only step that touches the live path.
type swapper interface {
	swap(staged, exe, backup string) error
}

// unixSwapper relies on rename(2) replacing the directory entry while
// the running process keeps its old inode. An existing backup is kept.
type unixSwapper struct{}

func (unixSwapper) swap(staged, exe, backup string) error {
	info, err := os.Stat(exe)
	if err != nil {
		return ioError("stat current executable", err)
	}
	if err := os.Chmod(staged, info.Mode().Perm()); err != nil {
		return ioError("copy permissions", err)
	}

	if _, err := os.Stat(backup); errors.Is(err, fs.ErrNotExist) {
		if err := copyFile(exe, backup); err != nil {
			return ioError("create backup", err)
		}
	} else if err != nil {
		return ioError("stat backup", err)
	}

	if err := os.Rename(staged, exe); err != nil {
		return ioError("replace executable", err)
	}
	return nil
}

// windowsSwapper moves the running executable out of the way first,
// since Windows refuses to overwrite or delete an image in use. Any
// previous backup of the same name is replaced.
type windowsSwapper struct{}

func (windowsSwapper) swap(staged, exe, backup string) error {
	if err := os.Remove(backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioError("remove old backup", err)
	}
	if err := renameFile(exe, backup); err != nil {
		return ioError("move current executable to backup", err)
	}
	if err := renameFile(staged, exe); err != nil {
		// Put the old binary back so the install is not left without one.
		if rerr := renameFile(backup, exe); rerr != nil {
			return ioError("replace executable (previous binary left at "+backup+")", errors.Join(err, rerr))
		}
		return ioError("replace executable", err)
	}
	return nil
}
