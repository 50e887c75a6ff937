package cryptutil

import (
	"io"
	"os"
	"time"

	"github.com/absfs/absfs"
)

// OSFiler implements absfs.Filer on the host filesystem. Paths are passed
// to the os package unchanged.
type OSFiler struct{}

var _ absfs.Filer = OSFiler{}

// OpenFile opens the named file with the specified flags and permissions
func (OSFiler) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Mkdir creates a directory
func (OSFiler) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(name, perm)
}

// Remove removes a file or empty directory
func (OSFiler) Remove(name string) error {
	return os.Remove(name)
}

// Rename renames (moves) a file
func (OSFiler) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Stat returns file information
func (OSFiler) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// Chmod changes the mode of a file
func (OSFiler) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(name, mode)
}

// Chtimes changes the access and modification times of a file
func (OSFiler) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return os.Chtimes(name, atime, mtime)
}

// Chown changes the owner and group of a file
func (OSFiler) Chown(name string, uid, gid int) error {
	return os.Chown(name, uid, gid)
}

// readFile returns the full contents of path. A missing file is created
// empty and read as empty input.
func readFile(fs absfs.Filer, path string) (data []byte, err error) {
	f, err := fs.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0600)
	if err != nil {
		return nil, NewIOError("open", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = NewIOError("close", path, cerr)
		}
	}()

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, NewIOError("read", path, err)
	}
	return data, nil
}

// writeFile replaces the contents of path with data, creating it if needed.
func writeFile(fs absfs.Filer, path string, data []byte, perm os.FileMode) (err error) {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return NewIOError("open", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = NewIOError("close", path, cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return NewIOError("write", path, err)
	}
	return nil
}
