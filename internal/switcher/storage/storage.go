package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// DefaultFileMode is used by WriteAtomic when the destination does not exist yet.
const DefaultFileMode os.FileMode = 0o644

// ErrDestinationExists is returned by RenameNoClobber when the target is already present.
var ErrDestinationExists = errors.New("destination already exists")

// Storage provides low-level file operations with security validations.
type Storage struct {
	fs afero.Fs
}

// New creates a new Storage instance.
func New(fs afero.Fs) *Storage {
	return &Storage{fs: fs}
}

// FileSystem returns the underlying filesystem.
func (s *Storage) FileSystem() afero.Fs {
	return s.fs
}

// ValidatePathSafety checks that the path is not a symlink, preventing symlink attacks.
// It returns nil if the path doesn't exist or is a regular file/directory.
func (s *Storage) ValidatePathSafety(path string) error {
	if lstater, ok := s.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to check path: %w", err)
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("refusing to operate on symlink: %s", path)
		}
	}
	return nil
}

// WriteAtomic streams content produced by write into a temp file next to
// path and renames it over path once write and close both succeed. An
// existing destination keeps its permission bits; a new one gets
// DefaultFileMode.
func (s *Storage) WriteAtomic(path string, write func(w io.Writer) error) error {
	perm := DefaultFileMode
	if info, err := s.fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat destination: %w", err)
	}
	return s.WriteAtomicMode(path, perm, write)
}

// WriteAtomicMode is WriteAtomic with explicit permission bits for the result.
func (s *Storage) WriteAtomicMode(path string, perm os.FileMode, write func(w io.Writer) error) error {
	if err := s.ValidatePathSafety(path); err != nil {
		return fmt.Errorf("validate destination: %w", err)
	}

	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Temp file lives in the same directory so the rename stays on one volume.
	tmp := path + ".tmp"
	dest, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	// A stale temp file or the umask may have left other bits.
	if err := s.fs.Chmod(tmp, perm); err != nil {
		dest.Close()
		s.fs.Remove(tmp)
		return fmt.Errorf("set temp file mode: %w", err)
	}

	writeErr := write(dest)
	closeErr := dest.Close()

	if writeErr != nil || closeErr != nil {
		s.fs.Remove(tmp)
		if writeErr != nil {
			return fmt.Errorf("write data: %w", writeErr)
		}
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}

	return nil
}

// WriteFileAtomic replaces path with data using a temp file and rename.
func (s *Storage) WriteFileAtomic(path string, data []byte) error {
	return s.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// CopyFile copies a file from src to dst, atomically replacing the destination.
// The copy keeps the permission bits of src.
func (s *Storage) CopyFile(src, dst string) error {
	info, err := s.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	return s.CopyFileMode(src, dst, info.Mode().Perm())
}

// CopyFileMode copies src to dst like CopyFile and gives dst the mode perm.
func (s *Storage) CopyFileMode(src, dst string, perm os.FileMode) (err error) {
	if err := s.ValidatePathSafety(src); err != nil {
		return fmt.Errorf("validate source: %w", err)
	}

	source, err := s.fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if cerr := source.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close source: %w", cerr)
		}
	}()

	return s.WriteAtomicMode(dst, perm, func(w io.Writer) error {
		_, err := io.Copy(w, source)
		return err
	})
}

// RenameNoClobber moves oldPath to newPath unless newPath already exists.
func (s *Storage) RenameNoClobber(oldPath, newPath string) error {
	exists, err := s.Exists(newPath)
	if err != nil {
		return fmt.Errorf("check destination: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDestinationExists, newPath)
	}
	return s.fs.Rename(oldPath, newPath)
}

// Touch creates an empty file with mode perm when path is absent; existing
// files are left alone.
func (s *Storage) Touch(path string, perm os.FileMode) error {
	exists, err := s.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return afero.WriteFile(s.fs, path, nil, perm)
}

// Open opens a file for reading.
func (s *Storage) Open(path string) (afero.File, error) {
	return s.fs.Open(path)
}

// ReadFile reads the entire file.
func (s *Storage) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(s.fs, path)
}

// Exists checks if a path exists.
func (s *Storage) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// Stat returns file information.
func (s *Storage) Stat(path string) (os.FileInfo, error) {
	return s.fs.Stat(path)
}

// MkdirAll creates a directory tree.
func (s *Storage) MkdirAll(path string) error {
	return s.fs.MkdirAll(path, 0o755)
}

// ReadDir reads directory contents.
func (s *Storage) ReadDir(path string) ([]os.FileInfo, error) {
	return afero.ReadDir(s.fs, path)
}

// Remove deletes a file.
func (s *Storage) Remove(path string) error {
	return s.fs.Remove(path)
}

// RemoveIfExists deletes a file and reports whether anything was removed.
func (s *Storage) RemoveIfExists(path string) (bool, error) {
	err := s.fs.Remove(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Chtimes changes file access and modification times.
func (s *Storage) Chtimes(path string, atime, mtime time.Time) error {
	return s.fs.Chtimes(path, atime, mtime)
}
