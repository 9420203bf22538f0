package fs

import (
	"os"
	"path/filepath"
)

const tmpPattern = ".cibootstrap-tmp-*"

// WriteFileAtomic writes data to path atomically using a temp file + rename.
// The temp file is created in the same directory as path to ensure atomic rename on POSIX.
// If the operation fails, the original file (if any) is left unchanged.
// The caller must ensure the parent directory exists.
func WriteFileAtomic(fs FS, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	pattern := tmpPattern

	// Create temp file in the same directory
	tmpPath, w, err := fs.CreateTemp(dir, pattern)
	if err != nil {
		return err
	}

	// Ensure cleanup on any error path
	success := false
	defer func() {
		if !success {
			fs.Remove(tmpPath)
		}
	}()

	// Write data to temp file
	_, err = w.Write(data)
	if err != nil {
		w.Close()
		return err
	}

	// Close the file before rename
	if err := w.Close(); err != nil {
		return err
	}

	// Set permissions on temp file before rename
	if err := fs.Chmod(tmpPath, perm); err != nil {
		return err
	}

	// Atomic rename
	if err := fs.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}

// ReplaceFile writes data to path atomically, creating parent directories first.
// An existing file at path is replaced in one rename.
func ReplaceFile(fs FS, path string, data []byte, perm os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return WriteFileAtomic(fs, path, data, perm)
}

// ReadOptional reads path, reporting present=false instead of an error when
// the file does not exist. Any other failure is returned as-is.
func ReadOptional(fs FS, path string) (data []byte, present bool, err error) {
	data, err = fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}
