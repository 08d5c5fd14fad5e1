// Package ioutils provides file system utilities for sample-pack-maker.
//
// This package contains functions for:
//   - File copying with permission bits and modification time
//   - Atomic file replacement
//   - Filename sanitization
//   - Directory creation
package ioutils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrSameFile is returned by CopyFile when source and destination are the same file.
var ErrSameFile = errors.New("source and destination are the same file")

// CopyFile copies a file from source to destination, including its
// permission bits and modification time.
//
// The destination is created if it doesn't exist, or truncated if it does.
// Copying a file onto itself fails with ErrSameFile and leaves it untouched.
// The copied bytes are flushed to disk before CopyFile returns, so callers
// may safely rewrite the destination afterwards.
//
// Returns the number of bytes copied. Returns an error if:
//   - Source file cannot be opened or is not a regular file
//   - Destination file cannot be created
//   - Copy, sync or metadata update fails
//
// Example:
//
//	n, err := CopyFile("/samples/kick.wav", "/samples/Pack_output/Pack_001.wav")
func CopyFile(src, dst string) (int64, error) {
	sourceFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s: not a regular file", src)
	}
	if existing, err := os.Stat(dst); err == nil && os.SameFile(info, existing) {
		return 0, fmt.Errorf("%s: %w", dst, ErrSameFile)
	}

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(destFile, sourceFile)
	if err != nil {
		destFile.Close()
		return n, err
	}
	if err := destFile.Sync(); err != nil {
		destFile.Close()
		return n, err
	}
	if err := destFile.Close(); err != nil {
		return n, err
	}

	// OpenFile only applies the mode on creation; an overwritten file keeps its old bits.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return n, err
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return n, err
	}

	return n, nil
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Example:
//
//	playlistContent := []byte("#EXTM3U\n...")
//	err := WriteFile("/samples/Pack_output/Pack.m3u", playlistContent)
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// ReplaceFile atomically replaces path with the output of write.
//
// write receives a temporary file created in the same directory as path.
// When it returns nil the temporary file is synced, given perm, and renamed
// over path. On any error the temporary file is removed and path is left
// untouched.
func ReplaceFile(path string, perm os.FileMode, write func(f *os.File) error) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := write(tmp); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

var (
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots   = regexp.MustCompile(`\.+$`)
	repeatedSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// This function ensures filenames are valid across different operating systems,
// particularly Windows which has the most restrictive naming rules.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Leading and trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Drums: Vol 1/2")      // Returns "Drums_ Vol 1_2"
//	SanitizeFileName("Kicks...")            // Returns "Kicks"
//	SanitizeFileName("Name   with  spaces") // Returns "Name with spaces"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpaces.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/samples/Drums Vol1_output")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
