// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - File copying that keeps permission bits and modification time
//   - Atomic replacement of a file through a same-directory temp file
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Cover image resizing and format conversion
//
// # File Operations
//
//	// Copy a sample into the pack folder
//	n, err := ioutils.CopyFile("/samples/kick.wav", "/samples/Pack_output/Pack_001.wav")
//
//	// Rewrite a file in place without leaving it half-written
//	err := ioutils.ReplaceFile(path, 0644, func(f *os.File) error { ... })
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/samples/Pack_output")
//
// # Image Processing
//
// The ImageService prepares pack cover art:
//
//	svc := ioutils.NewImageService()
//	jpeg, err := svc.PrepareCover(pngData, 1000)
package ioutils
