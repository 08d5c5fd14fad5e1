package pack

import (
	"errors"
	"fmt"
)

// ErrPayloadMismatch is returned by payload verification when the audio data
// of an output file differs from its source.
var ErrPayloadMismatch = errors.New("audio payload differs from source")

// ErrSourceCollision is returned when a planned output file is one of the
// selected sources. Nothing is written in that case.
var ErrSourceCollision = errors.New("output file is one of the selected sources")

// FilesystemError reports a failure to create the output folder or to copy
// a file. Files processed before the failure are left in place.
type FilesystemError struct {
	Op          string // "check", "create folder" or "copy"
	Index       int    // 1-based file index, 0 when no file was involved
	Total       int
	Source      string
	Destination string
	Err         error
}

func (e *FilesystemError) Error() string {
	return describe(e.Op, e.Index, e.Total, e.Source, e.Destination, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// Processed returns how many files were completed before the failure.
func (e *FilesystemError) Processed() int { return processed(e.Index) }

// TagIOError reports a failure to open, clear, write or verify the tags of
// a copied file. The copy itself is left in place.
type TagIOError struct {
	Op          string // "tag" or "verify"
	Index       int
	Total       int
	Source      string
	Destination string
	Err         error
}

func (e *TagIOError) Error() string {
	return describe(e.Op, e.Index, e.Total, e.Source, e.Destination, e.Err)
}

func (e *TagIOError) Unwrap() error { return e.Err }

// Processed returns how many files were completed before the failure.
func (e *TagIOError) Processed() int { return processed(e.Index) }

func processed(index int) int {
	if index <= 0 {
		return 0
	}
	return index - 1
}

func describe(op string, index, total int, src, dst string, err error) string {
	if index == 0 {
		if src != "" {
			return fmt.Sprintf("%s %s -> %s: %v", op, src, dst, err)
		}
		return fmt.Sprintf("%s %s: %v", op, dst, err)
	}
	if src == "" {
		return fmt.Sprintf("%s file %d of %d (%s): %v", op, index, total, dst, err)
	}
	return fmt.Sprintf("%s file %d of %d (%s -> %s): %v", op, index, total, src, dst, err)
}
