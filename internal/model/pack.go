package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Precondition errors for a pack job. They are never repaired automatically.
var (
	// ErrEmptyInput is returned when a batch is started with no validated files.
	ErrEmptyInput = errors.New("no WAV files to process")

	// ErrEmptyPackName is returned when the pack name is blank after trimming.
	ErrEmptyPackName = errors.New("pack name is empty")

	// ErrInvalidPackName is returned when the pack name cannot be used as a
	// file name prefix (path separators, control characters, "." or "..").
	ErrInvalidPackName = errors.New("pack name is not a valid file name")
)

// OutputSuffix is appended to the pack name to form the output folder name.
const OutputSuffix = "_output"

// FileList is an ordered sequence of absolute WAV paths with no duplicates.
//
// The order is insertion order (first seen wins) and determines the
// sequential index each file receives in the output folder.
type FileList []string

// Contains reports whether path is already part of the list.
func (l FileList) Contains(path string) bool {
	for _, p := range l {
		if p == path {
			return true
		}
	}
	return false
}

// MetadataPolicy selects how the tag container of each copied file is normalized.
type MetadataPolicy int

const (
	// PolicyStripAndRelabel deletes existing tags, then writes a fresh tag
	// holding only a title (the new file name) and an album (the pack name).
	PolicyStripAndRelabel MetadataPolicy = iota

	// PolicyStripOnly deletes existing tags and writes nothing new.
	PolicyStripOnly
)

// String returns the configuration spelling of the policy.
func (p MetadataPolicy) String() string {
	switch p {
	case PolicyStripOnly:
		return "strip"
	case PolicyStripAndRelabel:
		return "relabel"
	default:
		return fmt.Sprintf("MetadataPolicy(%d)", int(p))
	}
}

// ParseMetadataPolicy converts "strip" or "relabel" (case-insensitive) to a policy.
func ParseMetadataPolicy(s string) (MetadataPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strip", "strip-only", "strip_only":
		return PolicyStripOnly, nil
	case "relabel", "strip-and-relabel", "strip_and_relabel":
		return PolicyStripAndRelabel, nil
	default:
		return 0, fmt.Errorf("unknown metadata policy %q (want strip or relabel)", s)
	}
}

// PackJob is the unit of work handed to the batch processor.
type PackJob struct {
	// Name is the pack name, used as file name prefix and album tag.
	Name string

	// Files is the ordered selection to process.
	Files FileList

	// OutputRoot overrides the folder under which <Name>_output is created.
	// Empty means the parent directory of the first file.
	OutputRoot string
}

// NewPackJob trims the pack name and copies the file list.
func NewPackJob(name string, files FileList, outputRoot string) *PackJob {
	return &PackJob{
		Name:       strings.TrimSpace(name),
		Files:      append(FileList(nil), files...),
		OutputRoot: outputRoot,
	}
}

// Validate checks the job preconditions. Empty input is reported first.
func (j *PackJob) Validate() error {
	if len(j.Files) == 0 {
		return ErrEmptyInput
	}
	return ValidatePackName(j.Name)
}

// BaseDir returns the directory that will hold the output folder.
func (j *PackJob) BaseDir() string {
	if j.OutputRoot != "" {
		return j.OutputRoot
	}
	if len(j.Files) == 0 {
		return ""
	}
	return filepath.Dir(j.Files[0])
}

// OutputFolder returns <base>/<name>_output.
func (j *PackJob) OutputFolder() string {
	return filepath.Join(j.BaseDir(), OutputFolderName(j.Name))
}

// Entries computes the destination of every file in the job.
func (j *PackJob) Entries() []PackEntry {
	folder := j.OutputFolder()
	entries := make([]PackEntry, len(j.Files))
	for i, src := range j.Files {
		name := DestinationName(j.Name, i+1, src)
		entries[i] = PackEntry{
			Index:  i + 1,
			Source: src,
			Name:   name,
			Path:   filepath.Join(folder, name),
		}
	}
	return entries
}

// ValidatePackName reports whether name can be used as a pack name.
// The name is trimmed before checking.
func ValidatePackName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyPackName
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidPackName, name)
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: %q", ErrInvalidPackName, name)
		}
	}
	return nil
}

// OutputFolderName returns the folder name for a pack.
func OutputFolderName(packName string) string {
	return packName + OutputSuffix
}

// DestinationName returns "<pack>_<index>.<ext>" with the index padded to
// at least three digits and the source extension lower-cased.
//
// Example:
//
//	DestinationName("Drums Vol1", 3, "/x/HAT.WAV")    // "Drums Vol1_003.wav"
//	DestinationName("Drums Vol1", 1200, "/x/a.wav")   // "Drums Vol1_1200.wav"
func DestinationName(packName string, index int, source string) string {
	return fmt.Sprintf("%s_%03d%s", packName, index, strings.ToLower(filepath.Ext(source)))
}

// PackEntry is the planned destination of one source file.
type PackEntry struct {
	// Index is the 1-based position in the file list.
	Index int

	// Source is the absolute path of the original file.
	Source string

	// Name is the destination file name, also used as title tag.
	Name string

	// Path is the full destination path inside the output folder.
	Path string

	// Duration is the audio length in seconds, when known.
	Duration float64
}

// Pack is a finished (or planned) output folder with its entries.
type Pack struct {
	Name    string
	Folder  string
	Entries []PackEntry
}
