package selector

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/handiism/sample-pack-maker/internal/model"
)

// Selection accumulates files across several add operations, such as
// repeated file dialog picks or drop events.
//
// Dedup applies to the combined set: a path already in the selection is
// never added twice. Selection is safe for concurrent use.
type Selection struct {
	mu    sync.RWMutex
	files model.FileList
}

// NewSelection creates an empty Selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Add validates raw and appends the new files.
// It returns how many files were added and the total afterwards.
func (s *Selection) Add(raw []string) (added, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.files)
	s.files = merge(s.files, raw)
	return len(s.files) - before, len(s.files)
}

// Clear removes every file from the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.files = nil
	s.mu.Unlock()
}

// Files returns a copy of the current selection in insertion order.
func (s *Selection) Files() model.FileList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(model.FileList(nil), s.files...)
}

// Len returns the number of selected files.
func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// ListDir returns the entries of dir as raw path strings, sorted by name.
// It does not descend into subdirectories and does no filtering;
// pass the result to Select or Selection.Add.
func ListDir(dir string) ([]string, error) {
	expanded, err := ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(expanded)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.Join(expanded, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
