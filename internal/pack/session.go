package pack

import (
	"github.com/handiism/sample-pack-maker/internal/model"
	"github.com/handiism/sample-pack-maker/internal/selector"
)

// Session is the boundary used by front-ends: it accumulates a selection
// across add operations and runs the batch over it.
type Session struct {
	selection *selector.Selection
	processor *Processor
}

// NewSession creates an empty session backed by processor.
func NewSession(processor *Processor) *Session {
	return &Session{
		selection: selector.NewSelection(),
		processor: processor,
	}
}

// AddPaths validates raw paths and merges them into the selection.
func (s *Session) AddPaths(raw []string) (added, total int) {
	return s.selection.Add(raw)
}

// Clear empties the selection.
func (s *Session) Clear() {
	s.selection.Clear()
}

// Files returns a copy of the selection.
func (s *Session) Files() model.FileList {
	return s.selection.Files()
}

// Len returns the number of selected files.
func (s *Session) Len() int {
	return s.selection.Len()
}

// Processor returns the processor used by Run.
func (s *Session) Processor() *Processor {
	return s.processor
}

// SetProcessor replaces the processor, e.g. after the settings changed.
// The selection is kept.
func (s *Session) SetProcessor(p *Processor) {
	s.processor = p
}

// Run processes the current selection under packName, using the
// configured output root. The selection is kept after the run.
func (s *Session) Run(packName string) (*Result, error) {
	return s.processor.Process(s.Files(), packName, "")
}
