package audio

import (
	"fmt"

	"github.com/handiism/sample-pack-maker/internal/model"
)

// DefaultTagVersion is the ID3v2 minor version written by the relabel policy.
// ID3v2.3 is the most widely read version among DAWs and sample browsers.
const DefaultTagVersion byte = 3

// TagHandle is the tag container capability the batch processor needs.
//
// The processor never looks at tag bytes itself; WaveFile is the
// implementation backed by the id3v2 library.
type TagHandle interface {
	// HasTags reports whether the container currently holds any tags.
	HasTags() bool

	// DeleteAll removes every tag from the container.
	DeleteAll() error

	// SetTitle sets the title written by the next Save.
	SetTitle(title string)

	// SetAlbum sets the album written by the next Save.
	SetAlbum(album string)

	// Save persists the tag using the given ID3v2 version.
	Save(version byte) error
}

// Opener opens the tag container of a file.
type Opener func(path string) (TagHandle, error)

// OpenTagHandle opens path as a WAV tag container.
func OpenTagHandle(path string) (TagHandle, error) {
	return OpenWave(path)
}

// TagConfig holds the metadata normalization settings of a run.
//
// Example:
//
//	cfg := &TagConfig{
//	    Policy:  model.PolicyStripOnly, // remove tags, write nothing
//	    Version: 3,
//	}
type TagConfig struct {
	// Policy selects strip-only or strip-and-relabel.
	Policy model.MetadataPolicy

	// Version is the ID3v2 version used when writing tags (3 or 4).
	Version byte
}

// DefaultTagConfig returns the default tag configuration:
// strip and relabel, written as ID3v2.3.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Policy:  model.PolicyStripAndRelabel,
		Version: DefaultTagVersion,
	}
}

// Tagger normalizes the metadata of copied pack files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.Normalize("/out/Pack_001.wav", "Pack_001.wav", "Pack")
type Tagger struct {
	config *TagConfig
	open   Opener
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config, open: OpenTagHandle}
}

// WithOpener replaces the function used to open tag containers.
func (t *Tagger) WithOpener(open Opener) *Tagger {
	t.open = open
	return t
}

// Policy returns the configured metadata policy.
func (t *Tagger) Policy() model.MetadataPolicy {
	return t.config.Policy
}

// Normalize opens path and applies the configured policy.
// title and album are only used by the relabel policy.
func (t *Tagger) Normalize(path, title, album string) error {
	h, err := t.open(path)
	if err != nil {
		return fmt.Errorf("open tags: %w", err)
	}
	return ApplyPolicy(h, t.config.Policy, title, album, t.config.Version)
}

// ApplyPolicy normalizes the tags of h.
//
//   - PolicyStripOnly: existing tags are deleted, nothing is written.
//   - PolicyStripAndRelabel: existing tags are deleted, then a tag holding
//     exactly title and album is saved as ID3v2.<version>.
func ApplyPolicy(h TagHandle, policy model.MetadataPolicy, title, album string, version byte) error {
	if h.HasTags() {
		if err := h.DeleteAll(); err != nil {
			return fmt.Errorf("delete tags: %w", err)
		}
	}

	switch policy {
	case model.PolicyStripOnly:
		return nil
	case model.PolicyStripAndRelabel:
		h.SetTitle(title)
		h.SetAlbum(album)
		if err := h.Save(version); err != nil {
			return fmt.Errorf("save tags: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown metadata policy %v", policy)
	}
}
