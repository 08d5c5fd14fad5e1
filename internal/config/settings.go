package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/sample-pack-maker/internal/audio"
	"github.com/handiism/sample-pack-maker/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Output settings
	OutputRoot string `json:"output_root" toml:"output_root"` // empty: parent dir of the first file

	// Tag settings
	MetadataPolicy string `json:"metadata_policy" toml:"metadata_policy"` // strip, relabel
	TagVersion     int    `json:"tag_version" toml:"tag_version"`         // 3 or 4

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" toml:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended" toml:"m3u_extended"`

	// Cover art settings
	CoverArtPath    string `json:"cover_art_path" toml:"cover_art_path"`
	CoverArtMaxSize int    `json:"cover_art_max_size" toml:"cover_art_max_size"`

	// VerifyPayload re-hashes the audio data of every output file and
	// compares it with its source after tagging.
	VerifyPayload bool `json:"verify_payload" toml:"verify_payload"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		MetadataPolicy: model.PolicyStripAndRelabel.String(),
		TagVersion:     int(audio.DefaultTagVersion),

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		CoverArtMaxSize: 1000,
	}
}

// DefaultPath returns the default location of the settings file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "samplepack", "config.toml"), nil
}

// Load reads settings from a JSON or TOML file. The format is chosen by
// the file extension: ".toml" is TOML, anything else is JSON.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isTOML(path) {
		decoder := toml.NewDecoder(bytes.NewReader(data))
		if err := decoder.Decode(settings); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a JSON or TOML file, by extension like Load.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks enumerated values and ranges.
func (s *Settings) Validate() error {
	if _, err := model.ParseMetadataPolicy(s.MetadataPolicy); err != nil {
		return fmt.Errorf("metadata_policy: %w", err)
	}
	if s.TagVersion != 3 && s.TagVersion != 4 {
		return fmt.Errorf("tag_version: must be 3 or 4, got %d", s.TagVersion)
	}
	switch strings.ToLower(s.PlaylistFormat) {
	case "m3u", "pls", "wpl", "zpl":
	default:
		return fmt.Errorf("playlist_format: unknown format %q", s.PlaylistFormat)
	}
	if s.CoverArtMaxSize < 0 {
		return fmt.Errorf("cover_art_max_size: must not be negative")
	}
	return nil
}

// Policy returns the configured metadata policy, falling back to relabel
// when the value is unknown.
func (s *Settings) Policy() model.MetadataPolicy {
	p, err := model.ParseMetadataPolicy(s.MetadataPolicy)
	if err != nil {
		return model.PolicyStripAndRelabel
	}
	return p
}

// Playlist returns the configured playlist format.
func (s *Settings) Playlist() audio.PlaylistFormat {
	return audio.ParsePlaylistFormat(s.PlaylistFormat)
}

// ToTagConfig converts settings to TagConfig.
func (s *Settings) ToTagConfig() *audio.TagConfig {
	version := byte(s.TagVersion)
	if version != 3 && version != 4 {
		version = audio.DefaultTagVersion
	}
	return &audio.TagConfig{
		Policy:  s.Policy(),
		Version: version,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
