// Package config provides configuration management for sample-pack-maker.
//
// This package handles:
//   - Loading and saving settings from JSON or TOML files
//   - Default configuration values
//   - Conversion to audio.TagConfig for the tagger
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Output next to the first selected file
//	// Tags stripped and relabeled as ID3v2.3
//	// No playlist, no cover art
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.toml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// Files ending in ".toml" are read as TOML, everything else as JSON.
//
// # Saving Settings
//
//	settings.MetadataPolicy = "strip"
//	err := settings.Save("/path/to/config.json")
package config
