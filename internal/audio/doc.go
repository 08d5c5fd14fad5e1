// Package audio provides WAV tag handling and playlist generation.
//
// # Tags
//
// WAV files carry tags in RIFF chunks: an "id3 " chunk holding an ID3v2
// tag, and LIST/INFO chunks. WaveFile treats both as tags. The audio
// chunks are never decoded; rewrites copy them byte for byte.
//
// Use the Tagger to normalize the tags of a pack file:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.Normalize("/out/Pack_001.wav", "Pack_001.wav", "Pack")
//
// Policies:
//   - strip: remove all tags, write nothing
//   - relabel: remove all tags, then write TIT2 and TALB as ID3v2.3
//
// Inspect reads tags back with a second, independent tag reader.
//
// # Playlist Generation
//
// Generate playlists in various formats:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(pack)
//	os.WriteFile("Pack.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
