package audio

import (
	"fmt"
	"strings"

	"github.com/handiism/sample-pack-maker/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// ParsePlaylistFormat converts "m3u", "pls", "wpl" or "zpl" to a format.
// Unknown values fall back to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pls":
		return FormatPLS
	case "wpl":
		return FormatWPL
	case "zpl":
		return FormatZPL
	default:
		return FormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// PlaylistCreator generates a playlist listing the files of a pack,
// in pack order, so the pack can be auditioned in any player.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(pack)
//	os.WriteFile(filepath.Join(pack.Folder, pack.Name+".m3u"), []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:2,Drums Vol1 - Drums Vol1_001.wav
//	// Drums Vol1_001.wav
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for other formats)
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for a pack.
//
// Returns the playlist as a string, ready to be written to a file.
// Entry paths in the playlist are relative (just the filename),
// assuming the playlist file is written into the pack folder.
//
// Example:
//
//	content := creator.CreatePlaylist(pack)
//	err := os.WriteFile("/samples/Drums_output/Drums.m3u", []byte(content), 0644)
func (p *PlaylistCreator) CreatePlaylist(pack *model.Pack) string {
	switch p.format {
	case FormatM3U:
		return p.createM3U(pack)
	case FormatPLS:
		return p.createPLS(pack)
	case FormatWPL:
		return p.createWPL(pack)
	case FormatZPL:
		return p.createZPL(pack)
	default:
		return p.createM3U(pack)
	}
}

// createM3U generates an M3U playlist.
//
// Extended M3U (when extended=true) adds a header and one EXTINF line
// per entry with the duration in whole seconds:
//
//	#EXTM3U
//	#EXTINF:2,Drums Vol1 - Drums Vol1_001.wav
//	Drums Vol1_001.wav
func (p *PlaylistCreator) createM3U(pack *model.Pack) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range pack.Entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", int(e.Duration), pack.Name, e.Name)
		}
		sb.WriteString(e.Name + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=Drums Vol1_001.wav
//	Title1=Drums Vol1_001.wav
//	Length1=2
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(pack *model.Pack) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, e := range pack.Entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, e.Name)
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, e.Name)
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, int(e.Duration))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(pack.Entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(pack *model.Pack) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(pack.Name))
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")
	for _, e := range pack.Entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(e.Name))
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")

	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist.
//
// ZPL is WPL plus per-entry album, title and duration (milliseconds) attributes.
func (p *PlaylistCreator) createZPL(pack *model.Pack) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(pack.Name))
	sb.WriteString("    <meta name=\"Generator\" content=\"SamplePackMaker\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(pack.Entries))
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")
	for _, e := range pack.Entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" duration=\"%d\"/>\n",
			escapeXML(e.Name),
			escapeXML(pack.Name),
			escapeXML(e.Name),
			int64(e.Duration*1000))
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
//
// Replaces: & < > " '
// With:     &amp; &lt; &gt; &quot; &apos;
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
