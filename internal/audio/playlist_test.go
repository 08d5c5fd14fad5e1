package audio

import (
	"strings"
	"testing"

	"github.com/handiism/sample-pack-maker/internal/model"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	pack := createTestPack()
	creator := NewPlaylistCreator(FormatM3U, false)

	content := creator.CreatePlaylist(pack)

	want := "Drums Vol1_001.wav\nDrums Vol1_002.wav\n"
	if content != want {
		t.Errorf("M3U = %q, want %q", content, want)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	pack := createTestPack()
	creator := NewPlaylistCreator(FormatM3U, true)

	content := creator.CreatePlaylist(pack)

	if !strings.HasPrefix(content, "#EXTM3U") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:1,Drums Vol1 - Drums Vol1_001.wav\n") {
		t.Errorf("Extended M3U should contain EXTINF with duration, got %q", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	pack := createTestPack()
	creator := NewPlaylistCreator(FormatPLS, false)

	content := creator.CreatePlaylist(pack)

	if !strings.HasPrefix(content, "[playlist]") {
		t.Error("PLS should start with [playlist]")
	}
	if !strings.Contains(content, "File1=Drums Vol1_001.wav") {
		t.Error("PLS should contain File1=")
	}
	if !strings.Contains(content, "NumberOfEntries=2") {
		t.Error("PLS should contain NumberOfEntries=2")
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	pack := createTestPack()
	creator := NewPlaylistCreator(FormatWPL, false)

	content := creator.CreatePlaylist(pack)

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, `<media src="Drums Vol1_002.wav"/>`) {
		t.Error("WPL should contain media elements")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	pack := createTestPack()
	creator := NewPlaylistCreator(FormatZPL, false)

	content := creator.CreatePlaylist(pack)

	if !strings.Contains(content, "<?zpl") {
		t.Error("ZPL should contain XML declaration")
	}
	if !strings.Contains(content, `albumTitle="Drums Vol1"`) {
		t.Error("ZPL should contain albumTitle attribute")
	}
	if !strings.Contains(content, `duration="2500"`) {
		t.Errorf("ZPL should contain millisecond duration, got %q", content)
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	pack := &model.Pack{
		Name: "Kicks & <Snares>",
		Entries: []model.PackEntry{
			{Index: 1, Name: "Kicks & <Snares>_001.wav"},
		},
	}

	content := NewPlaylistCreator(FormatWPL, false).CreatePlaylist(pack)

	if !strings.Contains(content, "Kicks &amp; &lt;Snares&gt;") {
		t.Errorf("WPL should escape special characters, got %q", content)
	}
	if strings.Contains(content, "<Snares>") {
		t.Error("WPL should escape < and >")
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := []struct {
		in   string
		want PlaylistFormat
		ext  string
	}{
		{"m3u", FormatM3U, ".m3u"},
		{"PLS", FormatPLS, ".pls"},
		{"wpl", FormatWPL, ".wpl"},
		{"zpl", FormatZPL, ".zpl"},
		{"bogus", FormatM3U, ".m3u"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParsePlaylistFormat(tt.in)
			if got != tt.want {
				t.Errorf("ParsePlaylistFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Extension() != tt.ext {
				t.Errorf("Extension() = %q, want %q", got.Extension(), tt.ext)
			}
		})
	}
}

func createTestPack() *model.Pack {
	return &model.Pack{
		Name:   "Drums Vol1",
		Folder: "/samples/Drums Vol1_output",
		Entries: []model.PackEntry{
			{Index: 1, Name: "Drums Vol1_001.wav", Path: "/samples/Drums Vol1_output/Drums Vol1_001.wav", Duration: 1.2},
			{Index: 2, Name: "Drums Vol1_002.wav", Path: "/samples/Drums Vol1_output/Drums Vol1_002.wav", Duration: 2.5},
		},
	}
}
