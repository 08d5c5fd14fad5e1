package pack

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/handiism/sample-pack-maker/internal/audio"
	"github.com/handiism/sample-pack-maker/internal/config"
	"github.com/handiism/sample-pack-maker/internal/model"
	"github.com/handiism/sample-pack-maker/internal/selector"
	"github.com/handiism/sample-pack-maker/internal/testsupport"
)

// sampleDir creates a resolved temp dir holding one fixture per name.
// Every fixture carries old tags and a distinct payload.
func sampleDir(t *testing.T, names ...string) (string, model.FileList) {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var raw []string
	for i, name := range names {
		w := testsupport.DefaultWav()
		w.Seed = byte(i + 1)
		w.ID3 = map[string]string{"TIT2": "orig " + name, "TPE1": "Someone", "TCON": "Drums"}
		w.Info = map[string]string{"INAM": name}
		path := filepath.Join(dir, name)
		w.Write(t, path)
		raw = append(raw, path)
	}

	files := selector.Select(raw)
	if len(files) != len(names) {
		t.Fatalf("Select() kept %d of %d fixtures", len(files), len(names))
	}
	return dir, files
}

type eventLog struct {
	events []ProgressEvent
}

func (l *eventLog) record(e ProgressEvent) { l.events = append(l.events, e) }

func (l *eventLog) has(level ProgressLevel, substr string) bool {
	for _, e := range l.events {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func readAll(t *testing.T, paths []string) map[string][]byte {
	t.Helper()
	out := make(map[string][]byte, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		out[p] = data
	}
	return out
}

func modTimes(t *testing.T, paths []string) map[string]time.Time {
	t.Helper()
	out := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		out[p] = info.ModTime()
	}
	return out
}

// assertSourcesUntouched fails when any source changed content or modification time.
func assertSourcesUntouched(t *testing.T, data map[string][]byte, times map[string]time.Time) {
	t.Helper()
	for path, want := range data {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("source %s: %v", path, err)
			continue
		}
		if !bytes.Equal(got, want) {
			t.Errorf("source %s was modified", path)
		}
	}
	for path, got := range modTimes(t, mapKeys(times)) {
		if !got.Equal(times[path]) {
			t.Errorf("source %s mtime = %v, want %v", path, got, times[path])
		}
	}
}

func mapKeys(m map[string]time.Time) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestProcess_DrumsVol1(t *testing.T) {
	dir, files := sampleDir(t, "kick.wav", "snare.wav", "hat.WAV")
	// Push mtimes into the past so a rewrite during the run would show.
	past := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	for _, f := range files {
		if err := os.Chtimes(f, past, past); err != nil {
			t.Fatal(err)
		}
	}
	originals := readAll(t, files)
	times := modTimes(t, files)

	log := &eventLog{}
	p := NewProcessor(config.DefaultSettings(), log.record)

	result, err := p.Process(files, "Drums Vol1", "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	wantFolder := filepath.Join(dir, "Drums Vol1_output")
	if result.Folder != wantFolder {
		t.Errorf("Folder = %q, want %q", result.Folder, wantFolder)
	}
	if result.Count != 3 {
		t.Errorf("Count = %d, want 3", result.Count)
	}
	if done, total := p.Progress(); done != 3 || total != 3 {
		t.Errorf("Progress() = %d/%d, want 3/3", done, total)
	}

	entries, err := os.ReadDir(wantFolder)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"Drums Vol1_001.wav", "Drums Vol1_002.wav", "Drums Vol1_003.wav"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("output folder = %v, want %v", names, want)
	}

	for i, name := range want {
		path := filepath.Join(wantFolder, name)
		report, err := audio.Inspect(path)
		if err != nil {
			t.Fatalf("Inspect(%s) error = %v", name, err)
		}
		if report.Title != name || report.Album != "Drums Vol1" {
			t.Errorf("%s tags = %q/%q", name, report.Title, report.Album)
		}
		if len(report.Frames) != 2 || report.Artist != "" || report.HasInfo {
			t.Errorf("%s kept old metadata: %+v", name, report)
		}

		srcDigest, _ := audio.PayloadDigest(files[i])
		dstDigest, _ := audio.PayloadDigest(path)
		if srcDigest != dstDigest {
			t.Errorf("%s payload differs from %s", name, files[i])
		}
	}

	assertSourcesUntouched(t, originals, times)

	if !log.has(LevelSuccess, "Drums Vol1") {
		t.Error("missing success event")
	}
}

func TestProcess_StripOnly(t *testing.T) {
	_, files := sampleDir(t, "a.wav", "b.wav")

	settings := config.DefaultSettings()
	settings.MetadataPolicy = "strip"
	result, err := NewProcessor(settings, nil).Process(files, "Pack", "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for i, entry := range result.Entries {
		w, err := audio.OpenWave(entry.Path)
		if err != nil {
			t.Fatalf("output %s not readable: %v", entry.Name, err)
		}
		if w.HasTags() {
			t.Errorf("%s still has tags", entry.Name)
		}
		srcDigest, _ := audio.PayloadDigest(files[i])
		dstDigest, _ := audio.PayloadDigest(entry.Path)
		if srcDigest != dstDigest {
			t.Errorf("%s payload changed", entry.Name)
		}
	}
}

func TestProcess_Preconditions(t *testing.T) {
	_, files := sampleDir(t, "a.wav")

	tests := []struct {
		name  string
		files model.FileList
		pack  string
		want  error
	}{
		{"empty input", nil, "Pack", model.ErrEmptyInput},
		{"empty input checked first", nil, "  ", model.ErrEmptyInput},
		{"blank name", files, " \t ", model.ErrEmptyPackName},
		{"separator", files, "a/b", model.ErrInvalidPackName},
		{"dot dot", files, "..", model.ErrInvalidPackName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			p := NewProcessor(config.DefaultSettings(), nil)

			_, err := p.Process(tt.files, tt.pack, root)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Process() error = %v, want %v", err, tt.want)
			}

			entries, _ := os.ReadDir(root)
			if len(entries) != 0 {
				t.Errorf("output root not empty after failed precondition: %v", entries)
			}
			if _, total := p.Progress(); total != 0 {
				t.Errorf("Progress total = %d, want 0", total)
			}
		})
	}
}

func TestProcess_NoFolderOnBlankName(t *testing.T) {
	dir, files := sampleDir(t, "a.wav")

	if _, err := NewProcessor(nil, nil).Process(files, "", ""); !errors.Is(err, model.ErrEmptyPackName) {
		t.Fatalf("Process() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "_output")); !os.IsNotExist(err) {
		t.Error("output folder created for blank pack name")
	}
}

func TestProcess_RerunOverwrites(t *testing.T) {
	dir, files := sampleDir(t, "a.wav", "b.wav")
	p := NewProcessor(config.DefaultSettings(), nil)

	if _, err := p.Process(files, "Pack", ""); err != nil {
		t.Fatal(err)
	}

	stray := filepath.Join(dir, "Pack_output", "notes.txt")
	if err := os.WriteFile(stray, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	second, err := p.Process(files, "Pack", "")
	if err != nil {
		t.Fatalf("second Process() error = %v", err)
	}
	if second.Count != 2 {
		t.Errorf("Count = %d, want 2", second.Count)
	}

	for i, entry := range second.Entries {
		report, err := audio.Inspect(entry.Path)
		if err != nil {
			t.Fatal(err)
		}
		if report.Title != entry.Name || len(report.Frames) != 2 {
			t.Errorf("%s after re-run: %+v", entry.Name, report)
		}
		srcDigest, _ := audio.PayloadDigest(files[i])
		dstDigest, _ := audio.PayloadDigest(entry.Path)
		if srcDigest != dstDigest {
			t.Errorf("%s payload differs from source", entry.Name)
		}
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "Pack_output"))
	if len(entries) != 3 {
		t.Errorf("output folder holds %d entries, want 3", len(entries))
	}
	if _, err := os.Stat(stray); err != nil {
		t.Error("existing folder content was removed")
	}
}

func TestProcess_OutputRoot(t *testing.T) {
	_, files := sampleDir(t, "a.wav")

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	result, err := NewProcessor(nil, nil).Process(files, "Pack", "~/packs")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	want := filepath.Join(home, "packs", "Pack_output")
	if result.Folder != want {
		t.Errorf("Folder = %q, want %q", result.Folder, want)
	}
	if _, err := os.Stat(filepath.Join(want, "Pack_001.wav")); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestProcess_ConfiguredOutputRoot(t *testing.T) {
	_, files := sampleDir(t, "a.wav")
	root := t.TempDir()

	settings := config.DefaultSettings()
	settings.OutputRoot = root
	result, err := NewProcessor(settings, nil).Process(files, "Pack", "")
	if err != nil {
		t.Fatal(err)
	}
	if result.Folder != filepath.Join(root, "Pack_output") {
		t.Errorf("Folder = %q", result.Folder)
	}
}

func TestProcess_TagIOError(t *testing.T) {
	dir, files := sampleDir(t, "a.wav")

	broken := filepath.Join(dir, "broken.wav")
	if err := os.WriteFile(broken, []byte("not a wave at all"), 0644); err != nil {
		t.Fatal(err)
	}
	files = append(files, broken)

	log := &eventLog{}
	p := NewProcessor(config.DefaultSettings(), log.record)
	_, err := p.Process(files, "Pack", "")

	var tagErr *TagIOError
	if !errors.As(err, &tagErr) {
		t.Fatalf("Process() error = %v, want *TagIOError", err)
	}
	if tagErr.Index != 2 || tagErr.Total != 2 || tagErr.Processed() != 1 {
		t.Errorf("TagIOError = %+v, Processed() = %d", tagErr, tagErr.Processed())
	}
	if !errors.Is(err, audio.ErrNotWave) {
		t.Errorf("error should wrap ErrNotWave: %v", err)
	}
	if done, _ := p.Progress(); done != 1 {
		t.Errorf("Progress done = %d, want 1", done)
	}

	// No rollback: the first file stays.
	if _, err := os.Stat(filepath.Join(dir, "Pack_output", "Pack_001.wav")); err != nil {
		t.Errorf("first output removed: %v", err)
	}
	if !log.has(LevelError, "broken.wav") {
		t.Error("missing error event")
	}
}

func TestProcess_OpenerError(t *testing.T) {
	_, files := sampleDir(t, "a.wav")
	locked := errors.New("file locked")

	tagger := audio.NewTagger(nil).WithOpener(func(string) (audio.TagHandle, error) {
		return nil, locked
	})
	_, err := NewProcessor(nil, nil).WithTagger(tagger).Process(files, "Pack", "")

	var tagErr *TagIOError
	if !errors.As(err, &tagErr) || !errors.Is(err, locked) {
		t.Fatalf("Process() error = %v, want TagIOError wrapping %v", err, locked)
	}
	if tagErr.Processed() != 0 {
		t.Errorf("Processed() = %d, want 0", tagErr.Processed())
	}
}

func TestProcess_CopyError(t *testing.T) {
	_, files := sampleDir(t, "a.wav", "b.wav")
	if err := os.Remove(files[1]); err != nil {
		t.Fatal(err)
	}

	_, err := NewProcessor(nil, nil).Process(files, "Pack", "")

	var fsErr *FilesystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("Process() error = %v, want *FilesystemError", err)
	}
	if fsErr.Op != "copy" || fsErr.Index != 2 || fsErr.Processed() != 1 {
		t.Errorf("FilesystemError = %+v", fsErr)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestProcess_FolderError(t *testing.T) {
	_, files := sampleDir(t, "a.wav")

	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewProcessor(nil, nil).Process(files, "Pack", blocker)

	var fsErr *FilesystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("Process() error = %v, want *FilesystemError", err)
	}
	if fsErr.Op != "create folder" || fsErr.Processed() != 0 {
		t.Errorf("FilesystemError = %+v", fsErr)
	}
}

func TestProcess_SourceCollision(t *testing.T) {
	type setup struct {
		files model.FileList
		root  string
	}
	tests := []struct {
		name    string
		symlink bool
		build   func(t *testing.T, dir, kick, earlier string) setup
	}{
		{
			name: "earlier output selected after its source",
			build: func(t *testing.T, dir, kick, earlier string) setup {
				return setup{files: selector.Select([]string{kick, earlier})}
			},
		},
		{
			name: "source is its own destination",
			build: func(t *testing.T, dir, kick, earlier string) setup {
				return setup{files: model.FileList{earlier}, root: dir}
			},
		},
		{
			name:    "root reached through a symlink",
			symlink: true,
			build: func(t *testing.T, dir, kick, earlier string) setup {
				link := filepath.Join(t.TempDir(), "samples")
				if err := os.Symlink(dir, link); err != nil {
					t.Fatal(err)
				}
				return setup{files: model.FileList{earlier}, root: link}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.symlink && runtime.GOOS == "windows" {
				t.Skip("symlinks")
			}
			dir, files := sampleDir(t, "kick.wav")
			earlier := filepath.Join(dir, "P_output", "P_001.wav")
			w := testsupport.DefaultWav()
			w.Seed = 9
			w.Write(t, earlier)

			in := tt.build(t, dir, files[0], earlier)
			originals := readAll(t, in.files)
			times := modTimes(t, in.files)

			p := NewProcessor(nil, nil)
			if _, _, err := p.Plan(in.files, "P", in.root); !errors.Is(err, ErrSourceCollision) {
				t.Errorf("Plan() error = %v, want ErrSourceCollision", err)
			}

			_, err := p.Process(in.files, "P", in.root)
			if !errors.Is(err, ErrSourceCollision) {
				t.Fatalf("Process() error = %v, want ErrSourceCollision", err)
			}
			var fsErr *FilesystemError
			if !errors.As(err, &fsErr) || fsErr.Op != "check" || fsErr.Processed() != 0 {
				t.Errorf("error = %#v", err)
			}
			if _, total := p.Progress(); total != 0 {
				t.Errorf("Progress total = %d, want 0", total)
			}

			assertSourcesUntouched(t, originals, times)
			if _, err := os.Stat(filepath.Join(dir, "P_output", "P_002.wav")); !os.IsNotExist(err) {
				t.Error("batch wrote past the collision check")
			}
		})
	}
}

func TestProcess_VerifyPayload(t *testing.T) {
	_, files := sampleDir(t, "a.wav", "b.wav")

	settings := config.DefaultSettings()
	settings.VerifyPayload = true
	if _, err := NewProcessor(settings, nil).Process(files, "Pack", ""); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
}

func TestProcess_Extras(t *testing.T) {
	dir, files := sampleDir(t, "a.wav", "b.wav")

	cover := filepath.Join(t.TempDir(), "art.png")
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cover, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	settings := config.DefaultSettings()
	settings.CreatePlaylist = true
	settings.PlaylistFormat = "pls"
	settings.CoverArtPath = cover
	settings.CoverArtMaxSize = 16

	result, err := NewProcessor(settings, nil).Process(files, "Pack", "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	folder := filepath.Join(dir, "Pack_output")
	if result.Playlist != filepath.Join(folder, "Pack.pls") {
		t.Errorf("Playlist = %q", result.Playlist)
	}
	content, err := os.ReadFile(result.Playlist)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "File2=Pack_002.wav") {
		t.Errorf("playlist content = %q", content)
	}

	if result.Cover != filepath.Join(folder, CoverFileName) {
		t.Errorf("Cover = %q", result.Cover)
	}
	data, err := os.ReadFile(result.Cover)
	if err != nil {
		t.Fatal(err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if format != "jpeg" || cfg.Width != 16 || cfg.Height != 8 {
		t.Errorf("cover = %s %dx%d, want jpeg 16x8", format, cfg.Width, cfg.Height)
	}
}

func TestProcess_CoverFailureIsWarning(t *testing.T) {
	_, files := sampleDir(t, "a.wav")

	settings := config.DefaultSettings()
	settings.CoverArtPath = filepath.Join(t.TempDir(), "missing.png")

	log := &eventLog{}
	result, err := NewProcessor(settings, log.record).Process(files, "Pack", "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.Cover != "" {
		t.Errorf("Cover = %q, want empty", result.Cover)
	}
	if !log.has(LevelWarning, "cover art") {
		t.Error("missing warning event")
	}
}

func TestPlan(t *testing.T) {
	dir, files := sampleDir(t, "b.wav", "A.WAV")

	entries, folder, err := NewProcessor(nil, nil).Plan(files, " Kit ", "")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if folder != filepath.Join(dir, "Kit_output") {
		t.Errorf("folder = %q", folder)
	}
	if len(entries) != 2 || entries[0].Name != "Kit_001.wav" || entries[1].Name != "Kit_002.wav" {
		t.Errorf("entries = %+v", entries)
	}
	if entries[1].Source != files[1] {
		t.Errorf("entry source = %q, want %q", entries[1].Source, files[1])
	}
	if _, err := os.Stat(folder); !os.IsNotExist(err) {
		t.Error("Plan() created the output folder")
	}

	if _, _, err := NewProcessor(nil, nil).Plan(nil, "Kit", ""); !errors.Is(err, model.ErrEmptyInput) {
		t.Errorf("Plan(nil) error = %v", err)
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"folder",
			&FilesystemError{Op: "create folder", Total: 3, Destination: "/out/P_output", Err: cause},
			"create folder /out/P_output: boom",
		},
		{
			"copy",
			&FilesystemError{Op: "copy", Index: 2, Total: 3, Source: "/in/a.wav", Destination: "/out/P_002.wav", Err: cause},
			"copy file 2 of 3 (/in/a.wav -> /out/P_002.wav): boom",
		},
		{
			"collision",
			&FilesystemError{Op: "check", Total: 2, Source: "/in/P_001.wav", Destination: "/in/P_001.wav", Err: cause},
			"check /in/P_001.wav -> /in/P_001.wav: boom",
		},
		{
			"tag",
			&TagIOError{Op: "tag", Index: 3, Total: 3, Destination: "/out/P_003.wav", Err: cause},
			"tag file 3 of 3 (/out/P_003.wav): boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, cause) {
				t.Error("Unwrap() lost the cause")
			}
		})
	}
}
