package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"github.com/handiism/sample-pack-maker/internal/audio"
	"github.com/handiism/sample-pack-maker/internal/config"
	ioutils "github.com/handiism/sample-pack-maker/internal/io"
	"github.com/handiism/sample-pack-maker/internal/model"
	"github.com/handiism/sample-pack-maker/internal/selector"
)

// CoverFileName is the name of the cover image written into the output folder.
const CoverFileName = "cover.jpg"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a batch progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Result summarizes a finished batch.
type Result struct {
	// Folder is the output folder.
	Folder string

	// Count is the number of files produced. It always equals the input length.
	Count int

	// Entries lists the produced files in order.
	Entries []model.PackEntry

	// Bytes is the total size copied.
	Bytes int64

	// Playlist and Cover are the paths of the optional extras, empty when
	// they were not requested or could not be written.
	Playlist string
	Cover    string
}

// Processor copies a file list into a pack folder and normalizes the tags
// of every copy.
//
// A Processor runs one batch at a time. Progress may be polled from another
// goroutine while Process runs.
type Processor struct {
	settings     *config.Settings
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	doneFiles  int32
	totalFiles int32

	onProgress func(ProgressEvent)
}

// NewProcessor creates a new Processor.
func NewProcessor(settings *config.Settings, onProgress func(ProgressEvent)) *Processor {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return &Processor{
		settings:     settings,
		tagger:       audio.NewTagger(settings.ToTagConfig()),
		playlist:     audio.NewPlaylistCreator(settings.Playlist(), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}
}

// WithTagger replaces the tagger used for the metadata pass.
func (p *Processor) WithTagger(t *audio.Tagger) *Processor {
	p.tagger = t
	return p
}

// Progress returns how many files of the current batch are done.
func (p *Processor) Progress() (done, total int) {
	return int(atomic.LoadInt32(&p.doneFiles)), int(atomic.LoadInt32(&p.totalFiles))
}

// Plan validates the job and computes every destination without writing
// anything. It returns the entries and the output folder.
func (p *Processor) Plan(files model.FileList, packName, outputRoot string) ([]model.PackEntry, string, error) {
	job, err := p.job(files, packName, outputRoot)
	if err != nil {
		return nil, "", err
	}
	entries := job.Entries()
	if err := checkCollisions(job.Files, entries); err != nil {
		return nil, "", err
	}
	return entries, job.OutputFolder(), nil
}

// Process runs the batch.
//
// Preconditions are checked before anything is written: an empty file list
// fails with model.ErrEmptyInput, a blank or unusable pack name with
// model.ErrEmptyPackName or model.ErrInvalidPackName, and an output file
// that would overwrite a selected source with a *FilesystemError wrapping
// ErrSourceCollision.
//
// Files are then copied in order to <base>/<pack>_output/<pack>_<NNN>.<ext>
// and the configured metadata policy is applied to each copy. Sources are
// never modified. The first failure aborts the batch with a *FilesystemError
// or *TagIOError; files produced before it stay on disk.
func (p *Processor) Process(files model.FileList, packName, outputRoot string) (*Result, error) {
	job, err := p.job(files, packName, outputRoot)
	if err != nil {
		return nil, err
	}

	entries := job.Entries()
	if err := checkCollisions(job.Files, entries); err != nil {
		p.progress(ProgressEvent{Message: err.Error(), Level: LevelError})
		return nil, err
	}

	total := len(job.Files)
	atomic.StoreInt32(&p.totalFiles, int32(total))
	atomic.StoreInt32(&p.doneFiles, 0)

	folder := job.OutputFolder()
	p.progress(ProgressEvent{Message: fmt.Sprintf("Creating pack %q (%d files, %s) in %s", job.Name, total, p.tagger.Policy(), folder), Level: LevelInfo})

	if err := ioutils.EnsureDir(folder); err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error creating output folder: %v", err), Level: LevelError})
		return nil, &FilesystemError{Op: "create folder", Total: total, Destination: folder, Err: err}
	}

	result := &Result{Folder: folder}
	for _, entry := range entries {
		n, err := ioutils.CopyFile(entry.Source, entry.Path)
		if err != nil {
			err = &FilesystemError{Op: "copy", Index: entry.Index, Total: total, Source: entry.Source, Destination: entry.Path, Err: err}
			p.progress(ProgressEvent{Message: err.Error(), Level: LevelError})
			return nil, err
		}
		result.Bytes += n
		p.progress(ProgressEvent{Message: fmt.Sprintf("Copied %s -> %s", filepath.Base(entry.Source), entry.Name), Level: LevelVerbose})

		if err := p.tagger.Normalize(entry.Path, entry.Name, job.Name); err != nil {
			err = &TagIOError{Op: "tag", Index: entry.Index, Total: total, Source: entry.Source, Destination: entry.Path, Err: err}
			p.progress(ProgressEvent{Message: err.Error(), Level: LevelError})
			return nil, err
		}

		if p.settings.VerifyPayload {
			if err := verifyPayload(entry.Source, entry.Path); err != nil {
				err = &TagIOError{Op: "verify", Index: entry.Index, Total: total, Source: entry.Source, Destination: entry.Path, Err: err}
				p.progress(ProgressEvent{Message: err.Error(), Level: LevelError})
				return nil, err
			}
		}

		if p.settings.CreatePlaylist {
			if info, err := audio.ReadInfo(entry.Path); err == nil {
				entry.Duration = info.Duration.Seconds()
			}
		}

		result.Entries = append(result.Entries, entry)
		result.Count++
		atomic.AddInt32(&p.doneFiles, 1)
		p.progress(ProgressEvent{Message: fmt.Sprintf("Processed %d/%d: %s", entry.Index, total, entry.Name), Level: LevelVerbose})
	}

	pack := &model.Pack{Name: job.Name, Folder: folder, Entries: result.Entries}
	if p.settings.CreatePlaylist {
		result.Playlist = p.writePlaylist(pack)
	}
	if p.settings.CoverArtPath != "" {
		result.Cover = p.writeCover(folder)
	}

	p.progress(ProgressEvent{
		Message: fmt.Sprintf("Pack %q ready: %d files, %s in %s", job.Name, result.Count, humanize.Bytes(uint64(result.Bytes)), folder),
		Level:   LevelSuccess,
	})
	return result, nil
}

// job builds and validates the pack job. The output root falls back to
// the configured one and is home-expanded.
func (p *Processor) job(files model.FileList, packName, outputRoot string) (*model.PackJob, error) {
	if outputRoot == "" {
		outputRoot = p.settings.OutputRoot
	}

	job := model.NewPackJob(packName, files, "")
	if err := job.Validate(); err != nil {
		return nil, err
	}

	if outputRoot != "" {
		expanded, err := selector.ExpandHome(outputRoot)
		if err != nil {
			return nil, fmt.Errorf("resolve output root: %w", err)
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("resolve output root: %w", err)
		}
		job.OutputRoot = abs
	}
	return job, nil
}

// checkCollisions fails when a planned output file is one of the sources,
// either by path or as the same file reached through another path.
func checkCollisions(files model.FileList, entries []model.PackEntry) error {
	sources := make(map[string]os.FileInfo, len(files))
	for _, src := range files {
		if info, err := os.Stat(src); err == nil {
			sources[src] = info
		}
	}

	for _, entry := range entries {
		if files.Contains(entry.Path) {
			return collision(len(entries), entry.Path, entry.Path)
		}
		dst, err := os.Stat(entry.Path)
		if err != nil {
			continue
		}
		for _, src := range files {
			if info, ok := sources[src]; ok && os.SameFile(info, dst) {
				return collision(len(entries), src, entry.Path)
			}
		}
	}
	return nil
}

func collision(total int, src, dst string) error {
	return &FilesystemError{Op: "check", Total: total, Source: src, Destination: dst, Err: ErrSourceCollision}
}

func (p *Processor) writePlaylist(pack *model.Pack) string {
	format := p.settings.Playlist()
	path := filepath.Join(pack.Folder, pack.Name+format.Extension())
	content := p.playlist.CreatePlaylist(pack)
	if err := ioutils.WriteFile(path, []byte(content)); err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return ""
	}
	p.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", filepath.Base(path)), Level: LevelSuccess})
	return path
}

func (p *Processor) writeCover(folder string) string {
	src, err := selector.ExpandHome(p.settings.CoverArtPath)
	if err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error reading cover art: %v", err), Level: LevelWarning})
		return ""
	}
	data, err := os.ReadFile(src)
	if err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error reading cover art: %v", err), Level: LevelWarning})
		return ""
	}

	cover, err := p.imageService.PrepareCover(data, p.settings.CoverArtMaxSize)
	if err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error converting cover art: %v", err), Level: LevelWarning})
		return ""
	}

	path := filepath.Join(folder, CoverFileName)
	if err := ioutils.WriteFile(path, cover); err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error saving cover art: %v", err), Level: LevelWarning})
		return ""
	}
	p.progress(ProgressEvent{Message: fmt.Sprintf("Saved cover art (%s)", humanize.Bytes(uint64(len(cover)))), Level: LevelVerbose})
	return path
}

func verifyPayload(src, dst string) error {
	want, err := audio.PayloadDigest(src)
	if err != nil {
		return err
	}
	got, err := audio.PayloadDigest(dst)
	if err != nil {
		return err
	}
	if got != want {
		return ErrPayloadMismatch
	}
	return nil
}

func (p *Processor) progress(event ProgressEvent) {
	if p.onProgress != nil {
		p.onProgress(event)
	}
}
