package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/sample-pack-maker/internal/audio"
	"github.com/handiism/sample-pack-maker/internal/config"
	"github.com/handiism/sample-pack-maker/internal/model"
	"github.com/handiism/sample-pack-maker/internal/pack"
	"github.com/handiism/sample-pack-maker/internal/selector"
)

func main() {
	// Command line flags
	var (
		packFlag     = flag.String("pack", "", "Pack name (prompted for when missing and stdin is a terminal)")
		dirFlag      = flag.String("dir", "", "Add every WAV file of this directory (non-recursive)")
		outputFlag   = flag.String("output", "", "Folder that will hold <pack>_output (default: folder of the first file)")
		configFlag   = flag.String("config", "", "Path to config file (.json or .toml)")
		policyFlag   = flag.String("policy", "", "Metadata policy: strip or relabel (overrides config)")
		playlistFlag = flag.Bool("playlist", false, "Create playlist file")
		coverFlag    = flag.String("cover", "", "Image to save as cover.jpg in the output folder")
		verifyFlag   = flag.Bool("verify", false, "Verify the audio data of every output file against its source")
		dryRunFlag   = flag.Bool("dry-run", false, "Show the planned file names without writing anything")
		inspectFlag  = flag.Bool("inspect", false, "Show the tags of the given files and exit")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Usage = usage
	flag.Parse()

	raw := flag.Args()
	if *dirFlag != "" {
		listed, err := selector.ListDir(*dirFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading directory: %v\n", err)
			os.Exit(1)
		}
		raw = append(raw, listed...)
	}

	if *inspectFlag {
		if err := inspect(raw); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Load config
	settings, err := loadSettings(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *outputFlag != "" {
		settings.OutputRoot = *outputFlag
	}
	if *policyFlag != "" {
		policy, err := model.ParseMetadataPolicy(*policyFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		settings.MetadataPolicy = policy.String()
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}
	if *coverFlag != "" {
		settings.CoverArtPath = *coverFlag
	}
	if *verifyFlag {
		settings.VerifyPayload = true
	}

	stdin := bufio.NewReader(os.Stdin)

	if len(raw) == 0 {
		if !interactive() {
			usage()
			os.Exit(1)
		}
		line, err := prompt(stdin, os.Stdout, "Drop WAV files here and press enter: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			os.Exit(1)
		}
		raw = selector.SplitPayload(line)
	}

	events := make(chan pack.ProgressEvent, 64)
	processor := pack.NewProcessor(settings, func(event pack.ProgressEvent) {
		events <- event
	})
	session := pack.NewSession(processor)

	added, _ := session.AddPaths(raw)
	fmt.Printf("Selected %d WAV file(s)", added)
	if ignored := len(raw) - added; ignored > 0 {
		fmt.Printf(", ignored %d path(s)", ignored)
	}
	fmt.Println()

	packName := strings.TrimSpace(*packFlag)
	if packName == "" && session.Len() > 0 && interactive() {
		packName, err = prompt(stdin, os.Stdout, "Pack name: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			os.Exit(1)
		}
	}

	if *dryRunFlag {
		if err := plan(processor, session.Files(), packName); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("🎛  Sample Pack Maker")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	var (
		g      errgroup.Group
		result *pack.Result
	)
	g.Go(func() error {
		defer close(events)
		var err error
		result, err = session.Run(packName)
		return err
	})
	g.Go(func() error {
		for event := range events {
			printEvent(event, *verboseFlag)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if done, total, ok := processedOf(err); ok {
			fmt.Fprintf(os.Stderr, "Processed %d of %d file(s) before the failure; they were left in place.\n", done, total)
		}
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✨ Complete! Packed %d file(s) (%s) into %s\n", result.Count, humanize.Bytes(uint64(result.Bytes)), result.Folder)
}

func usage() {
	fmt.Println("Sample Pack Maker - Rinse WAV samples into a numbered, cleanly tagged pack")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  samplepack -pack <name> [options] <file.wav>...")
	fmt.Println("  samplepack -pack <name> -dir <folder> [options]")
	fmt.Println("  samplepack -inspect <file.wav>...")
	fmt.Println()
	fmt.Println("For interactive mode, use: samplepack-tui")
	fmt.Println()
	flag.PrintDefaults()
}

// loadSettings reads path, or the default config file when path is empty.
func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.DefaultSettings(), nil
		}
	}
	return config.Load(path)
}

func printEvent(event pack.ProgressEvent, verbose bool) {
	if event.Level == pack.LevelVerbose && !verbose {
		return
	}

	prefix := ""
	switch event.Level {
	case pack.LevelError:
		prefix = "❌ "
	case pack.LevelWarning:
		prefix = "⚠️  "
	case pack.LevelSuccess:
		prefix = "✅ "
	case pack.LevelInfo:
		prefix = "ℹ️  "
	default:
		prefix = "   "
	}

	fmt.Println(prefix + event.Message)
}

// processedOf extracts "k of n" from a batch error.
func processedOf(err error) (done, total int, ok bool) {
	var fsErr *pack.FilesystemError
	if errors.As(err, &fsErr) {
		return fsErr.Processed(), fsErr.Total, true
	}
	var tagErr *pack.TagIOError
	if errors.As(err, &tagErr) {
		return tagErr.Processed(), tagErr.Total, true
	}
	return 0, 0, false
}

func plan(processor *pack.Processor, files model.FileList, packName string) error {
	entries, folder, err := processor.Plan(files, packName, "")
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(entries))
	var total uint64
	for _, e := range entries {
		size := "?"
		if info, err := os.Stat(e.Source); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
			total += uint64(info.Size())
		}
		rows = append(rows, []string{strconv.Itoa(e.Index), filepath.Base(e.Source), e.Name, size})
	}

	fmt.Println(renderTable([]string{"#", "Source", "Destination", "Size"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
	fmt.Printf("Output folder: %s\n", folder)
	fmt.Printf("Total: %d file(s), %s\n", len(entries), humanize.Bytes(total))
	fmt.Println("\n[Dry run - nothing written]")
	return nil
}

func inspect(raw []string) error {
	files := selector.Select(raw)
	if len(files) == 0 {
		return model.ErrEmptyInput
	}

	rows := make([][]string, 0, len(files))
	for _, path := range files {
		report, err := audio.Inspect(path)
		if err != nil {
			rows = append(rows, []string{filepath.Base(path), "error: " + err.Error()})
			continue
		}
		rows = append(rows, []string{
			filepath.Base(path),
			report.Format,
			yesNo(report.HasInfo),
			trailer(report.Trailer),
			report.Title,
			report.Album,
			strings.Join(report.Frames, " "),
		})
	}

	fmt.Println(renderTable([]string{"File", "ID3", "INFO", "Trailer", "Title", "Album", "Frames"}, rows, nil))
	return nil
}

func trailer(n int64) string {
	if n == 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
