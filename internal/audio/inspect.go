package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dhowden/tag"
)

// TagReport is a read-only view of the tags embedded in a WAV file.
//
// It is read with the dhowden/tag library, independently of the id3v2
// library that writes the tags, so it doubles as a verification step.
type TagReport struct {
	Path string

	// HasID3 reports an "id3 " or "ID3 " chunk.
	HasID3 bool

	// HasInfo reports a LIST/INFO chunk.
	HasInfo bool

	// Trailer is the number of bytes after the RIFF body, e.g. an ID3v1 block.
	Trailer int64

	// Format is the tag format, e.g. "ID3v2.3". Empty without ID3 chunk.
	Format string

	Title  string
	Album  string
	Artist string

	// Frames lists the raw frame IDs present in the ID3 tag, sorted.
	Frames []string
}

// Inspect reads the tags of a WAV file.
func Inspect(path string) (*TagReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	chunks, trailer, err := readChunks(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	report := &TagReport{Path: path, Trailer: trailer}
	for _, c := range chunks {
		switch {
		case c.id == chunkList && c.listType == listTypeInfo:
			report.HasInfo = true
		case c.id == chunkID3 || c.id == chunkID3Upper:
			if report.HasID3 {
				continue
			}
			report.HasID3 = true
			if err := report.readID3(io.NewSectionReader(f, c.payloadOffset(), c.size)); err != nil {
				return nil, fmt.Errorf("%s: read ID3 chunk: %w", path, err)
			}
		}
	}

	return report, nil
}

func (r *TagReport) readID3(rs io.ReadSeeker) error {
	m, err := tag.ReadFrom(rs)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return nil
	}
	if err != nil {
		return err
	}

	r.Format = string(m.Format())
	r.Title = cleanText(m.Title())
	r.Album = cleanText(m.Album())
	r.Artist = cleanText(m.Artist())

	for id := range m.Raw() {
		r.Frames = append(r.Frames, id)
	}
	sort.Strings(r.Frames)
	return nil
}

func cleanText(s string) string {
	return strings.TrimRight(s, "\x00")
}
