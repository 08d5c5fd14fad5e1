package audio

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf16"

	"github.com/bogem/id3v2"
	ioutils "github.com/handiism/sample-pack-maker/internal/io"
)

// Frame IDs written by the relabel policy.
const (
	FrameTitle = "TIT2"
	FrameAlbum = "TALB"
)

// WaveFile is the tag container of a WAV file.
//
// Tags live in an "id3 " chunk (ID3v2 payload, handled by the id3v2
// library) and in LIST/INFO chunks. Bytes appended after the RIFF body, such
// as an ID3v1 block, are treated as tags too. DeleteAll removes all of them. Audio chunks are never decoded: rewrites copy them byte for byte
// into a temp file that then replaces the original.
//
// WaveFile implements TagHandle.
type WaveFile struct {
	path    string
	chunks  []chunk
	trailer int64
	tag     *id3v2.Tag

	title *string
	album *string
}

// OpenWave opens path as a WAVE tag container.
//
// Returns ErrNotWave or ErrMalformedWave (wrapped) when the file is not a
// readable RIFF/WAVE file, or the id3v2 parse error when the embedded ID3
// payload is corrupt.
func OpenWave(path string) (*WaveFile, error) {
	w := &WaveFile{path: path}
	if err := w.load(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *WaveFile) load() error {
	f, err := os.Open(w.path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	chunks, trailer, err := readChunks(f, info.Size())
	if err != nil {
		return fmt.Errorf("%s: %w", w.path, err)
	}

	tag := id3v2.NewEmptyTag()
	for _, c := range chunks {
		if c.id != chunkID3 && c.id != chunkID3Upper {
			continue
		}
		parsed, err := id3v2.ParseReader(io.NewSectionReader(f, c.payloadOffset(), c.size), id3v2.Options{Parse: true})
		if errors.Is(err, id3v2.ErrUnsupportedVersion) {
			// ID3v2.2 and older: unreadable, but the chunk still counts as a tag and can be deleted.
			break
		}
		if err != nil {
			return fmt.Errorf("%s: parse ID3 chunk: %w", w.path, err)
		}
		tag = parsed
		break
	}

	w.chunks = chunks
	w.trailer = trailer
	w.tag = tag
	return nil
}

// HasTags reports whether the file holds an ID3 chunk, a LIST/INFO chunk
// or trailing bytes after the RIFF body.
func (w *WaveFile) HasTags() bool {
	if w.trailer > 0 {
		return true
	}
	for _, c := range w.chunks {
		if c.isTag() {
			return true
		}
	}
	return false
}

// Tag returns the parsed ID3 tag. It is empty when the file has no ID3 chunk.
func (w *WaveFile) Tag() *id3v2.Tag {
	return w.tag
}

// DeleteAll removes every tag chunk from the file immediately.
func (w *WaveFile) DeleteAll() error {
	if err := w.rewrite(nil); err != nil {
		return err
	}
	w.tag = id3v2.NewEmptyTag()
	return nil
}

// SetTitle sets the title (TIT2) written by the next Save.
func (w *WaveFile) SetTitle(title string) {
	w.title = &title
}

// SetAlbum sets the album (TALB) written by the next Save.
func (w *WaveFile) SetAlbum(album string) {
	w.album = &album
}

// Save writes the ID3 tag as ID3v2.<version> (3 or 4) into an "id3 " chunk,
// replacing any previous tag chunks.
//
// v2.4 text is UTF-8. v2.3 text is ISO-8859-1 when it fits, otherwise
// UTF-16 with BOM.
func (w *WaveFile) Save(version byte) error {
	if version != 3 && version != 4 {
		return fmt.Errorf("unsupported ID3v2 version %d", version)
	}

	w.tag.SetVersion(version)
	if w.title != nil {
		w.tag.AddFrame(FrameTitle, textFrame(version, *w.title))
	}
	if w.album != nil {
		w.tag.AddFrame(FrameAlbum, textFrame(version, *w.album))
	}

	var buf bytes.Buffer
	if _, err := w.tag.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode ID3 tag: %w", err)
	}
	return w.rewrite(buf.Bytes())
}

// textFrame encodes a text frame for the given ID3v2 version.
func textFrame(version byte, text string) id3v2.Framer {
	if version == 4 {
		return id3v2.TextFrame{Encoding: id3v2.EncodingUTF8, Text: text}
	}
	if isLatin1(text) {
		return id3v2.TextFrame{Encoding: id3v2.EncodingISO, Text: text}
	}
	// id3v2 pads UTF-16 text to an odd length; build the body by hand.
	return id3v2.UnknownFrame{Body: utf16Body(text)}
}

func isLatin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

// utf16Body returns an encoding byte, a little-endian BOM, the text and a
// two byte terminator.
func utf16Body(s string) []byte {
	units := utf16.Encode([]rune(s))
	body := make([]byte, 0, 3+2*len(units)+2)
	body = append(body, id3v2.EncodingUTF16.Key, 0xFF, 0xFE)
	for _, u := range units {
		body = binary.LittleEndian.AppendUint16(body, u)
	}
	return append(body, 0, 0)
}

// rewrite replaces the file with its audio chunks plus an optional id3 chunk.
// Trailing bytes after the RIFF body are dropped.
func (w *WaveFile) rewrite(id3 []byte) error {
	info, err := os.Stat(w.path)
	if err != nil {
		return err
	}

	err = ioutils.ReplaceFile(w.path, info.Mode().Perm(), func(dst *os.File) error {
		src, err := os.Open(w.path)
		if err != nil {
			return err
		}
		defer src.Close()
		return writeWave(dst, src, w.chunks, id3)
	})
	if err != nil {
		return err
	}

	f, err := os.Open(w.path)
	if err != nil {
		return err
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return err
	}
	chunks, trailer, err := readChunks(f, stat.Size())
	if err != nil {
		return err
	}
	w.chunks = chunks
	w.trailer = trailer
	return nil
}

// WaveInfo describes the audio stream of a WAV file.
type WaveInfo struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BitsPerSample uint16
	DataSize      int64
	Duration      time.Duration
}

// ReadInfo reads the "fmt " and "data" chunks of a WAV file.
func ReadInfo(path string) (*WaveInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	chunks, _, err := readChunks(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	fmtChunk, _ := findChunk(chunks, chunkFmt)
	if fmtChunk.size < 16 {
		return nil, fmt.Errorf("%s: %w: short %q chunk", path, ErrMalformedWave, chunkFmt)
	}
	var raw [16]byte
	if _, err := f.ReadAt(raw[:], fmtChunk.payloadOffset()); err != nil {
		return nil, err
	}

	info := &WaveInfo{
		AudioFormat:   binary.LittleEndian.Uint16(raw[0:2]),
		Channels:      binary.LittleEndian.Uint16(raw[2:4]),
		SampleRate:    binary.LittleEndian.Uint32(raw[4:8]),
		ByteRate:      binary.LittleEndian.Uint32(raw[8:12]),
		BitsPerSample: binary.LittleEndian.Uint16(raw[14:16]),
	}

	if data, ok := findChunk(chunks, chunkData); ok {
		info.DataSize = data.size
		if info.ByteRate > 0 {
			info.Duration = time.Duration(float64(data.size) / float64(info.ByteRate) * float64(time.Second))
		}
	}

	return info, nil
}

// PayloadDigest returns the hex SHA-256 of the "data" chunk payload.
// Two files with the same digest carry identical sample data.
func PayloadDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}
	chunks, _, err := readChunks(f, stat.Size())
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	data, ok := findChunk(chunks, chunkData)
	if !ok {
		return "", fmt.Errorf("%s: %w: no %q chunk", path, ErrMalformedWave, chunkData)
	}

	h := sha256.New()
	if _, err := io.Copy(h, io.NewSectionReader(f, data.payloadOffset(), data.size)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
