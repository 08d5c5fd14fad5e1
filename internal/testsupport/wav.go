// Package testsupport builds fixtures shared by package tests.
package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/bogem/id3v2"
)

// Wav describes a synthetic WAV file.
type Wav struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Frames        int

	// Seed varies the sample bytes so different fixtures have different payloads.
	Seed byte

	// ID3 frames (frame ID → text) stored in an "id3 " chunk. Nil means no chunk.
	ID3 map[string]string

	// ID3Version is the ID3v2 minor version of the chunk, 3 by default.
	ID3Version byte

	// ID3First places the id3 chunk before the data chunk.
	ID3First bool

	// Info holds LIST/INFO entries (e.g. "INAM", "IART"). Nil means no list.
	Info map[string]string

	// Extra appends a non-tag chunk with an odd-sized payload.
	Extra bool

	// Trailer is appended after the RIFF body and not counted in its size.
	Trailer []byte
}

// DefaultWav is a short 16-bit stereo 44.1 kHz clip.
func DefaultWav() Wav {
	return Wav{SampleRate: 44100, Channels: 2, BitsPerSample: 16, Frames: 441}
}

// Samples returns the sample payload of the fixture.
func (w Wav) Samples() []byte {
	n := w.Frames * w.Channels * w.BitsPerSample / 8
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7) + w.Seed
	}
	return data
}

// Bytes encodes the fixture as a RIFF/WAVE file.
func (w Wav) Bytes(t testing.TB) []byte {
	t.Helper()

	var body bytes.Buffer
	body.WriteString("WAVE")

	blockAlign := w.Channels * w.BitsPerSample / 8
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1)
	binary.LittleEndian.PutUint16(fmtChunk[2:4], uint16(w.Channels))
	binary.LittleEndian.PutUint32(fmtChunk[4:8], uint32(w.SampleRate))
	binary.LittleEndian.PutUint32(fmtChunk[8:12], uint32(w.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(fmtChunk[12:14], uint16(blockAlign))
	binary.LittleEndian.PutUint16(fmtChunk[14:16], uint16(w.BitsPerSample))
	writeChunk(&body, "fmt ", fmtChunk)

	if w.Info != nil {
		writeChunk(&body, "LIST", w.infoList())
	}
	if w.ID3 != nil && w.ID3First {
		writeChunk(&body, "id3 ", w.id3Payload(t))
	}
	writeChunk(&body, "data", w.Samples())
	if w.ID3 != nil && !w.ID3First {
		writeChunk(&body, "id3 ", w.id3Payload(t))
	}
	if w.Extra {
		writeChunk(&body, "smpl", []byte{1, 2, 3, 4, 5})
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	out.Write(w.Trailer)
	return out.Bytes()
}

// ID3v1 returns a 128-byte ID3v1 block as appended by some taggers.
func ID3v1(title, artist string) []byte {
	block := make([]byte, 128)
	copy(block, "TAG")
	copy(block[3:33], title)
	copy(block[33:63], artist)
	block[127] = 0xFF
	return block
}

// Write stores the fixture at path, creating parent directories.
func (w Wav) Write(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, w.Bytes(t), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func (w Wav) id3Payload(t testing.TB) []byte {
	t.Helper()

	tag := id3v2.NewEmptyTag()
	version := w.ID3Version
	if version == 0 {
		version = 3
	}
	tag.SetVersion(version)

	ids := make([]string, 0, len(w.ID3))
	for id := range w.ID3 {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		tag.AddTextFrame(id, id3v2.EncodingISO, w.ID3[id])
	}

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("encode id3 fixture: %v", err)
	}
	return buf.Bytes()
}

func (w Wav) infoList() []byte {
	var buf bytes.Buffer
	buf.WriteString("INFO")

	ids := make([]string, 0, len(w.Info))
	for id := range w.Info {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		writeChunk(&buf, id, append([]byte(w.Info[id]), 0))
	}
	return buf.Bytes()
}

func writeChunk(buf *bytes.Buffer, id string, payload []byte) {
	buf.WriteString(id)
	binary.Write(buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	if len(payload)%2 == 1 {
		buf.WriteByte(0)
	}
}
