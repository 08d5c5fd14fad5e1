package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrNotWave is returned when a file is not a RIFF/WAVE container.
var ErrNotWave = errors.New("not a RIFF/WAVE file")

// ErrMalformedWave is returned when the chunk structure of a WAVE file is broken.
var ErrMalformedWave = errors.New("malformed WAVE file")

const (
	riffHeaderSize  = 12
	chunkHeaderSize = 8
)

// Chunk IDs with special meaning.
const (
	chunkFmt      = "fmt "
	chunkData     = "data"
	chunkList     = "LIST"
	chunkID3      = "id3 "
	chunkID3Upper = "ID3 "
	listTypeInfo  = "INFO"
)

// chunk locates one top-level chunk inside a RIFF/WAVE file.
type chunk struct {
	id       string
	offset   int64 // offset of the chunk header
	size     int64 // payload size, without pad byte
	listType string
}

// payloadOffset returns the offset of the chunk payload.
func (c chunk) payloadOffset() int64 {
	return c.offset + chunkHeaderSize
}

// isTag reports whether the chunk carries tag metadata rather than audio.
func (c chunk) isTag() bool {
	switch c.id {
	case chunkID3, chunkID3Upper:
		return true
	case chunkList:
		return c.listType == listTypeInfo
	}
	return false
}

// paddedSize returns the size of a chunk on disk including header and pad byte.
func paddedSize(payload int64) int64 {
	return chunkHeaderSize + payload + payload%2
}

// readChunks parses the top-level chunk list of a RIFF/WAVE file.
//
// The walk stops at the end of the RIFF body declared in the header, or at
// the end of the file when the header claims more. Bytes past the RIFF body
// (an appended ID3v1 block, say) are reported as trailer and never parsed.
// A missing pad byte after the last chunk is tolerated, as is garbage
// shorter than a chunk header. A chunk that claims more bytes than the file
// holds is an error.
func readChunks(r io.ReaderAt, fileSize int64) (chunks []chunk, trailer int64, err error) {
	var header [riffHeaderSize]byte
	if _, err := r.ReadAt(header[:], 0); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, ErrNotWave
		}
		return nil, 0, err
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, 0, ErrNotWave
	}

	end := min(chunkHeaderSize+int64(binary.LittleEndian.Uint32(header[4:8])), fileSize)

	var (
		hasFmt bool
		buf    [chunkHeaderSize]byte
		off    = int64(riffHeaderSize)
	)
	for off+chunkHeaderSize <= end {
		if _, err := r.ReadAt(buf[:], off); err != nil {
			return nil, 0, err
		}
		c := chunk{
			id:     string(buf[0:4]),
			offset: off,
			size:   int64(binary.LittleEndian.Uint32(buf[4:8])),
		}
		if c.payloadOffset()+c.size > fileSize {
			return nil, 0, fmt.Errorf("%w: chunk %q at offset %d overruns file", ErrMalformedWave, c.id, off)
		}

		if c.id == chunkList && c.size >= 4 {
			var lt [4]byte
			if _, err := r.ReadAt(lt[:], c.payloadOffset()); err != nil {
				return nil, 0, err
			}
			c.listType = string(lt[:])
		}
		if c.id == chunkFmt {
			hasFmt = true
		}

		chunks = append(chunks, c)
		off += paddedSize(c.size)
	}

	if !hasFmt {
		return nil, 0, fmt.Errorf("%w: no %q chunk", ErrMalformedWave, chunkFmt)
	}
	// A chunk may run past an undersized RIFF header; it still belongs to the body.
	return chunks, fileSize - min(max(off, end), fileSize), nil
}

// findChunk returns the first chunk with the given id.
func findChunk(chunks []chunk, id string) (chunk, bool) {
	for _, c := range chunks {
		if c.id == id {
			return c, true
		}
	}
	return chunk{}, false
}

// writeWave writes a RIFF/WAVE file made of the non-tag chunks of src
// followed, when id3 is non-empty, by an "id3 " chunk holding it.
//
// Kept chunks are copied byte for byte, so the audio payload is untouched.
func writeWave(w io.Writer, src io.ReaderAt, chunks []chunk, id3 []byte) error {
	riffSize := int64(4) // "WAVE"
	for _, c := range chunks {
		if !c.isTag() {
			riffSize += paddedSize(c.size)
		}
	}
	if len(id3) > 0 {
		riffSize += paddedSize(int64(len(id3)))
	}
	if riffSize > math.MaxUint32 {
		return fmt.Errorf("%w: RIFF size %d exceeds 4 GiB", ErrMalformedWave, riffSize)
	}

	if err := writeChunkHeader(w, "RIFF", riffSize); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "WAVE"); err != nil {
		return err
	}

	for _, c := range chunks {
		if c.isTag() {
			continue
		}
		if err := writeChunkHeader(w, c.id, c.size); err != nil {
			return err
		}
		if _, err := io.Copy(w, io.NewSectionReader(src, c.payloadOffset(), c.size)); err != nil {
			return err
		}
		if err := writePad(w, c.size); err != nil {
			return err
		}
	}

	if len(id3) > 0 {
		if err := writeChunkHeader(w, chunkID3, int64(len(id3))); err != nil {
			return err
		}
		if _, err := w.Write(id3); err != nil {
			return err
		}
		if err := writePad(w, int64(len(id3))); err != nil {
			return err
		}
	}

	return nil
}

func writeChunkHeader(w io.Writer, id string, size int64) error {
	var buf [chunkHeaderSize]byte
	copy(buf[0:4], id)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(size))
	_, err := w.Write(buf[:])
	return err
}

func writePad(w io.Writer, size int64) error {
	if size%2 == 0 {
		return nil
	}
	_, err := w.Write([]byte{0})
	return err
}
