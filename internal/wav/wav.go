// Package wav frames 16-bit PCM as a canonical 44-byte-header WAV file and
// parses the header back.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/petems/wavrec/internal/audio"
	"github.com/petems/wavrec/internal/pcm"
)

// HeaderSize is the length of the header written by Write.
const HeaderSize = audio.HeaderSize

const (
	riffSizeOffset = 4
	dataSizeOffset = 40
)

// header is the on-disk layout of a canonical PCM WAV header.
type header struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

func newHeader(f audio.Format) header {
	return header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(f.ByteRate()),
		BlockAlign:    uint16(f.BlockAlign()),
		BitsPerSample: audio.BitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
	}
}

// WriterAt is a sequential writer whose earlier bytes can be patched.
// *os.File, afero.File and *pcm.Buffer all satisfy it.
type WriterAt interface {
	io.Writer
	io.WriterAt
}

// Write streams a header with placeholder sizes followed by everything read
// from src, then patches the RIFF and data sizes. It returns the total number
// of bytes written including the header.
func Write(dst WriterAt, src io.Reader, f audio.Format) (int64, error) {
	h := newHeader(f)
	if err := binary.Write(dst, binary.LittleEndian, h); err != nil {
		return 0, fmt.Errorf("failed to write WAV header: %w", err)
	}

	n, err := io.Copy(dst, src)
	total := HeaderSize + n
	if err != nil {
		return total, fmt.Errorf("failed to write audio data: %w", err)
	}

	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(total-8))
	if _, err := dst.WriteAt(size[:], riffSizeOffset); err != nil {
		return total, fmt.Errorf("failed to patch RIFF size: %w", err)
	}
	binary.LittleEndian.PutUint32(size[:], uint32(n))
	if _, err := dst.WriteAt(size[:], dataSizeOffset); err != nil {
		return total, fmt.Errorf("failed to patch data size: %w", err)
	}

	return total, nil
}

// Encode returns a complete WAV file holding data.
func Encode(data []byte, f audio.Format) []byte {
	buf := pcm.NewBuffer(HeaderSize + len(data))
	// Writes into a pcm.Buffer cannot fail
	_, _ = Write(buf, bytes.NewReader(data), f)
	return buf.Bytes()
}

// ErrMalformedHeader matches every MalformedHeaderError.
var ErrMalformedHeader = errors.New("malformed WAV header")

// MalformedHeaderError reports bytes that cannot be parsed as a WAV header.
type MalformedHeaderError struct {
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	return "malformed WAV header: " + e.Reason
}

func (e *MalformedHeaderError) Is(target error) bool {
	return target == ErrMalformedHeader
}

// Descriptor is the metadata of a stored recording.
type Descriptor struct {
	Channels   int
	SampleRate int
	ByteLength int64 // whole file, header included
}

// Format returns the PCM format described by the header.
func (d Descriptor) Format() audio.Format {
	return audio.Format{Channels: d.Channels, SampleRate: d.SampleRate}
}

// Seconds is the duration in whole seconds, truncated. The byte length
// includes the header.
func (d Descriptor) Seconds() int64 {
	return d.ByteLength / int64(audio.BytesPerSample*d.Channels*d.SampleRate)
}

// Duration is Seconds as a time.Duration.
func (d Descriptor) Duration() time.Duration {
	return time.Duration(d.Seconds()) * time.Second
}

// DecodeHeader parses the header of a complete file held in memory.
func DecodeHeader(data []byte) (Descriptor, error) {
	if len(data) < HeaderSize {
		return Descriptor{}, &MalformedHeaderError{
			Reason: fmt.Sprintf("need at least %d bytes, got %d", HeaderSize, len(data)),
		}
	}
	return parseHeader(data[:HeaderSize], int64(len(data)))
}

// ReadDescriptor reads only the header from r and takes size as the file
// length.
func ReadDescriptor(r io.ReaderAt, size int64) (Descriptor, error) {
	buf := make([]byte, HeaderSize)
	n, err := r.ReadAt(buf, 0)
	if n < HeaderSize {
		if err != nil && err != io.EOF {
			return Descriptor{}, fmt.Errorf("failed to read WAV header: %w", err)
		}
		return Descriptor{}, &MalformedHeaderError{
			Reason: fmt.Sprintf("need at least %d bytes, got %d", HeaderSize, n),
		}
	}
	return parseHeader(buf, size)
}

func parseHeader(b []byte, size int64) (Descriptor, error) {
	if string(b[0:4]) != "RIFF" {
		return Descriptor{}, &MalformedHeaderError{Reason: "missing RIFF tag"}
	}
	if string(b[8:12]) != "WAVE" {
		return Descriptor{}, &MalformedHeaderError{Reason: "missing WAVE tag"}
	}

	channels := int(int16(binary.LittleEndian.Uint16(b[22:24])))
	if channels <= 0 {
		return Descriptor{}, &MalformedHeaderError{Reason: fmt.Sprintf("invalid channel count %d", channels)}
	}
	rate := int(int32(binary.LittleEndian.Uint32(b[24:28])))
	if rate <= 0 {
		return Descriptor{}, &MalformedHeaderError{Reason: fmt.Sprintf("invalid sample rate %d", rate)}
	}

	return Descriptor{Channels: channels, SampleRate: rate, ByteLength: size}, nil
}
