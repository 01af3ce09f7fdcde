package audio

import (
	"errors"
	"fmt"
	"time"
)

// BitsPerSample is fixed for every recording.
const BitsPerSample = 16

// BytesPerSample is the size of one 16-bit sample.
const BytesPerSample = BitsPerSample / 8

// HeaderSize is the length of the canonical WAV header that precedes the
// PCM payload of every stored recording.
const HeaderSize = 44

// ChunkDuration is the capture and playback block length of the standard path.
const ChunkDuration = 100 * time.Millisecond

// SkipDuration is how far SkipForward jumps.
const SkipDuration = 5 * time.Second

// ErrUnsupportedFormat is returned when a session is started with a format
// other than Mono16k or Stereo44k.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Format describes interleaved 16-bit PCM
type Format struct {
	Channels   int
	SampleRate int
}

var (
	// Mono16k is the only format the standard devices produce.
	Mono16k = Format{Channels: 1, SampleRate: 16000}
	// Stereo44k is the only format the flexible devices produce.
	Stereo44k = Format{Channels: 2, SampleRate: 44100}
)

// Validate rejects everything but the two supported formats.
func (f Format) Validate() error {
	if f == Mono16k || f == Stereo44k {
		return nil
	}
	return fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, f.Channels, f.SampleRate)
}

// BlockAlign is the size in bytes of one frame.
func (f Format) BlockAlign() int {
	return BytesPerSample * f.Channels
}

// ByteRate is the number of bytes per second of audio.
func (f Format) ByteRate() int {
	return f.SampleRate * f.BlockAlign()
}

// BytesFor returns the frame-aligned byte count covering d.
func (f Format) BytesFor(d time.Duration) int {
	frames := int(int64(f.SampleRate) * int64(d) / int64(time.Second))
	return frames * f.BlockAlign()
}

func (f Format) String() string {
	if f.Channels == 1 {
		return fmt.Sprintf("mono %d Hz", f.SampleRate)
	}
	return fmt.Sprintf("stereo %d Hz", f.SampleRate)
}

// Path identifies which device back-end serves a session.
type Path int

const (
	PathStandard Path = iota
	PathFlexible
)

func (p Path) String() string {
	switch p {
	case PathStandard:
		return "standard"
	case PathFlexible:
		return "flexible"
	default:
		return "unknown"
	}
}

// SelectPath picks the standard back-end for exactly mono 16 kHz and the
// flexible one for anything else.
func SelectPath(f Format) Path {
	if f == Mono16k {
		return PathStandard
	}
	return PathFlexible
}

// ParseQuality maps a config quality name to a format.
func ParseQuality(name string) (Format, error) {
	switch name {
	case "mono16k", "mono", "":
		return Mono16k, nil
	case "stereo44k", "stereo":
		return Stereo44k, nil
	default:
		return Format{}, fmt.Errorf("%w: quality %q", ErrUnsupportedFormat, name)
	}
}

// QualityName is the inverse of ParseQuality.
func QualityName(f Format) string {
	if f == Stereo44k {
		return "stereo44k"
	}
	return "mono16k"
}
