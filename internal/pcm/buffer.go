// Package pcm holds raw interleaved 16-bit PCM between the audio devices and
// the WAV codec.
package pcm

import (
	"bytes"
	"errors"
	"io"
)

// ErrOutOfRange is returned by WriteAt when the write would extend the buffer.
var ErrOutOfRange = errors.New("pcm: write past end of buffer")

// Buffer is a growable byte buffer with positional access.
// It is not safe for concurrent use.
type Buffer struct {
	data []byte
}

// NewBuffer returns a buffer with room for capacity bytes.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacity)}
}

// Write appends p to the end of the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// ReadFrom appends everything read from r until EOF.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if len(b.data) == cap(b.data) {
			b.data = append(b.data, 0)[:len(b.data)]
		}
		n, err := r.Read(b.data[len(b.data):cap(b.data)])
		b.data = b.data[:len(b.data)+n]
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Reset truncates the buffer to zero length and keeps its capacity.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Len returns the number of bytes held.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns a copy of the current contents.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// View returns the current contents without copying. The slice shares
// storage with the buffer and is invalidated by the next Write or Reset.
func (b *Buffer) View() []byte {
	return b.data
}

// ReadAt reads len(p) bytes starting at off.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrOutOfRange
	}
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt overwrites bytes already in the buffer. Used to patch headers
// after the payload has been appended.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(b.data)) {
		return 0, ErrOutOfRange
	}
	return copy(b.data[off:], p), nil
}

// Reader returns a reader over the current contents. The reader shares
// storage with the buffer and is invalidated by the next Write or Reset.
func (b *Buffer) Reader() *bytes.Reader {
	return bytes.NewReader(b.data)
}
