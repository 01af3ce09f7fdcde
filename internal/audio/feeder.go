package audio

import (
	"io"
	"sync"
)

// chunkFeeder hands out fixed-size blocks of a PCM slice. The cursor is
// shared between the playback goroutine and SkipForward callers.
type chunkFeeder struct {
	mu        sync.Mutex
	data      []byte
	cursor    int
	chunkSize int
}

func newChunkFeeder(data []byte, chunkSize int) *chunkFeeder {
	return &chunkFeeder{data: data, chunkSize: chunkSize}
}

// Next copies the next block into a new slice. The final block may be short.
// It returns nil once the cursor reached the end.
func (f *chunkFeeder) Next() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cursor >= len(f.data) {
		return nil
	}
	end := f.cursor + f.chunkSize
	if end > len(f.data) {
		end = len(f.data)
	}
	chunk := make([]byte, end-f.cursor)
	copy(chunk, f.data[f.cursor:end])
	f.cursor = end
	return chunk
}

// Read implements io.Reader for sinks that pull their own data.
func (f *chunkFeeder) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cursor >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.cursor:])
	f.cursor += n
	return n, nil
}

// Skip advances the cursor by n bytes if that stays inside the data.
func (f *chunkFeeder) Skip(n int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cursor+n >= len(f.data) {
		return false
	}
	f.cursor += n
	return true
}

// Cursor returns the current read offset.
func (f *chunkFeeder) Cursor() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// renderQueue tops up a device ring buffer from a PCM slice each time it is
// serviced.
type renderQueue struct {
	mu     sync.Mutex
	data   []byte
	cursor int
	align  int
	ring   *ringBuffer
	// drained is set on the first service that finds the ring empty. The
	// device still holds its last period at that point.
	drained bool
}

func newRenderQueue(ring *ringBuffer, align int) *renderQueue {
	return &renderQueue{ring: ring, align: align}
}

// Load replaces the source data and empties the ring.
func (q *renderQueue) Load(data []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.data = data
	q.cursor = 0
	q.drained = false
	q.ring.Reset()
}

// Service copies as much pending data as fits into the ring and reports
// whether the device still has audio to play. Once the ring is empty it
// reports true for one more call so the last device period is heard.
func (q *renderQueue) Service() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	free := q.ring.Free()
	free -= free % q.align
	n := len(q.data) - q.cursor
	if n > free {
		n = free
	}
	if n > 0 {
		q.ring.Write(q.data[q.cursor : q.cursor+n])
		q.cursor += n
	}
	if q.ring.Len() > 0 {
		q.drained = false
		return true
	}
	if !q.drained {
		q.drained = true
		return true
	}
	return false
}

// Skip advances the cursor by n bytes if that stays inside the data.
func (q *renderQueue) Skip(n int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cursor+n >= len(q.data) {
		return false
	}
	q.cursor += n
	return true
}

// Cursor returns the current read offset.
func (q *renderQueue) Cursor() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cursor
}
