package audio

import "sync"

// ringBuffer is a fixed-capacity byte FIFO shared between a device callback
// and the session tick.
type ringBuffer struct {
	mu       sync.Mutex
	buf      []byte
	readPos  int
	writePos int
	count    int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{buf: make([]byte, capacity)}
}

// Write stores as much of p as fits and returns the number of bytes kept.
// Bytes that do not fit are dropped.
func (rb *ringBuffer) Write(p []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p)
	if free := len(rb.buf) - rb.count; n > free {
		n = free
	}
	for written := 0; written < n; {
		end := len(rb.buf)
		if rb.writePos+n-written < end {
			end = rb.writePos + n - written
		}
		c := copy(rb.buf[rb.writePos:end], p[written:n])
		written += c
		rb.writePos = (rb.writePos + c) % len(rb.buf)
	}
	rb.count += n
	return n
}

// Read moves up to len(p) bytes into p. If fill is true the unread tail of p
// is zeroed, which is what a playback callback wants on underrun.
func (rb *ringBuffer) Read(p []byte, fill bool) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p)
	if n > rb.count {
		n = rb.count
	}
	for read := 0; read < n; {
		end := len(rb.buf)
		if rb.readPos+n-read < end {
			end = rb.readPos + n - read
		}
		c := copy(p[read:n], rb.buf[rb.readPos:end])
		read += c
		rb.readPos = (rb.readPos + c) % len(rb.buf)
	}
	rb.count -= n

	if fill {
		clear(p[n:])
	}
	return n
}

// Len returns the number of buffered bytes.
func (rb *ringBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Free returns the number of bytes that can be written without dropping.
func (rb *ringBuffer) Free() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return len(rb.buf) - rb.count
}

// Reset discards everything buffered.
func (rb *ringBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.readPos, rb.writePos, rb.count = 0, 0, 0
}
