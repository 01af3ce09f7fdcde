package audio

import (
	"bytes"
	"io"
	"testing"
)

func TestChunkFeederNext(t *testing.T) {
	f := newChunkFeeder([]byte{1, 2, 3, 4, 5}, 2)

	var chunks [][]byte
	for c := f.Next(); c != nil; c = f.Next() {
		chunks = append(chunks, c)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if !bytes.Equal(chunks[2], []byte{5}) {
		t.Fatalf("expected short final chunk, got %v", chunks[2])
	}
}

func TestChunkFeederRead(t *testing.T) {
	f := newChunkFeeder([]byte("abcdef"), 4)

	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "abcdef" {
		t.Fatalf("unexpected data %q", got)
	}
}

func TestChunkFeederSkip(t *testing.T) {
	data := make([]byte, Mono16k.ByteRate()*7)
	skip := Mono16k.ByteRate() * 5
	f := newChunkFeeder(data, Mono16k.BytesFor(ChunkDuration))

	if !f.Skip(skip) {
		t.Fatal("expected skip with 7 seconds remaining")
	}
	if f.Cursor() != skip {
		t.Fatalf("expected cursor %d, got %d", skip, f.Cursor())
	}

	// Only 2 seconds left
	if f.Skip(skip) {
		t.Fatal("skip must be refused with less than 5 seconds remaining")
	}
	if f.Cursor() != skip {
		t.Fatalf("cursor moved on refused skip: %d", f.Cursor())
	}
}

func TestRenderQueueService(t *testing.T) {
	ring := newRingBuffer(8)
	q := newRenderQueue(ring, 4)
	q.Load([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})

	if !q.Service() {
		t.Fatal("expected pending audio after first service")
	}
	if q.Cursor() != 8 {
		t.Fatalf("expected ring filled to capacity, cursor=%d", q.Cursor())
	}

	// Device consumes one frame
	ring.Read(make([]byte, 4), true)
	q.Service()
	if q.Cursor() != 12 {
		t.Fatalf("expected the tail to be queued, cursor=%d", q.Cursor())
	}

	// Device consumes everything
	ring.Read(make([]byte, 8), true)
	if !q.Service() {
		t.Fatal("the device period queued last must get one more cycle")
	}
	if q.Service() {
		t.Fatal("expected playback to be finished once the ring drained")
	}
	if q.Service() {
		t.Fatal("finished playback must stay finished")
	}
}

func TestRenderQueueGraceResetsOnRefill(t *testing.T) {
	ring := newRingBuffer(4)
	q := newRenderQueue(ring, 4)
	q.Load([]byte{1, 2, 3, 4, 5, 6, 7, 8})

	q.Service()
	ring.Read(make([]byte, 4), true)

	// Refilled from the remaining data, still playing
	if !q.Service() {
		t.Fatal("expected the second frame to be queued")
	}
	ring.Read(make([]byte, 4), true)

	if !q.Service() {
		t.Fatal("expected one grace cycle after the final drain")
	}
	if q.Service() {
		t.Fatal("expected playback finished")
	}

	q.Load([]byte{9, 9, 9, 9})
	if !q.Service() {
		t.Fatal("a new load must start playing again")
	}
}

func TestRenderQueueSkipBoundary(t *testing.T) {
	ring := newRingBuffer(4)
	q := newRenderQueue(ring, 4)
	q.Load(make([]byte, 100))
	q.Service()

	if !q.Skip(50) {
		t.Fatal("expected skip inside the data")
	}
	if q.Skip(50) {
		t.Fatal("skip past the end must be refused")
	}
	if q.Cursor() != 54 {
		t.Fatalf("expected cursor 54, got %d", q.Cursor())
	}
}

func TestSampleConversion(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768}
	b := int16sToBytes(samples)
	if len(b) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(b))
	}
	if b[2] != 0x01 || b[3] != 0x00 || b[4] != 0xFF || b[5] != 0xFF {
		t.Fatalf("expected little-endian encoding, got %v", b)
	}

	dst := make([]int16, 7)
	for i := range dst {
		dst[i] = 99
	}
	if n := bytesToInt16s(dst, b); n != 5 {
		t.Fatalf("expected 5 samples, got %d", n)
	}
	for i, s := range samples {
		if dst[i] != s {
			t.Errorf("sample %d: expected %d, got %d", i, s, dst[i])
		}
	}
	if dst[5] != 0 || dst[6] != 0 {
		t.Fatalf("expected zero padding, got %v", dst[5:])
	}
}
