package pcm

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestBufferAppendAndSnapshot(t *testing.T) {
	b := NewBuffer(0)
	b.Write([]byte{1, 2})
	b.Write([]byte{3})

	if b.Len() != 3 {
		t.Fatalf("expected length 3, got %d", b.Len())
	}

	snap := b.Bytes()
	if !bytes.Equal(snap, []byte{1, 2, 3}) {
		t.Fatalf("unexpected contents %v", snap)
	}

	// Snapshot must not alias the buffer
	snap[0] = 9
	if b.Bytes()[0] != 1 {
		t.Fatal("Bytes returned a slice sharing storage with the buffer")
	}
}

func TestBufferResetKeepsCapacity(t *testing.T) {
	b := NewBuffer(16)
	b.Write(make([]byte, 10))
	before := cap(b.data)

	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("expected empty buffer after reset, got %d bytes", b.Len())
	}
	if cap(b.data) != before {
		t.Fatalf("expected capacity %d to be kept, got %d", before, cap(b.data))
	}
}

func TestBufferWriteAtPatchesInPlace(t *testing.T) {
	b := NewBuffer(0)
	b.Write([]byte{0, 0, 0, 0, 5, 6})

	if _, err := b.WriteAt([]byte{1, 2}, 1); err != nil {
		t.Fatalf("WriteAt failed: %v", err)
	}
	if !bytes.Equal(b.Bytes(), []byte{0, 1, 2, 0, 5, 6}) {
		t.Fatalf("unexpected contents %v", b.Bytes())
	}

	if _, err := b.WriteAt([]byte{1, 2}, 5); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange when extending, got %v", err)
	}
	if b.Len() != 6 {
		t.Fatalf("failed WriteAt must not change length, got %d", b.Len())
	}
}

func TestBufferReadAt(t *testing.T) {
	b := NewBuffer(0)
	b.Write([]byte("RIFFxxxxWAVE"))

	p := make([]byte, 4)
	if _, err := b.ReadAt(p, 8); err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if string(p) != "WAVE" {
		t.Fatalf("expected WAVE, got %q", p)
	}

	n, err := b.ReadAt(p, 10)
	if n != 2 || err != io.EOF {
		t.Fatalf("expected short read with EOF, got n=%d err=%v", n, err)
	}
}

func TestBufferReadFrom(t *testing.T) {
	b := NewBuffer(0)
	src := strings.Repeat("a", 5000)

	n, err := b.ReadFrom(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if n != int64(len(src)) || b.Len() != len(src) {
		t.Fatalf("expected %d bytes, got n=%d len=%d", len(src), n, b.Len())
	}
}

func TestBufferViewSharesStorage(t *testing.T) {
	b := NewBuffer(0)
	b.Write([]byte{1, 2, 3, 4})

	v := b.View()
	if _, err := b.WriteAt([]byte{9}, 0); err != nil {
		t.Fatalf("WriteAt failed: %v", err)
	}
	if v[0] != 9 {
		t.Fatal("expected the view to see in-place writes")
	}

	c := b.Bytes()
	c[1] = 7
	if b.View()[1] != 2 {
		t.Fatal("Bytes must return a copy")
	}
}
