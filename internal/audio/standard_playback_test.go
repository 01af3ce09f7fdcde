package audio

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeSink drains the feeder one chunk per tick.
type fakeSink struct {
	mu      sync.Mutex
	src     *chunkFeeder
	played  int
	openErr error
	hold    chan struct{}
}

func (s *fakeSink) open(f Format, src *chunkFeeder) error {
	if s.openErr != nil {
		return s.openErr
	}
	s.src = src
	return nil
}

func (s *fakeSink) run(stop <-chan struct{}) error {
	if s.hold != nil {
		select {
		case <-s.hold:
		case <-stop:
			return nil
		}
	}
	for {
		select {
		case <-stop:
			return nil
		default:
		}
		chunk := s.src.Next()
		if chunk == nil {
			return nil
		}
		s.mu.Lock()
		s.played += len(chunk)
		s.mu.Unlock()
	}
}

func (s *fakeSink) playedBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}

func TestStandardPlaybackRunsToCompletion(t *testing.T) {
	sink := &fakeSink{}
	p := newStandardPlayback(func() sink { return sink }, zerolog.Nop())

	data := make([]byte, Mono16k.ByteRate())
	if err := p.Start(data, Mono16k); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, func() bool { return !p.IsPlaying() })

	if sink.playedBytes() != len(data) {
		t.Fatalf("expected %d bytes played, got %d", len(data), sink.playedBytes())
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop after completion failed: %v", err)
	}
}

func TestStandardPlaybackStopIsIdempotent(t *testing.T) {
	sink := &fakeSink{hold: make(chan struct{})}
	p := newStandardPlayback(func() sink { return sink }, zerolog.Nop())

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop before Start failed: %v", err)
	}

	if err := p.Start(make([]byte, 6400), Mono16k); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !p.IsPlaying() {
		t.Fatal("expected playback to be active")
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if p.IsPlaying() {
		t.Fatal("expected playback to be stopped")
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}
}

func TestStandardPlaybackOpenFailure(t *testing.T) {
	sink := &fakeSink{openErr: errors.New("no speaker")}
	p := newStandardPlayback(func() sink { return sink }, zerolog.Nop())

	err := p.Start(make([]byte, 3200), Mono16k)
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
	if p.IsPlaying() {
		t.Fatal("failed start must not report playing")
	}
}

func TestStandardPlaybackSkipForward(t *testing.T) {
	sink := &fakeSink{hold: make(chan struct{})}
	p := newStandardPlayback(func() sink { return sink }, zerolog.Nop())

	// 6 seconds of audio: one skip fits, the second does not
	if err := p.Start(make([]byte, Mono16k.ByteRate()*6), Mono16k); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Stop()

	p.SkipForward()
	if got := p.feeder.Cursor(); got != Mono16k.ByteRate()*5 {
		t.Fatalf("expected cursor at 5s, got %d", got)
	}

	p.SkipForward()
	if got := p.feeder.Cursor(); got != Mono16k.ByteRate()*5 {
		t.Fatalf("cursor must not move with 1s remaining, got %d", got)
	}
}

func TestNewStandardPlaybackRejectsUnknownBackend(t *testing.T) {
	if _, err := NewStandardPlayback("alsa", "", zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
