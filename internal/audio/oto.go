package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process, so it is created on first use
// and kept for the lifetime of the program.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func sharedOtoContext(f Format) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   f.SampleRate,
			ChannelCount: f.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// otoSink plays a feeder through an oto player, which pulls from it on its
// own goroutine.
type otoSink struct {
	player *oto.Player
}

func (s *otoSink) open(f Format, src *chunkFeeder) error {
	ctx, err := sharedOtoContext(f)
	if err != nil {
		return err
	}
	s.player = ctx.NewPlayer(src)
	s.player.SetBufferSize(f.BytesFor(ChunkDuration) * 2)
	s.player.Play()
	return nil
}

func (s *otoSink) run(stop <-chan struct{}) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	defer s.player.Close()

	for {
		select {
		case <-stop:
			s.player.Pause()
			return nil
		case <-ticker.C:
			if !s.player.IsPlaying() {
				return s.player.Err()
			}
		}
	}
}
