package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Playback sink names accepted by NewStandardPlayback.
const (
	SinkPortAudio = "portaudio"
	SinkOto       = "oto"
)

// sink is a blocking device writer used by the standard playback path.
type sink interface {
	// open acquires the device and binds it to src.
	open(f Format, src *chunkFeeder) error
	// run plays until src is exhausted and the device drained, or until stop
	// is closed.
	run(stop <-chan struct{}) error
}

// StandardPlayback plays mono 16 kHz PCM in ChunkDuration blocks from a
// background goroutine.
type StandardPlayback struct {
	newSink func() sink
	log     zerolog.Logger

	mu      sync.Mutex
	feeder  *chunkFeeder
	skip    int
	stop    chan struct{}
	done    chan struct{}
	playing atomic.Bool
}

// NewStandardPlayback creates the standard playback back-end writing to the
// named sink ("portaudio" or "oto").
func NewStandardPlayback(sinkName, deviceName string, log zerolog.Logger) (*StandardPlayback, error) {
	var newSink func() sink
	switch sinkName {
	case SinkPortAudio, "":
		newSink = func() sink { return &portAudioSink{deviceName: deviceName} }
	case SinkOto:
		newSink = func() sink { return &otoSink{} }
	default:
		return nil, fmt.Errorf("unknown playback backend: %s", sinkName)
	}
	return newStandardPlayback(newSink, log), nil
}

func newStandardPlayback(newSink func() sink, log zerolog.Logger) *StandardPlayback {
	return &StandardPlayback{
		newSink: newSink,
		log:     log.With().Str("component", "standard_playback").Logger(),
	}
}

func (p *StandardPlayback) Path() Path { return PathStandard }

// Start expects headerless PCM.
func (p *StandardPlayback) Start(data []byte, f Format) error {
	if err := p.Stop(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	feeder := newChunkFeeder(data, f.BytesFor(ChunkDuration))
	s := p.newSink()
	if err := s.open(f, feeder); err != nil {
		return deviceErr("open", PathStandard, err)
	}

	p.feeder = feeder
	p.skip = f.BytesFor(ChunkDuration) * int(SkipDuration/ChunkDuration)
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.playing.Store(true)

	go func(stop, done chan struct{}) {
		defer close(done)
		defer p.playing.Store(false)
		if err := s.run(stop); err != nil {
			p.log.Error().Err(err).Msg("Playback error")
		}
	}(p.stop, p.done)

	p.log.Debug().Int("bytes", len(data)).Msg("Playback started")
	return nil
}

// IsPlaying is true until the last chunk has been played out.
func (p *StandardPlayback) IsPlaying() bool {
	return p.playing.Load()
}

// Stop interrupts playback and waits for the device goroutine to exit.
func (p *StandardPlayback) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		return nil
	}
	close(p.stop)
	<-p.done
	p.stop, p.done = nil, nil
	return nil
}

func (p *StandardPlayback) SkipForward() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.feeder == nil || !p.playing.Load() {
		return
	}
	if p.feeder.Skip(p.skip) {
		p.log.Debug().Int("cursor", p.feeder.Cursor()).Msg("Skipped forward")
	}
}
