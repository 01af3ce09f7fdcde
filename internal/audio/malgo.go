package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

// maxPullBytes caps how much a single Pull drains.
const maxPullBytes = 128 * 1024

const (
	captureRingDuration = time.Second
	renderRingDuration  = 250 * time.Millisecond
)

func newMalgoContext(log zerolog.Logger) (*malgo.AllocatedContext, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Debug().Str("source", "miniaudio").Msg(message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	return ctx, nil
}

// FlexibleCapture records stereo 44.1 kHz with miniaudio. The device callback
// fills a ring buffer which the session drains with Pull.
type FlexibleCapture struct {
	ctx *malgo.AllocatedContext
	log zerolog.Logger

	mu     sync.Mutex
	device *malgo.Device
	ring   *ringBuffer
	align  int
}

// NewFlexibleCapture creates the pull-model capture back-end.
func NewFlexibleCapture(ctx *malgo.AllocatedContext, log zerolog.Logger) *FlexibleCapture {
	return &FlexibleCapture{
		ctx:   ctx,
		log:   log.With().Str("component", "flexible_capture").Logger(),
		ring:  newRingBuffer(Stereo44k.BytesFor(captureRingDuration)),
		align: Stereo44k.BlockAlign(),
	}
}

func (c *FlexibleCapture) Path() Path { return PathFlexible }

// Start always opens the device at Stereo44k.
func (c *FlexibleCapture) Start(f Format) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		return nil
	}
	if f != Stereo44k {
		c.log.Warn().Stringer("requested", f).Msg("Flexible capture records stereo 44100 Hz only")
	}
	c.ring.Reset()

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = uint32(Stereo44k.Channels)
	cfg.SampleRate = uint32(Stereo44k.SampleRate)
	cfg.Alsa.NoMMap = 1

	ring := c.ring
	device, err := malgo.InitDevice(c.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(_, in []byte, _ uint32) {
			if dropped := len(in) - ring.Write(in); dropped > 0 {
				c.log.Warn().Int("dropped_bytes", dropped).Msg("Capture ring buffer full")
			}
		},
	})
	if err != nil {
		return deviceErr("open", PathFlexible, fmt.Errorf("failed to initialize capture device: %w", err))
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return deviceErr("start", PathFlexible, fmt.Errorf("failed to start capture device: %w", err))
	}

	c.device = device
	c.log.Debug().Msg("Capture started")
	return nil
}

// Pull returns the frames buffered since the previous call, at most
// maxPullBytes.
func (c *FlexibleCapture) Pull() []byte {
	return pullAligned(c.ring, maxPullBytes, c.align)
}

// Stop returns after miniaudio has stopped invoking the data callback.
// Bytes still in the ring remain available to Pull.
func (c *FlexibleCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil
	}
	device := c.device
	c.device = nil

	err := device.Stop()
	device.Uninit()
	if err != nil {
		return deviceErr("stop", PathFlexible, err)
	}
	c.log.Debug().Msg("Capture stopped")
	return nil
}

func pullAligned(ring *ringBuffer, max, align int) []byte {
	n := ring.Len()
	if n > max {
		n = max
	}
	n = alignDown(n, align)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	ring.Read(out, false)
	return out
}

// FlexiblePlayback plays stereo 44.1 kHz with miniaudio. Nothing feeds the
// device unless IsPlaying is called regularly.
type FlexiblePlayback struct {
	ctx *malgo.AllocatedContext
	log zerolog.Logger

	mu     sync.Mutex
	device *malgo.Device
	ring   *ringBuffer
	queue  *renderQueue
}

// NewFlexiblePlayback creates the tick-serviced playback back-end.
func NewFlexiblePlayback(ctx *malgo.AllocatedContext, log zerolog.Logger) *FlexiblePlayback {
	ring := newRingBuffer(Stereo44k.BytesFor(renderRingDuration))
	return &FlexiblePlayback{
		ctx:   ctx,
		log:   log.With().Str("component", "flexible_playback").Logger(),
		ring:  ring,
		queue: newRenderQueue(ring, Stereo44k.BlockAlign()),
	}
}

func (p *FlexiblePlayback) Path() Path { return PathFlexible }

// Start expects a whole WAV file and skips its header.
func (p *FlexiblePlayback) Start(data []byte, f Format) error {
	if err := p.Stop(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(data) < HeaderSize {
		data = nil
	} else {
		data = data[HeaderSize:]
	}
	p.queue.Load(data)
	p.queue.Service()

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(Stereo44k.Channels)
	cfg.SampleRate = uint32(Stereo44k.SampleRate)
	cfg.Alsa.NoMMap = 1

	ring := p.ring
	device, err := malgo.InitDevice(p.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			ring.Read(out, true)
		},
	})
	if err != nil {
		return deviceErr("open", PathFlexible, fmt.Errorf("failed to initialize playback device: %w", err))
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return deviceErr("start", PathFlexible, fmt.Errorf("failed to start playback device: %w", err))
	}

	p.device = device
	p.log.Debug().Int("bytes", len(data)).Msg("Playback started")
	return nil
}

// IsPlaying tops up the device ring and reports whether audio is still
// pending.
func (p *FlexiblePlayback) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return false
	}
	return p.queue.Service()
}

func (p *FlexiblePlayback) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return nil
	}
	device := p.device
	p.device = nil

	err := device.Stop()
	device.Uninit()
	p.ring.Reset()
	if err != nil {
		return deviceErr("stop", PathFlexible, err)
	}
	return nil
}

func (p *FlexiblePlayback) SkipForward() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return
	}
	if p.queue.Skip(Stereo44k.ByteRate() * int(SkipDuration/time.Second)) {
		p.log.Debug().Int("cursor", p.queue.Cursor()).Msg("Skipped forward")
	}
}
