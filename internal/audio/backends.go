package audio

import (
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/gordonklaus/portaudio"
	"github.com/petems/wavrec/internal/config"
	"github.com/rs/zerolog"
)

// Backends owns the audio subsystems and one adapter per path and direction.
type Backends struct {
	StandardCapture  *StandardCapture
	FlexibleCapture  *FlexibleCapture
	StandardPlayback *StandardPlayback
	FlexiblePlayback *FlexiblePlayback

	malgoCtx *malgo.AllocatedContext
}

// New initializes PortAudio and miniaudio and builds the device adapters
func New(cfg config.AudioConfig, log zerolog.Logger) (*Backends, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	malgoCtx, err := newMalgoContext(log)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	standardPlayback, err := NewStandardPlayback(cfg.PlaybackBackend, cfg.OutputDevice, log)
	if err != nil {
		malgoCtx.Uninit()
		malgoCtx.Free()
		portaudio.Terminate()
		return nil, err
	}

	return &Backends{
		StandardCapture:  NewStandardCapture(cfg.InputDevice, log),
		FlexibleCapture:  NewFlexibleCapture(malgoCtx, log),
		StandardPlayback: standardPlayback,
		FlexiblePlayback: NewFlexiblePlayback(malgoCtx, log),
		malgoCtx:         malgoCtx,
	}, nil
}

// ListDevices returns the PortAudio devices usable for capture or playback.
func (b *Backends) ListDevices() ([]AudioDevice, error) {
	return listDevices()
}

// Close stops every adapter and releases the audio subsystems.
func (b *Backends) Close() error {
	b.StandardCapture.Stop()
	b.FlexibleCapture.Stop()
	b.StandardPlayback.Stop()
	b.FlexiblePlayback.Stop()

	if b.malgoCtx != nil {
		_ = b.malgoCtx.Uninit()
		b.malgoCtx.Free()
	}
	return portaudio.Terminate()
}
