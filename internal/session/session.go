// Package session runs the record/playback state machine between the audio
// devices and the recording store.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/petems/wavrec/internal/audio"
	"github.com/petems/wavrec/internal/pcm"
	"github.com/petems/wavrec/internal/storage"
	"github.com/petems/wavrec/internal/wav"
	"github.com/rs/zerolog"
)

// TickInterval is how often Run services the active device.
const TickInterval = 33 * time.Millisecond

type State int

const (
	Idle State = iota
	Recording
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Store persists and loads recordings.
type Store interface {
	Create(name string) (storage.File, error)
	Open(name string) (storage.File, error)
	Delete(name string) error
}

// Captures holds one capture back-end per path.
type Captures struct {
	Standard audio.PushCapture
	Flexible audio.PullCapture
}

// Playbacks holds one playback back-end per path.
type Playbacks struct {
	Standard audio.Playback
	Flexible audio.Playback
}

type Config struct {
	Capture  Captures
	Playback Playbacks
	Store    Store
	Observer Observer         // Optional
	Logger   zerolog.Logger
	Now      func() time.Time // Optional, names new recordings
}

type Controller struct {
	capture  Captures
	playback Playbacks
	store    Store
	obs      Observer
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	state    State
	format   audio.Format
	active   audio.Capture
	pull     audio.PullCapture
	player   audio.Playback
	id       string
	lastName string

	// sinkMu guards buf and capturing. The push capture callback takes only
	// this lock so that stopping the device while holding mu cannot deadlock.
	sinkMu    sync.Mutex
	buf       *pcm.Buffer
	capturing bool
}

func New(cfg Config) *Controller {
	c := &Controller{
		capture:  cfg.Capture,
		playback: cfg.Playback,
		store:    cfg.Store,
		obs:      cfg.Observer,
		log:      cfg.Logger.With().Str("component", "session").Logger(),
		now:      cfg.Now,
		buf:      pcm.NewBuffer(0),
	}
	if c.obs == nil {
		c.obs = NopObserver{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.capture.Standard != nil {
		c.capture.Standard.OnChunk(c.onChunk)
	}
	return c
}

// onChunk runs on the capture device thread.
func (c *Controller) onChunk(chunk []byte) {
	c.sinkMu.Lock()
	if !c.capturing {
		c.sinkMu.Unlock()
		return
	}
	c.buf.Write(chunk)
	c.sinkMu.Unlock()

	c.obs.BufferChanged(chunk)
}

func (c *Controller) appendChunk(chunk []byte) {
	c.sinkMu.Lock()
	c.buf.Write(chunk)
	c.sinkMu.Unlock()

	c.obs.BufferChanged(chunk)
}

func (c *Controller) invalid(op string) error {
	err := &TransitionError{Op: op, State: c.state}
	c.log.Error().Err(err).Msg("Rejected operation")
	return err
}

// StartRecording stops any playback and starts capturing in format f.
func (c *Controller) StartRecording(f audio.Format) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := f.Validate(); err != nil {
		return err
	}
	if c.state == Recording {
		return c.invalid("start recording")
	}

	c.stopPlaybackIfActiveLocked()

	path := audio.SelectPath(f)
	var capture audio.Capture
	var pull audio.PullCapture
	if path == audio.PathStandard {
		if c.capture.Standard != nil {
			capture = c.capture.Standard
		}
	} else if c.capture.Flexible != nil {
		capture = c.capture.Flexible
		pull = c.capture.Flexible
	}
	if capture == nil {
		return &audio.DeviceError{Op: "start", Path: path, Err: errors.New("no capture device configured")}
	}

	c.sinkMu.Lock()
	c.buf.Reset()
	c.capturing = true
	c.sinkMu.Unlock()

	if err := capture.Start(f); err != nil {
		c.sinkMu.Lock()
		c.capturing = false
		c.sinkMu.Unlock()
		c.log.Error().Err(err).Str("path", path.String()).Msg("Failed to start capture")
		return err
	}

	c.state = Recording
	c.format = f
	c.active = capture
	c.pull = pull
	c.id = uuid.NewString()

	c.log.Info().
		Str("session", c.id).
		Str("path", path.String()).
		Stringer("format", f).
		Msg("Recording started")
	c.obs.RecordingChanged(true)
	return nil
}

// StopRecording stops capture and saves the recording under a timestamped
// name. The controller is Idle afterwards even if saving failed.
func (c *Controller) StopRecording() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Recording {
		return "", c.invalid("stop recording")
	}

	if err := c.active.Stop(); err != nil {
		c.log.Warn().Err(err).Str("session", c.id).Msg("Capture did not stop cleanly")
	}
	if c.pull != nil {
		for chunk := c.pull.Pull(); len(chunk) > 0; chunk = c.pull.Pull() {
			c.appendChunk(chunk)
		}
	}

	c.sinkMu.Lock()
	c.capturing = false
	c.sinkMu.Unlock()

	c.state = Idle
	c.active = nil
	c.pull = nil

	name := storage.FileName(c.now())
	err := c.persist(name)
	if err != nil {
		c.log.Error().Err(err).Str("session", c.id).Str("file", name).Msg("Failed to save recording")
		name = ""
	} else {
		c.lastName = name
		c.log.Info().
			Str("session", c.id).
			Str("file", name).
			Int("bytes", c.BufferedBytes()).
			Msg("Recording saved")
	}

	c.obs.RecordingChanged(false)
	return name, err
}

func (c *Controller) persist(name string) error {
	f, err := c.store.Create(name)
	if err != nil {
		return err
	}

	c.sinkMu.Lock()
	_, err = wav.Write(f, c.buf.Reader(), c.format)
	c.sinkMu.Unlock()

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if delErr := c.store.Delete(name); delErr != nil {
			c.log.Warn().Err(delErr).Str("file", name).Msg("Failed to remove partial recording")
		}
		return &storage.Error{Op: "write", Name: name, Err: err}
	}
	return nil
}

// StartPlayback loads a stored recording and plays it on the flexible or
// standard device.
func (c *Controller) StartPlayback(name string, useFlexible bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return c.invalid("start playback")
	}

	loaded, err := c.load(name)
	if err != nil {
		return err
	}
	if _, err := wav.DecodeHeader(loaded); err != nil {
		return err
	}

	player := c.playback.Standard
	f := audio.Mono16k
	payload := loaded[wav.HeaderSize:]
	if useFlexible {
		player = c.playback.Flexible
		f = audio.Stereo44k
		payload = loaded
	}
	path := audio.SelectPath(f)
	if player == nil {
		return &audio.DeviceError{Op: "start", Path: path, Err: errors.New("no playback device configured")}
	}

	if err := player.Start(payload, f); err != nil {
		c.log.Error().Err(err).Str("file", name).Msg("Failed to start playback")
		return err
	}

	c.state = Playing
	c.format = f
	c.player = player
	c.id = uuid.NewString()

	c.log.Info().
		Str("session", c.id).
		Str("file", name).
		Str("path", path.String()).
		Msg("Playback started")
	c.obs.PlaybackChanged(true)
	return nil
}

// load reads a whole recording into the buffer and returns a view of it.
// The view stays valid until the buffer is next reset.
func (c *Controller) load(name string) ([]byte, error) {
	f, err := c.store.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c.sinkMu.Lock()
	defer c.sinkMu.Unlock()

	c.buf.Reset()
	if _, err := c.buf.ReadFrom(f); err != nil {
		return nil, &storage.Error{Op: "read", Name: name, Err: err}
	}
	return c.buf.View(), nil
}

// StopPlayback stops the active playback.
func (c *Controller) StopPlayback() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing {
		return c.invalid("stop playback")
	}
	return c.stopPlaybackLocked()
}

// StopPlaybackIfActive stops playback if there is any. It is safe to call in
// every state.
func (c *Controller) StopPlaybackIfActive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopPlaybackIfActiveLocked()
}

func (c *Controller) stopPlaybackIfActiveLocked() {
	if c.state != Playing {
		return
	}
	if err := c.stopPlaybackLocked(); err != nil {
		c.log.Warn().Err(err).Msg("Playback did not stop cleanly")
	}
}

func (c *Controller) stopPlaybackLocked() error {
	err := c.player.Stop()
	c.state = Idle
	c.player = nil

	c.log.Info().Str("session", c.id).Msg("Playback stopped")
	c.obs.PlaybackChanged(false)
	return err
}

// SkipForward jumps the active playback ahead.
func (c *Controller) SkipForward() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing {
		return c.invalid("skip forward")
	}
	c.player.SkipForward()
	return nil
}

// Tick services the active device: it ends finished playback and drains
// pull-mode capture.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Playing:
		if !c.player.IsPlaying() {
			c.log.Debug().Str("session", c.id).Msg("Playback finished")
			if err := c.stopPlaybackLocked(); err != nil {
				c.log.Warn().Err(err).Msg("Playback did not stop cleanly")
			}
		}
	case Recording:
		if c.pull == nil {
			return
		}
		if chunk := c.pull.Pull(); len(chunk) > 0 {
			c.appendChunk(chunk)
		}
	}
}

// Run calls Tick every TickInterval until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Shutdown saves an active recording and stops playback.
func (c *Controller) Shutdown() error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch state {
	case Recording:
		_, err := c.StopRecording()
		return err
	case Playing:
		c.StopPlaybackIfActive()
	}
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) IsRecording() bool {
	return c.State() == Recording
}

func (c *Controller) IsPlaying() bool {
	return c.State() == Playing
}

// Format returns the format of the current or most recent session.
func (c *Controller) Format() audio.Format {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.format
}

// LastRecording returns the name of the most recently saved recording.
func (c *Controller) LastRecording() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastName
}

// BufferedBytes returns the size of the PCM buffer.
func (c *Controller) BufferedBytes() int {
	c.sinkMu.Lock()
	defer c.sinkMu.Unlock()
	return c.buf.Len()
}
