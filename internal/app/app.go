package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/petems/wavrec/internal/audio"
	"github.com/petems/wavrec/internal/config"
	"github.com/petems/wavrec/internal/session"
	"github.com/petems/wavrec/internal/storage"
	"github.com/rs/zerolog"
)

// DeviceLister enumerates audio devices for the device menu.
type DeviceLister interface {
	ListDevices() ([]audio.AudioDevice, error)
}

type Config struct {
	Session *session.Controller
	Store   *storage.Store
	Config  *config.Config
	Devices DeviceLister // Optional - can be nil
	Logger  zerolog.Logger
}

// App carries out the user actions shared by the tray and the CLI.
type App struct {
	session *session.Controller
	store   *storage.Store
	devices DeviceLister
	log     zerolog.Logger

	mu  sync.Mutex
	cfg *config.Config
}

func New(cfg Config) *App {
	return &App{
		session: cfg.Session,
		store:   cfg.Store,
		cfg:     cfg.Config,
		devices: cfg.Devices,
		log:     cfg.Logger,
	}
}

// Run drives the session tick until ctx is done.
func (a *App) Run(ctx context.Context) error {
	return a.session.Run(ctx)
}

// Quality returns the configured recording format.
func (a *App) Quality() audio.Format {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := audio.ParseQuality(a.cfg.Quality)
	if err != nil {
		a.log.Warn().Err(err).Msg("Invalid quality in config, using mono 16 kHz")
		return audio.Mono16k
	}
	return f
}

// SetQuality changes the format used by the next recording.
func (a *App) SetQuality(f audio.Format) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if a.session.IsRecording() {
		return fmt.Errorf("cannot change quality while recording")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	old := a.cfg.Quality
	a.cfg.Quality = audio.QualityName(f)
	a.log.Info().Str("from", old).Str("to", a.cfg.Quality).Msg("Changed quality")
	return a.cfg.Save()
}

// ToggleRecording starts a recording in the configured quality, or stops
// the current one and returns the saved file name.
func (a *App) ToggleRecording() (string, error) {
	if a.session.IsRecording() {
		return a.session.StopRecording()
	}
	return "", a.session.StartRecording(a.Quality())
}

// Play stops any playback and plays the named recording on the device
// matching its format.
func (a *App) Play(name string) error {
	a.session.StopPlaybackIfActive()

	rec, err := a.store.Stat(name)
	if err != nil {
		return err
	}
	return a.session.StartPlayback(rec.Name, rec.UseFlexiblePath())
}

// PlayLatest plays the newest recording.
func (a *App) PlayLatest() error {
	rec, ok, err := a.store.Latest()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no recordings in %s", a.store.Dir())
	}
	return a.Play(rec.Name)
}

// TogglePlayback stops the active playback or plays the newest recording.
func (a *App) TogglePlayback() error {
	if a.session.IsPlaying() {
		return a.session.StopPlayback()
	}
	return a.PlayLatest()
}

func (a *App) SkipForward() error {
	return a.session.SkipForward()
}

// Recordings returns the refreshed catalog.
func (a *App) Recordings() ([]storage.Recording, error) {
	return a.store.Refresh()
}

// Delete removes a recording. Playback is stopped first since it may be
// reading that file.
func (a *App) Delete(name string) error {
	a.session.StopPlaybackIfActive()
	if err := a.store.Delete(name); err != nil {
		return err
	}
	a.log.Info().Str("file", name).Msg("Deleted recording")
	return nil
}

// LastRecordingPath returns the full path of the newest recording, or ""
// when there is none.
func (a *App) LastRecordingPath() string {
	if name := a.session.LastRecording(); name != "" {
		return a.store.Path(name)
	}
	rec, ok, err := a.store.Latest()
	if err != nil || !ok {
		return ""
	}
	return a.store.Path(rec.Name)
}

func (a *App) RecordingsDir() string {
	return a.store.Dir()
}

func (a *App) IsRecording() bool {
	return a.session.IsRecording()
}

func (a *App) IsPlaying() bool {
	return a.session.IsPlaying()
}

func (a *App) ListDevices() ([]audio.AudioDevice, error) {
	if a.devices == nil {
		return nil, nil
	}
	return a.devices.ListDevices()
}

// SetInputDevice selects the microphone used after the next restart.
func (a *App) SetInputDevice(name string) error {
	if a.session.IsRecording() {
		return fmt.Errorf("cannot change while recording")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.cfg.Audio.InputDevice = name
	return a.cfg.Save()
}

// Shutdown saves an in-progress recording and stops playback.
func (a *App) Shutdown(ctx context.Context) error {
	return a.session.Shutdown()
}
