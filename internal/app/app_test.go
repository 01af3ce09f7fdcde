package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/petems/wavrec/internal/audio"
	"github.com/petems/wavrec/internal/config"
	"github.com/petems/wavrec/internal/session"
	"github.com/petems/wavrec/internal/storage"
	"github.com/petems/wavrec/internal/wav"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Mock implementations for testing
type mockCapture struct {
	path    audio.Path
	handler func([]byte)
	format  audio.Format
}

func (m *mockCapture) Path() audio.Path { return m.path }

func (m *mockCapture) OnChunk(fn func([]byte)) { m.handler = fn }

func (m *mockCapture) Start(f audio.Format) error {
	m.format = f
	return nil
}

func (m *mockCapture) Stop() error { return nil }

func (m *mockCapture) Pull() []byte { return nil }

type mockPlayback struct {
	path    audio.Path
	playing bool
	data    []byte
}

func (m *mockPlayback) Path() audio.Path { return m.path }

func (m *mockPlayback) Start(data []byte, f audio.Format) error {
	m.data = data
	m.playing = true
	return nil
}

func (m *mockPlayback) IsPlaying() bool { return m.playing }

func (m *mockPlayback) Stop() error {
	m.playing = false
	return nil
}

func (m *mockPlayback) SkipForward() {}

type mockDevices struct{}

func (mockDevices) ListDevices() ([]audio.AudioDevice, error) {
	return []audio.AudioDevice{{ID: "default", Name: "Default", Input: true, Default: true}}, nil
}

type testApp struct {
	app      *App
	cfg      *config.Config
	fs       afero.Fs
	store    *storage.Store
	standard *mockCapture
	flexible *mockCapture
	speaker  *mockPlayback
	flexOut  *mockPlayback
	clock    time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	fs := afero.NewMemMapFs()
	cfg, err := config.LoadFs(fs, "/config/config.json")
	if err != nil {
		t.Fatalf("LoadFs failed: %v", err)
	}
	store, err := storage.New(fs, "/recordings", zerolog.Nop())
	if err != nil {
		t.Fatalf("storage.New failed: %v", err)
	}

	ta := &testApp{
		cfg:      cfg,
		fs:       fs,
		store:    store,
		standard: &mockCapture{path: audio.PathStandard},
		flexible: &mockCapture{path: audio.PathFlexible},
		speaker:  &mockPlayback{path: audio.PathStandard},
		flexOut:  &mockPlayback{path: audio.PathFlexible},
		clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local),
	}

	ctrl := session.New(session.Config{
		Capture:  session.Captures{Standard: ta.standard, Flexible: ta.flexible},
		Playback: session.Playbacks{Standard: ta.speaker, Flexible: ta.flexOut},
		Store:    store,
		Logger:   zerolog.Nop(),
		Now: func() time.Time {
			ta.clock = ta.clock.Add(time.Second)
			return ta.clock
		},
	})

	ta.app = New(Config{
		Session: ctrl,
		Store:   store,
		Config:  cfg,
		Devices: mockDevices{},
		Logger:  zerolog.Nop(),
	})
	return ta
}

func (ta *testApp) record(t *testing.T, chunk []byte) string {
	t.Helper()
	if _, err := ta.app.ToggleRecording(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if ta.standard.handler != nil && ta.app.Quality() == audio.Mono16k {
		ta.standard.handler(chunk)
	}
	name, err := ta.app.ToggleRecording()
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	return name
}

func TestToggleRecordingUsesConfiguredQuality(t *testing.T) {
	ta := newTestApp(t)

	if ta.app.Quality() != audio.Mono16k {
		t.Fatalf("expected default quality mono 16k, got %v", ta.app.Quality())
	}

	name := ta.record(t, []byte{1, 2, 3, 4})
	if name != "2024_01_01_12_00_01.wav" {
		t.Fatalf("unexpected name %q", name)
	}
	if ta.standard.format != audio.Mono16k {
		t.Fatalf("expected standard capture, got %v", ta.standard.format)
	}

	if err := ta.app.SetQuality(audio.Stereo44k); err != nil {
		t.Fatalf("SetQuality failed: %v", err)
	}
	ta.record(t, nil)
	if ta.flexible.format != audio.Stereo44k {
		t.Fatalf("expected flexible capture, got %v", ta.flexible.format)
	}

	// Persisted to the config file
	reloaded, err := config.LoadFs(ta.fs, "/config/config.json")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Quality != "stereo44k" {
		t.Fatalf("expected saved quality stereo44k, got %q", reloaded.Quality)
	}
}

func TestSetQualityRejectedWhileRecording(t *testing.T) {
	ta := newTestApp(t)

	if _, err := ta.app.ToggleRecording(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := ta.app.SetQuality(audio.Stereo44k); err == nil {
		t.Fatal("expected quality change to be rejected while recording")
	}
	if err := ta.app.SetQuality(audio.Format{Channels: 1, SampleRate: 8000}); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPlayPicksPathFromHeader(t *testing.T) {
	ta := newTestApp(t)

	file, err := ta.store.Create("2023_12_31_00_00_00.wav")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wav.Write(file, bytes.NewReader(make([]byte, 8)), audio.Stereo44k); err != nil {
		t.Fatal(err)
	}
	file.Close()

	if err := ta.app.Play("2023_12_31_00_00_00.wav"); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !ta.flexOut.playing || ta.speaker.playing {
		t.Fatal("stereo recording should play on the flexible device")
	}
	if !ta.app.IsPlaying() {
		t.Fatal("expected Playing")
	}
}

func TestTogglePlaybackPlaysLatest(t *testing.T) {
	ta := newTestApp(t)

	if err := ta.app.TogglePlayback(); err == nil {
		t.Fatal("expected error with an empty catalog")
	}

	ta.record(t, []byte{1, 2})
	latest := ta.record(t, []byte{3, 4, 5, 6})

	if err := ta.app.TogglePlayback(); err != nil {
		t.Fatalf("TogglePlayback failed: %v", err)
	}
	if !bytes.Equal(ta.speaker.data, []byte{3, 4, 5, 6}) {
		t.Fatalf("expected the newest recording %s, got %v", latest, ta.speaker.data)
	}

	if err := ta.app.TogglePlayback(); err != nil {
		t.Fatalf("second TogglePlayback failed: %v", err)
	}
	if ta.app.IsPlaying() {
		t.Fatal("expected playback stopped")
	}
}

func TestDeleteStopsPlayback(t *testing.T) {
	ta := newTestApp(t)
	name := ta.record(t, []byte{1, 2})

	if err := ta.app.Play(name); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := ta.app.Delete(name); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ta.app.IsPlaying() {
		t.Fatal("playback should stop before delete")
	}

	recs, err := ta.app.Recordings()
	if err != nil {
		t.Fatalf("Recordings failed: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(recs))
	}
}

func TestLastRecordingPath(t *testing.T) {
	ta := newTestApp(t)

	if got := ta.app.LastRecordingPath(); got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}

	name := ta.record(t, []byte{1, 2})
	if got := ta.app.LastRecordingPath(); got != ta.store.Path(name) {
		t.Fatalf("expected %q, got %q", ta.store.Path(name), got)
	}
}

func TestShutdownSavesRecording(t *testing.T) {
	ta := newTestApp(t)

	if _, err := ta.app.ToggleRecording(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := ta.app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if ta.app.IsRecording() {
		t.Fatal("expected recording stopped")
	}

	recs, err := ta.app.Recordings()
	if err != nil || len(recs) != 1 {
		t.Fatalf("expected one saved recording, got %d (%v)", len(recs), err)
	}
}

func TestListDevices(t *testing.T) {
	ta := newTestApp(t)

	devices, err := ta.app.ListDevices()
	if err != nil || len(devices) != 1 || !devices[0].Default {
		t.Fatalf("unexpected devices %v (%v)", devices, err)
	}

	if err := ta.app.SetInputDevice("USB Mic"); err != nil {
		t.Fatalf("SetInputDevice failed: %v", err)
	}
	if ta.cfg.Audio.InputDevice != "USB Mic" {
		t.Fatalf("expected config updated, got %q", ta.cfg.Audio.InputDevice)
	}
}
