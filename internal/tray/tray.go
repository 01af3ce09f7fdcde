package tray

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/atotto/clipboard"
	"github.com/getlantern/systray"
	"github.com/ncruces/zenity"
	"github.com/petems/wavrec/internal/app"
	"github.com/petems/wavrec/internal/audio"
	"github.com/petems/wavrec/internal/logging"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

type UI struct {
	app     *app.App
	version string
	commit  string
	log     zerolog.Logger

	ready     atomic.Bool
	recording atomic.Bool
	playing   atomic.Bool

	// Menu items
	mRecord   *systray.MenuItem
	mPlay     *systray.MenuItem
	mSkip     *systray.MenuItem
	mQuality  *systray.MenuItem
	mMono     *systray.MenuItem
	mStereo   *systray.MenuItem
	mDevices  *systray.MenuItem
	mCopyPath *systray.MenuItem
}

// Session observer methods for the controller to call

func (u *UI) RecordingChanged(recording bool) {
	u.recording.Store(recording)
	if !u.ready.Load() {
		return
	}
	if recording {
		u.mRecord.SetTitle("Stop Recording")
		// Quality is fixed for the duration of a recording
		u.mQuality.Disable()
	} else {
		u.mRecord.SetTitle("Start Recording")
		u.mQuality.Enable()
	}
	u.updateStatus()
}

func (u *UI) PlaybackChanged(playing bool) {
	u.playing.Store(playing)
	if !u.ready.Load() {
		return
	}
	if playing {
		u.mPlay.SetTitle("Stop Playback")
		u.mSkip.Enable()
	} else {
		u.mPlay.SetTitle("Play Latest")
		u.mSkip.Disable()
	}
	u.updateStatus()
}

func (u *UI) BufferChanged(chunk []byte) {
	if !u.ready.Load() || !u.recording.Load() {
		return
	}
	systray.SetTitle(fmt.Sprintf("🎤 %s %s", emojiForStatus(statusRecording), levelMeter(peakLevel(chunk))))
}

func New(application *app.App, version, commit string, log zerolog.Logger) *UI {
	return &UI{
		app:     application,
		version: version,
		commit:  commit,
		log:     log.With().Str("component", "tray").Logger(),
	}
}

// SetApp sets the app reference (for circular dependency resolution)
func (u *UI) SetApp(application *app.App) {
	u.app = application
}

func (u *UI) Run(ctx context.Context) error {
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	systray.SetTitle(fmt.Sprintf("🎤 %s", emojiForStatus(statusIdle)))
	systray.SetTooltip("Voice recorder")

	// Build menu
	u.mRecord = systray.AddMenuItem("Start Recording", "Record from the microphone")
	u.mPlay = systray.AddMenuItem("Play Latest", "Play the newest recording")
	u.mSkip = systray.AddMenuItem("Skip 5s", "Jump ahead in the current playback")
	u.mSkip.Disable()
	systray.AddSeparator()

	u.mQuality = systray.AddMenuItem("Quality", "Recording format")
	quality := u.app.Quality()
	u.mMono = u.mQuality.AddSubMenuItemCheckbox("Mono 16 kHz", "Standard quality", quality == audio.Mono16k)
	u.mStereo = u.mQuality.AddSubMenuItemCheckbox("Stereo 44.1 kHz", "High quality", quality == audio.Stereo44k)

	u.mDevices = systray.AddMenuItem("Microphone", "Select audio device")
	u.buildDeviceMenu()

	systray.AddSeparator()
	u.mCopyPath = systray.AddMenuItem("Copy Last Recording Path", "Copy the file path to the clipboard")
	mFolder := systray.AddMenuItem("Open Recordings Folder", "Show recordings")
	mLogs := systray.AddMenuItem("Open Logs", "View application logs")
	mAbout := systray.AddMenuItem("About", "About wavrec")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	u.ready.Store(true)
	u.RecordingChanged(u.app.IsRecording())
	u.PlaybackChanged(u.app.IsPlaying())

	// Event loop
	go u.handleEvents(mFolder, mLogs, mAbout, mQuit)
}

func (u *UI) handleEvents(mFolder, mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mRecord.ClickedCh:
			u.ToggleRecording()
		case <-u.mPlay.ClickedCh:
			if err := u.app.TogglePlayback(); err != nil {
				u.log.Error().Err(err).Msg("Playback failed")
			}
		case <-u.mSkip.ClickedCh:
			if err := u.app.SkipForward(); err != nil {
				u.log.Warn().Err(err).Msg("Skip ignored")
			}
		case <-u.mMono.ClickedCh:
			u.setQuality(audio.Mono16k)
		case <-u.mStereo.ClickedCh:
			u.setQuality(audio.Stereo44k)
		case <-u.mCopyPath.ClickedCh:
			u.copyLastPath()
		case <-mFolder.ClickedCh:
			u.openPath(u.app.RecordingsDir())
		case <-mLogs.ClickedCh:
			u.openPath(logging.LogPath())
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

// ToggleRecording is shared by the menu item and the global hotkey.
func (u *UI) ToggleRecording() {
	name, err := u.app.ToggleRecording()
	if err != nil {
		u.log.Error().Err(err).Msg("Recording failed")
		u.notify(fmt.Sprintf("Recording failed: %v", err))
		return
	}
	if name != "" {
		u.log.Info().Str("file", name).Msg("Recording saved")
		u.notify("Saved " + name)
	}
}

func (u *UI) setQuality(f audio.Format) {
	if err := u.app.SetQuality(f); err != nil {
		u.log.Error().Err(err).Msg("Failed to change quality")
		return
	}
	if f == audio.Stereo44k {
		u.mStereo.Check()
		u.mMono.Uncheck()
	} else {
		u.mMono.Check()
		u.mStereo.Uncheck()
	}
}

func (u *UI) buildDeviceMenu() {
	// Get devices from app
	devices, err := u.app.ListDevices()
	if err != nil {
		u.log.Error().Err(err).Msg("Failed to list audio devices")
		return
	}

	deviceItems := make(map[string]*systray.MenuItem)

	for _, dev := range devices {
		if !dev.Input {
			continue
		}
		item := u.mDevices.AddSubMenuItem(dev.Name, "")
		if dev.Default {
			item.Check()
		}
		deviceItems[dev.ID] = item

		go func(deviceID, deviceName string, menuItem *systray.MenuItem) {
			for {
				<-menuItem.ClickedCh
				if err := u.app.SetInputDevice(deviceID); err != nil {
					u.log.Error().Err(err).Msg("Failed to change audio device")
					continue
				}
				// Uncheck all other items
				for id, itm := range deviceItems {
					if id != deviceID {
						itm.Uncheck()
					}
				}
				// Check this item
				menuItem.Check()
				u.log.Info().Str("device", deviceName).Msg("Changed audio device, restart to apply")
			}
		}(dev.ID, dev.Name, item)
	}
}

func (u *UI) copyLastPath() {
	path := u.app.LastRecordingPath()
	if path == "" {
		u.log.Warn().Msg("No recording to copy")
		return
	}
	if err := clipboard.WriteAll(path); err != nil {
		u.log.Error().Err(err).Msg("Failed to copy to clipboard")
		return
	}
	u.log.Info().Str("path", path).Msg("Copied recording path")
}

func (u *UI) openPath(path string) {
	if err := browser.OpenFile(path); err != nil {
		u.log.Error().Err(err).Str("path", path).Msg("Failed to open")
	}
}

func (u *UI) notify(text string) {
	if err := zenity.Notify(text, zenity.Title("wavrec")); err != nil {
		u.log.Debug().Err(err).Msg("Notification not shown")
	}
}

func (u *UI) showAbout() {
	err := zenity.Info(aboutText(u.version, u.commit),
		zenity.Title("About wavrec"),
		zenity.InfoIcon)
	if err != nil && err != zenity.ErrCanceled {
		u.log.Error().Err(err).Msg("Failed to show about dialog")
	}
}

func aboutText(version, commit string) string {
	return fmt.Sprintf("wavrec %s (%s)\nVoice recorder", version, commit)
}

func (u *UI) onExit() {
	if err := u.app.Shutdown(context.Background()); err != nil {
		u.log.Error().Err(err).Msg("Shutdown error")
	}
}

// updateStatus sets the tray title with microphone emoji and status indicator
func (u *UI) updateStatus() {
	status := statusFor(u.recording.Load(), u.playing.Load())
	systray.SetTitle(fmt.Sprintf("🎤 %s", emojiForStatus(status)))
}

const (
	statusIdle      = "idle"
	statusRecording = "recording"
	statusPlaying   = "playing"
)

func statusFor(recording, playing bool) string {
	switch {
	case recording:
		return statusRecording
	case playing:
		return statusPlaying
	default:
		return statusIdle
	}
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch status {
	case statusRecording:
		return "🔴" // Red - recording
	case statusPlaying:
		return "🔵" // Blue - playing back
	case statusIdle:
		return "🟢" // Green - ready/idle
	default:
		return "🟢" // Green - default to ready
	}
}

// peakLevel returns the largest absolute sample value in a chunk of 16-bit
// little-endian PCM.
func peakLevel(chunk []byte) int {
	peak := 0
	for i := 0; i+1 < len(chunk); i += 2 {
		s := int(int16(uint16(chunk[i]) | uint16(chunk[i+1])<<8))
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

var meterBars = []rune("▁▂▃▄▅▆▇█")

// levelMeter renders a peak level as a single bar character.
func levelMeter(peak int) string {
	idx := peak * len(meterBars) / 32769
	if idx >= len(meterBars) {
		idx = len(meterBars) - 1
	}
	return string(meterBars[idx])
}
