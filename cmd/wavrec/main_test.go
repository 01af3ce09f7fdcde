package main

import (
	"testing"
	"time"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"tray", "record", "play", "list", "delete", "devices", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestPlaybackDoneSignalsOnStop(t *testing.T) {
	done := make(playbackDone, 1)

	done.PlaybackChanged(true)
	select {
	case <-done:
		t.Fatal("start must not signal")
	default:
	}

	done.PlaybackChanged(false)
	// A second stop must not block
	done.PlaybackChanged(false)

	select {
	case <-done:
	default:
		t.Fatal("expected stop to signal")
	}
}

func TestProgressLine(t *testing.T) {
	tests := []struct {
		elapsed  time.Duration
		buffered int
		want     string
	}{
		{0, 0, "00:00  0 KiB"},
		{5*time.Second + 400*time.Millisecond, 160000, "00:05  156 KiB"},
		{83 * time.Second, 2048, "01:23  2 KiB"},
	}
	for _, tt := range tests {
		if got := progressLine(tt.elapsed, tt.buffered); got != tt.want {
			t.Errorf("progressLine(%v, %d) = %q, want %q", tt.elapsed, tt.buffered, got, tt.want)
		}
	}
}
