package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "wavrec.log")
	var console bytes.Buffer

	log := newLogger(&console, logPath, zerolog.InfoLevel)
	log.Debug().Msg("hidden")
	log.Info().Str("file", "2024_01_01_00_00_00.wav").Msg("Recording saved")

	if !strings.Contains(console.String(), "Recording saved") {
		t.Fatalf("expected console output, got %q", console.String())
	}
	if strings.Contains(console.String(), "hidden") {
		t.Fatal("debug message should be filtered at info level")
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log file to be created: %v", err)
	}
	if !strings.Contains(string(data), `"message":"Recording saved"`) {
		t.Fatalf("expected JSON line in log file, got %q", data)
	}
}

func TestLogPath(t *testing.T) {
	if filepath.Base(LogPath()) != "wavrec.log" {
		t.Fatalf("unexpected log path %q", LogPath())
	}
}
