package main

import (
	"fmt"
	"os"

	"github.com/petems/wavrec/internal/app"
	"github.com/petems/wavrec/internal/audio"
	"github.com/petems/wavrec/internal/config"
	"github.com/petems/wavrec/internal/logging"
	"github.com/petems/wavrec/internal/session"
	"github.com/petems/wavrec/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	log      zerolog.Logger
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "wavrec",
	Short: "Record and play back WAV voice notes",
	Long: `wavrec records the microphone to timestamped WAV files and plays them back.

Mono 16 kHz recordings go through PortAudio, stereo 44.1 kHz recordings
through miniaudio. Without a subcommand it runs as a system tray app.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from XDG/Library/AppData
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		lvl, err := zerolog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}

		// Initialize logger with configured level
		log = logging.NewWithLevel(lvl)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return trayCmd.RunE(cmd, args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the platform config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(trayCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wavrec %s (%s)\n", Version, Commit)
	},
}

// runtimeEnv is the object graph shared by the commands.
type runtimeEnv struct {
	backends *audio.Backends
	store    *storage.Store
	session  *session.Controller
	app      *app.App
}

// newEnv wires the store, the session controller and the app. Audio devices
// are only opened when withAudio is set.
func newEnv(withAudio bool, obs session.Observer) (*runtimeEnv, error) {
	store, err := storage.NewOs(cfg.Storage.Dir, log)
	if err != nil {
		return nil, err
	}

	env := &runtimeEnv{store: store}
	sessCfg := session.Config{
		Store:    store,
		Observer: obs,
		Logger:   log,
	}

	if withAudio {
		backends, err := audio.New(cfg.Audio, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize audio: %w", err)
		}
		env.backends = backends
		sessCfg.Capture = session.Captures{
			Standard: backends.StandardCapture,
			Flexible: backends.FlexibleCapture,
		}
		sessCfg.Playback = session.Playbacks{
			Standard: backends.StandardPlayback,
			Flexible: backends.FlexiblePlayback,
		}
	}

	env.session = session.New(sessCfg)
	appCfg := app.Config{
		Session: env.session,
		Store:   store,
		Config:  cfg,
		Logger:  log,
	}
	if env.backends != nil {
		appCfg.Devices = env.backends
	}
	env.app = app.New(appCfg)
	return env, nil
}

func (e *runtimeEnv) Close() {
	if e.backends == nil {
		return
	}
	if err := e.backends.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to release audio devices")
	}
}
