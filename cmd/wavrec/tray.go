package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/petems/wavrec/internal/hotkey"
	"github.com/petems/wavrec/internal/permissions"
	"github.com/petems/wavrec/internal/tray"
	"github.com/spf13/cobra"
)

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run as a system tray app (default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// macOS requires explicit microphone approval before capture works
		if err := permissions.EnsureMicrophone(); err != nil {
			log.Fatal().Err(err).Msg("Required permissions not granted")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Create tray UI first (we'll pass it to app)
		trayUI := tray.New(nil, Version, Commit, log) // App reference set below

		env, err := newEnv(true, trayUI)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize")
		}
		defer env.Close()

		// Set app reference in tray
		trayUI.SetApp(env.app)

		if cfg.Hotkey != "" {
			hk, err := hotkey.New()
			if err != nil {
				log.Warn().Err(err).Msg("Global hotkey unavailable")
			} else {
				defer hk.Close()
				if err := hk.Register(cfg.Hotkey, hotkey.OnPress(trayUI.ToggleRecording)); err != nil {
					log.Warn().Err(err).Str("hotkey", cfg.Hotkey).Msg("Failed to register hotkey")
				} else {
					log.Info().Str("hotkey", cfg.Hotkey).Msg("Hotkey registered")
				}
			}
		}

		go env.app.Run(ctx)

		log.Info().Str("dir", env.store.Dir()).Msg("wavrec starting...")

		// Setup shutdown signal handling
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		go func() {
			<-sigChan
			log.Info().Msg("Shutting down...")
			if err := env.app.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("Shutdown error")
			}
			env.Close()
			os.Exit(0)
		}()

		// Start tray UI - MUST run on main thread
		return trayUI.Run(ctx)
	},
}
