package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var playSkip int

var playCmd = &cobra.Command{
	Use:   "play [recording]",
	Short: "Play a recording, the newest one by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		done := make(playbackDone, 1)
		env, err := newEnv(true, done)
		if err != nil {
			return err
		}
		defer env.Close()

		if len(args) == 1 {
			err = env.app.Play(args[0])
		} else {
			err = env.app.PlayLatest()
		}
		if err != nil {
			return fmt.Errorf("playback failed: %w", err)
		}

		for i := 0; i < playSkip; i++ {
			if err := env.app.SkipForward(); err != nil {
				break
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			<-done
			cancel()
		}()

		_ = env.session.Run(ctx)
		env.session.StopPlaybackIfActive()
		return nil
	},
}

func init() {
	playCmd.Flags().IntVarP(&playSkip, "skip", "s", 0, "skip forward this many 5 second steps before playing")
}

// playbackDone is signalled when playback ends.
type playbackDone chan struct{}

func (d playbackDone) RecordingChanged(bool) {}

func (d playbackDone) PlaybackChanged(playing bool) {
	if playing {
		return
	}
	select {
	case d <- struct{}{}:
	default:
	}
}

func (d playbackDone) BufferChanged([]byte) {}
