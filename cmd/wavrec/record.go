package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petems/wavrec/internal/audio"
	"github.com/petems/wavrec/internal/permissions"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	recordQuality  string
	recordDuration time.Duration
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record from the microphone until interrupted",
	Long: `Record from the microphone into a new timestamped WAV file.

Recording stops on Ctrl-C, or after --duration when it is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		quality := cfg.Quality
		if recordQuality != "" {
			quality = recordQuality
		}
		format, err := audio.ParseQuality(quality)
		if err != nil {
			return err
		}

		if err := permissions.EnsureMicrophone(); err != nil {
			return err
		}

		env, err := newEnv(true, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if recordDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, recordDuration)
			defer cancel()
		}

		if err := env.session.StartRecording(format); err != nil {
			return fmt.Errorf("failed to start recording: %w", err)
		}
		fmt.Printf("Recording %s, press Ctrl-C to stop\n", format)

		start := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return env.session.Run(gctx)
		})
		g.Go(func() error {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					fmt.Println()
					return nil
				case <-ticker.C:
					fmt.Print("\r" + progressLine(time.Since(start), env.session.BufferedBytes()))
				}
			}
		})
		// Run only reports ctx cancellation
		_ = g.Wait()

		name, err := env.session.StopRecording()
		if err != nil {
			return fmt.Errorf("failed to save recording: %w", err)
		}
		fmt.Println(env.store.Path(name))
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVarP(&recordQuality, "quality", "q", "", "mono16k or stereo44k (overrides config)")
	recordCmd.Flags().DurationVarP(&recordDuration, "duration", "d", 0, "stop after this long (e.g. 30s)")
}

// progressLine renders elapsed time and captured size, e.g. "00:05  160 KiB".
func progressLine(elapsed time.Duration, buffered int) string {
	secs := int(elapsed / time.Second)
	return fmt.Sprintf("%02d:%02d  %d KiB", secs/60, secs%60, buffered/1024)
}
