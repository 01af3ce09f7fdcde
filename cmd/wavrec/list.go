package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recordings",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(false, nil)
		if err != nil {
			return err
		}

		recordings, err := env.app.Recordings()
		if err != nil {
			return err
		}
		if len(recordings) == 0 {
			fmt.Printf("No recordings in %s\n", env.store.Dir())
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFORMAT\tDURATION\tSIZE")
		for _, r := range recordings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.Name, r.Descriptor.Format(), r.Descriptor.Duration(), r.Size)
		}
		return w.Flush()
	},
}
